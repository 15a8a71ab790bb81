package services

import (
	"time"

	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
)

var _ driven.Clock = SystemClock{}

// SystemClock reads the local wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
