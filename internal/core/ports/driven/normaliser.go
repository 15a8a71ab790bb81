package driven

import "github.com/custodia-labs/pdfrag/internal/core/domain"

// Normaliser cleans page text before chunking.
// Implementations must be pure: the same input always yields the same output.
type Normaliser interface {
	// Name returns the normaliser name for logging.
	Name() string

	// Normalise returns cleaned copies of the pages. Page numbers are preserved.
	Normalise(pages []domain.PageRecord) []domain.PageRecord
}
