// Package whitespace collapses runs of whitespace in page text.
package whitespace

import (
	"strings"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser replaces every whitespace run (spaces, tabs, newlines and other
// Unicode spaces) with a single space and trims both ends.
type Normaliser struct{}

// New creates a new whitespace normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the normaliser name.
func (n *Normaliser) Name() string {
	return "whitespace"
}

// Normalise returns cleaned copies of the pages. The input is not modified.
func (n *Normaliser) Normalise(pages []domain.PageRecord) []domain.PageRecord {
	if pages == nil {
		return nil
	}
	out := make([]domain.PageRecord, len(pages))
	for i, p := range pages {
		out[i] = domain.PageRecord{
			Text:       Collapse(p.Text),
			PageNumber: p.PageNumber,
		}
	}
	return out
}

// Collapse returns s with whitespace runs reduced to one space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
