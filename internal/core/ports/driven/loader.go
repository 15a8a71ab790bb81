package driven

import (
	"context"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// DocumentLoader reads a document from local storage into ordered pages.
type DocumentLoader interface {
	// Load returns one record per page, in page order.
	// An unreadable document yields an error wrapping domain.ErrLoad.
	Load(ctx context.Context, path string) ([]domain.PageRecord, error)
}
