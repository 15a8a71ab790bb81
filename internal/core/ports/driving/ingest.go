package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// IngestService turns an uploaded PDF into stored chunk vectors.
type IngestService interface {
	// Ingest reads the PDF from r, indexes it under a fresh namespace,
	// and reports the namespace with page and chunk counts.
	// Failures wrap domain.ErrIngestion together with the failing step's kind.
	Ingest(ctx context.Context, filename string, r io.Reader) (*domain.IngestResult, error)
}
