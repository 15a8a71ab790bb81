package driven

import (
	"context"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// PostProcessor processes page content to produce chunks.
// PostProcessors are chained in a pipeline (e.g., chunking, filtering).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a page and returns chunks.
	// If the processor modifies chunks (e.g., filtering), it receives and returns chunks.
	// If the processor creates chunks (e.g., chunker), it receives nil and returns new chunks.
	Process(ctx context.Context, page *domain.PageRecord, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the page through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, page *domain.PageRecord) ([]domain.Chunk, error)
}
