package driven

import (
	"context"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// VectorStore persists index records under namespaces and answers
// nearest-neighbour queries within one namespace.
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// EnsureIndex creates the index if it does not exist.
	// An existing index with the same name counts as success; a dimension
	// mismatch yields domain.ErrDimensionMismatch.
	EnsureIndex(ctx context.Context, spec domain.IndexSpec) error

	// Upsert writes records into the namespace of the named index.
	// Records with an existing ID are replaced.
	Upsert(ctx context.Context, index, namespace string, records []domain.IndexRecord) error

	// Query returns at most topK matches from the namespace, most similar first.
	// An unknown namespace yields no matches and no error.
	Query(ctx context.Context, index, namespace string, vector []float32, topK int) ([]domain.Match, error)

	// Namespaces lists the namespaces of the named index with their record counts.
	Namespaces(ctx context.Context, index string) ([]domain.NamespaceInfo, error)

	// Close releases resources.
	Close() error
}
