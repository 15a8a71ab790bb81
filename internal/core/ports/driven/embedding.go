package driven

import "context"

// EmbeddingService maps text to a vector. The same service must embed
// chunks at ingest time and questions at ask time, so Dimensions has to
// match the index the vectors are written to.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions is the vector length, e.g. 1536 for text-embedding-3-small.
	Dimensions() int

	ModelName() string

	// Ping checks credentials and reachability without embedding anything
	// billable where the provider allows it.
	Ping(ctx context.Context) error

	Close() error
}
