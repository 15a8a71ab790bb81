package domain

import "errors"

// Domain errors represent business logic failures.
// Adapters wrap them with %w so callers can classify with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Index creation treats it as success.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed page, chunk or request data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLoad indicates the source document could not be read or parsed.
	ErrLoad = errors.New("load failed")

	// ErrExternalService indicates an embedding, vector store or
	// generation call failed (network, auth, quota).
	ErrExternalService = errors.New("external service failed")

	// ErrConfiguration indicates a required credential or setting is missing
	// or invalid at startup.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrIngestion is the umbrella failure surfaced by the ingestion entry point.
	// It is always joined with the kind of the step that failed.
	ErrIngestion = errors.New("ingestion failed")

	// ErrUnsupportedType indicates an unknown provider or store type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store could not be opened.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates a vector does not match its index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// Error kinds reported to drivers.
const (
	KindInput         = "input"
	KindLoad          = "load"
	KindExternal      = "external_service"
	KindConfiguration = "configuration"
	KindNotFound      = "not_found"
	KindInternal      = "internal"
)

// ErrorKind classifies err into one of the Kind* constants.
// The most specific kind wins, so an ingestion failure caused by a bad PDF
// reports KindLoad rather than a generic failure.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindInput
	case errors.Is(err, ErrLoad):
		return KindLoad
	case errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrEmbeddingUnavailable),
		errors.Is(err, ErrLLMUnavailable),
		errors.Is(err, ErrVectorStoreUnavailable):
		return KindConfiguration
	case errors.Is(err, ErrExternalService), errors.Is(err, ErrRateLimited):
		return KindExternal
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
