package driven

import "context"

// LLMService turns a rendered answer prompt into text. Adapters exist for
// OpenAI, Anthropic, Ollama and Gemini.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName is the model answers come from, for logs and settings output.
	ModelName() string

	// Ping makes the cheapest authenticated request the provider offers.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions tunes a single completion. Zero values leave the
// provider default in place.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}
