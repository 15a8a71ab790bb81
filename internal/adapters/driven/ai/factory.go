// Package ai builds the embedding and LLM adapters named in settings.
package ai

import (
	"context"
	"fmt"

	geminiembed "github.com/custodia-labs/pdfrag/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/pdfrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/pdfrag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/pdfrag/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/pdfrag/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/pdfrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/pdfrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
)

// InitResult holds the AI services used by the ingestion and answer pipelines.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates and validates both services from settings. The embedding
// service is wrapped in a rate limiter when embedding.rate_limit is set.
// Both services are required; a missing one is a configuration error.
func Init(settings *domain.AppSettings) (*InitResult, error) {
	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: %w: provider %q is not configured. Run 'pdfrag settings wizard' to fix",
			domain.ErrConfiguration, domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}

	generator, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		embedder.Close()
		return nil, err
	}
	if generator == nil {
		embedder.Close()
		return nil, fmt.Errorf("%w: %w: provider %q is not configured. Run 'pdfrag settings wizard' to fix",
			domain.ErrConfiguration, domain.ErrLLMUnavailable, settings.LLM.Provider)
	}

	return &InitResult{
		EmbeddingService: WithRateLimit(embedder, settings.Embedding.RateLimit),
		LLMService:       generator,
	}, nil
}

// CreateAndValidateEmbeddingService builds the configured embedding service
// and pings it. An unconfigured provider yields (nil, nil).
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'pdfrag settings wizard' to fix", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(svc, pingTimeout); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'pdfrag settings wizard' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService builds the configured LLM service and pings
// it. An unconfigured provider yields (nil, nil).
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'pdfrag settings wizard' to fix", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(svc, pingTimeout); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'pdfrag settings wizard' to fix",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	dimensions := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		return embedding(ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}))

	case domain.AIProviderOpenAI:
		return embedding(openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}))

	case domain.AIProviderGemini:
		return embedding(geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}))

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use openai, ollama or gemini",
			domain.ErrUnsupportedType)

	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return llm(ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))

	case domain.AIProviderOpenAI:
		return llm(openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))

	case domain.AIProviderAnthropic:
		return llm(anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))

	case domain.AIProviderGemini:
		return llm(geminillm.NewLLMService(context.Background(), geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}))

	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// embedding converts a constructor result to the port type so that a failed
// constructor yields a nil interface rather than a typed nil.
func embedding(svc driven.EmbeddingService, err error) (driven.EmbeddingService, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func llm(svc driven.LLMService, err error) (driven.LLMService, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}
