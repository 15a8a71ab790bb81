package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
)

// pingTimeout bounds every connectivity check.
const pingTimeout = 5 * time.Second

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

type pinger interface {
	Ping(ctx context.Context) error
}

func ping(p pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.Ping(ctx)
}

// ConfigValidator checks provider settings by building a throwaway client
// and pinging it. The settings wizard runs it before saving.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator with a 5 second ping budget.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// WithTimeout changes the ping budget.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	if d > 0 {
		v.timeout = d
	}
	return v
}

// ValidateEmbedding reports whether the embedding provider answers.
// Unconfigured settings pass; there is nothing to check yet.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	if err := ping(svc, v.timeout); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, settings.Provider, err)
	}
	return nil
}

// ValidateLLM reports whether the LLM provider answers.
// Unconfigured settings pass.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	if err := ping(svc, v.timeout); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrLLMUnavailable, settings.Provider, err)
	}
	return nil
}
