package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
)

// Ensure RateLimitedEmbedding implements the interface.
var _ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)

// RateLimitedEmbedding throttles Embed calls with a token bucket.
// All other methods pass through to the wrapped service.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// WithRateLimit wraps svc so Embed runs at most requestsPerSecond times per
// second with a burst of one. A non-positive rate returns svc unchanged.
func WithRateLimit(svc driven.EmbeddingService, requestsPerSecond float64) driven.EmbeddingService {
	if svc == nil || requestsPerSecond <= 0 {
		return svc
	}
	return &RateLimitedEmbedding{
		EmbeddingService: svc,
		limiter:          rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Embed waits for a token and then delegates.
func (r *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return r.EmbeddingService.Embed(ctx, text)
}

// Limit returns the configured rate in requests per second.
func (r *RateLimitedEmbedding) Limit() float64 {
	return float64(r.limiter.Limit())
}
