package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and carry a message.
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrLoad", ErrLoad},
		{"ErrExternalService", ErrExternalService},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrIngestion", ErrIngestion},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrVectorStoreUnavailable", ErrVectorStoreUnavailable},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrIngestion_JoinsStepKind(t *testing.T) {
	cause := errors.New("openai: 429 too many requests")
	err := fmt.Errorf("%w: embed chunk 3: %w: %w", ErrIngestion, ErrExternalService, cause)

	assert.ErrorIs(t, err, ErrIngestion)
	assert.ErrorIs(t, err, ErrExternalService)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "429 too many requests")
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"input", fmt.Errorf("page 2: %w", ErrInvalidInput), KindInput},
		{"load", fmt.Errorf("%w: %w: bad xref", ErrIngestion, ErrLoad), KindLoad},
		{"external", fmt.Errorf("%w: %w", ErrIngestion, ErrExternalService), KindExternal},
		{"rate limited", ErrRateLimited, KindExternal},
		{"configuration", fmt.Errorf("%w: openai api key", ErrConfiguration), KindConfiguration},
		{"embedding unavailable", ErrEmbeddingUnavailable, KindConfiguration},
		{"not found", ErrNotFound, KindNotFound},
		{"unknown", errors.New("disk full"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}
