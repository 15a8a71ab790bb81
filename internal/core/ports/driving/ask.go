package driving

import (
	"context"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// AskService answers questions from the chunks stored in one namespace.
type AskService interface {
	// Ask embeds the query, retrieves the top matches, and generates an answer.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error)
}
