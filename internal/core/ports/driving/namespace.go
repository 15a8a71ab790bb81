package driving

import (
	"context"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// NamespaceService lists the namespaces of the configured index.
type NamespaceService interface {
	List(ctx context.Context) ([]domain.NamespaceInfo, error)
}
