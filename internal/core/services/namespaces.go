package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
)

// Ensure NamespaceService implements the interface.
var _ driving.NamespaceService = (*NamespaceService)(nil)

// NamespaceService lists the namespaces held by the vector store.
type NamespaceService struct {
	store driven.VectorStore
	index string
}

// NewNamespaceService creates a namespace listing service over the named index.
func NewNamespaceService(store driven.VectorStore, index string) *NamespaceService {
	return &NamespaceService{store: store, index: index}
}

// List returns the namespaces sorted by name.
func (s *NamespaceService) List(ctx context.Context) ([]domain.NamespaceInfo, error) {
	infos, err := s.store.Namespaces(ctx, s.index)
	if err != nil {
		return nil, fmt.Errorf("%w: list namespaces: %w", domain.ErrExternalService, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
