// Package storage builds the configured vector store.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pdfrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfrag/internal/adapters/driven/storage/pinecone"
	"github.com/custodia-labs/pdfrag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/pdfrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// New opens the vector store selected by settings.
// Failures to open a configured store wrap domain.ErrVectorStoreUnavailable.
func New(ctx context.Context, settings domain.VectorStoreSettings) (driven.VectorStore, error) {
	logger.Debug("storage: opening %s vector store", settings.Provider)

	switch settings.Provider {
	case domain.VectorStoreSQLite, "":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, unavailable(err)
		}
		return store, nil
	case domain.VectorStoreMemory:
		return memory.NewVectorStore(), nil
	case domain.VectorStorePostgres:
		store, err := postgres.NewStore(ctx, settings.DSN)
		if err != nil {
			return nil, unavailable(err)
		}
		return store, nil
	case domain.VectorStorePinecone:
		store, err := pinecone.NewStore(pinecone.Config{
			APIKey: settings.APIKey,
			Cloud:  settings.Cloud,
			Region: settings.Region,
		})
		if err != nil {
			return nil, unavailable(err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: vector store %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrVectorStoreUnavailable, err)
}
