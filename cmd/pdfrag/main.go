// Command pdfrag ingests PDFs into a vector index and answers questions
// about them.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/pdfrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/pdfrag/internal/adapters/driven/archive"
	"github.com/custodia-labs/pdfrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfrag/internal/adapters/driven/storage"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
	"github.com/custodia-labs/pdfrag/internal/core/services"
	"github.com/custodia-labs/pdfrag/internal/loaders/pdf"
	"github.com/custodia-labs/pdfrag/internal/logger"
	"github.com/custodia-labs/pdfrag/internal/normalisers/whitespace"
	"github.com/custodia-labs/pdfrag/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetWiring(&cli.Wiring{
		Settings: newSettingsService,
		Services: newServices,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", domain.ErrorKind(err), err)
		os.Exit(1)
	}
}

func newSettingsService(configDir string) (driving.SettingsService, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return services.NewSettingsService(configStore, ai.NewConfigValidator()), nil
}

// newServices opens the store and providers and assembles the pipelines.
// Anything opened before a failure is closed again.
func newServices(ctx context.Context, configDir string, settings domain.AppSettings) (*cli.Services, error) {
	logger.Section("Startup")

	store, err := storage.New(ctx, settings.VectorStore)
	if err != nil {
		return nil, err
	}

	aiServices, err := ai.Init(&settings)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	closeAll := func() error {
		aiServices.Close()
		return store.Close()
	}

	pipeline, err := postprocessors.NewChunkingPipeline(settings.Ingest.ChunkSize, settings.Ingest.ChunkOverlap)
	if err != nil {
		_ = closeAll()
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	uploads, err := archive.New(settings.Archive)
	if err != nil {
		_ = closeAll()
		return nil, fmt.Errorf("%w: opening archive: %w", domain.ErrConfiguration, err)
	}

	spec := settings.IndexSpec()
	namespaces := services.NewNamespaceGenerator(services.SystemClock{}, settings.Ingest.NamespaceWords)

	ingest := services.NewIngestService(
		pdf.New(),
		whitespace.New(),
		pipeline,
		aiServices.EmbeddingService,
		store,
		namespaces,
		spec,
	)
	if uploads != nil {
		ingest.SetArchive(uploads)
	}

	ask := services.NewAskService(aiServices.EmbeddingService, store, aiServices.LLMService, spec.Name)
	promptDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		logger.Warn("prompt store unavailable, using built-in prompts: %v", err)
	} else {
		ask.SetPromptStore(prompts)
	}

	logger.Info("store=%s index=%s dim=%d metric=%s embed=%s llm=%s",
		settings.VectorStore.Provider, spec.Name, spec.Dimension, spec.Metric,
		aiServices.EmbeddingService.ModelName(), aiServices.LLMService.ModelName())

	return &cli.Services{
		Ingest:     ingest,
		Ask:        ask,
		Namespaces: services.NewNamespaceService(store, spec.Name),
		Settings:   settings,
		Close:      closeAll,
	}, nil
}
