// Package cli provides the pdfrag command line interface.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

var (
	version = "dev"

	verbose   bool
	configDir string

	ingestService    driving.IngestService
	askService       driving.AskService
	namespaceService driving.NamespaceService
	settingsService  driving.SettingsService

	// appSettings are the settings the services were built from.
	appSettings *domain.AppSettings

	wiring        *Wiring
	closeServices func() error
)

// Services is the set of core services a command runs against.
type Services struct {
	Ingest     driving.IngestService
	Ask        driving.AskService
	Namespaces driving.NamespaceService

	// Settings are the effective settings the services were built from.
	Settings domain.AppSettings

	// Close releases stores and provider clients.
	Close func() error
}

// Wiring builds services on demand so commands like version and settings
// never touch providers or stores.
type Wiring struct {
	Settings func(configDir string) (driving.SettingsService, error)
	Services func(ctx context.Context, configDir string, settings domain.AppSettings) (*Services, error)
}

var rootCmd = &cobra.Command{
	Use:   "pdfrag",
	Short: "Chat with your PDFs",
	Long: `pdfrag ingests PDF documents into a vector index and answers questions
about them with retrieval-augmented generation.

Each ingested PDF gets its own namespace. Ask questions against a namespace
from the command line, the interactive chat, the HTTP API or an MCP client.`,
	SilenceUsage:      true,
	PersistentPreRunE: bootstrap,
}

func init() {
	// cobra's Print helpers default to stderr; answers and JSON belong on stdout.
	rootCmd.SetOut(os.Stdout)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.pdfrag)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetWiring sets how services are built.
func SetWiring(w *Wiring) {
	wiring = w
}

// SetServices injects ready-made services, bypassing the wiring.
func SetServices(ingest driving.IngestService, ask driving.AskService, namespaces driving.NamespaceService) {
	ingestService = ingest
	askService = ask
	namespaceService = namespaces
}

// SetSettingsService injects the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			logger.Warn("closing services: %v", cerr)
		}
		closeServices = nil
	}
	return err
}

func bootstrap(_ *cobra.Command, _ []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()
	logger.SetVerbose(verbose)

	if settingsService == nil && wiring != nil && wiring.Settings != nil {
		s, err := wiring.Settings(configDir)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		settingsService = s
	}
	return nil
}

// requireServices builds the core services on first use.
func requireServices(cmd *cobra.Command) error {
	if ingestService != nil && askService != nil && namespaceService != nil {
		return nil
	}
	if wiring == nil || wiring.Services == nil || settingsService == nil {
		return errors.New("services not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if configDir != "" {
		if settings.VectorStore.DataDir == "" {
			settings.VectorStore.DataDir = filepath.Join(configDir, "data")
		}
		if settings.Archive.Dir == "" {
			settings.Archive.Dir = filepath.Join(configDir, "archive")
		}
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w. Run 'pdfrag settings wizard' to fix", err)
	}

	svc, err := wiring.Services(cmd.Context(), configDir, *settings)
	if err != nil {
		return err
	}
	ingestService = svc.Ingest
	askService = svc.Ask
	namespaceService = svc.Namespaces
	appSettings = &svc.Settings
	closeServices = svc.Close
	logger.Debug("services ready: %s store, index %s",
		svc.Settings.VectorStore.Provider, svc.Settings.VectorStore.IndexName)
	return nil
}

// currentSettings returns the settings services were built from, or defaults
// when services were injected directly.
func currentSettings() domain.AppSettings {
	if appSettings != nil {
		return *appSettings
	}
	return domain.DefaultAppSettings()
}
