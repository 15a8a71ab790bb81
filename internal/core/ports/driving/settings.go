package driving

import "github.com/custodia-labs/pdfrag/internal/core/domain"

// SettingsService reads and writes pdfrag's configuration. It backs the
// settings command and service wiring at startup.
type SettingsService interface {
	// Get assembles settings from the config file, defaults and the
	// environment. Environment variables win for API keys and DSNs.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// The Set helpers change one concern and persist it. Models default to
	// the provider's default model when empty.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error
	SetVectorStore(provider domain.VectorStoreProvider, dsn, apiKey string) error

	// Validate runs AppSettings.Validate on the current settings.
	Validate() error
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured
	// providers.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
