package services

import (
	"fmt"
	"os"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedRateLimit = "embedding.rate_limit"

	keyLLMProvider  = "llm.provider"
	keyLLMModel     = "llm.model"
	keyLLMBaseURL   = "llm.base_url"
	keyLLMAPIKey    = "llm.api_key"
	keyLLMMaxTokens = "llm.max_tokens"

	keyStoreProvider  = "vector_store.provider"
	keyStoreIndex     = "vector_store.index"
	keyStoreDimension = "vector_store.dimension"
	keyStoreMetric    = "vector_store.metric"
	keyStoreDataDir   = "vector_store.data_dir"
	keyStoreDSN       = "vector_store.dsn"
	keyStoreAPIKey    = "vector_store.api_key"
	keyStoreCloud     = "vector_store.cloud"
	keyStoreRegion    = "vector_store.region"

	keyChunkSize      = "chunking.size"
	keyChunkOverlap   = "chunking.overlap"
	keyNamespaceWords = "namespace.words"

	keyArchiveProvider  = "archive.provider"
	keyArchiveDir       = "archive.dir"
	keyArchiveEndpoint  = "archive.endpoint"
	keyArchiveAccessKey = "archive.access_key"
	keyArchiveSecretKey = "archive.secret_key"
	keyArchiveBucket    = "archive.bucket"
	keyArchiveRegion    = "archive.region"
	keyArchiveUseSSL    = "archive.use_ssl"

	keyServerAddr      = "server.addr"
	keyServerOrigins   = "server.allowed_origins"
	keyServerMaxUpload = "server.max_upload_mb"
)

// Environment variables that override stored secrets.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvAnthropicKey   = "ANTHROPIC_API_KEY"
	EnvGeminiKey      = "GEMINI_API_KEY"
	EnvPineconeKey    = "PINECONE_API_KEY"
	EnvDatabaseURL    = "DATABASE_URL"
	EnvMinioAccessKey = "MINIO_ACCESS_KEY"
	EnvMinioSecretKey = "MINIO_SECRET_KEY"
)

// providerKeyEnv maps cloud providers to their API key variable.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    EnvOpenAIKey,
	domain.AIProviderAnthropic: EnvAnthropicKey,
	domain.AIProviderGemini:    EnvGeminiKey,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The aiValidator may be nil, in which case connectivity checks are skipped.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Stored values win over defaults; environment variables win over stored secrets.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:  s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:     s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:   s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:    s.configStore.GetString(keyEmbedAPIKey),
			RateLimit: s.configStore.GetFloat(keyEmbedRateLimit),
		},
		LLM: domain.LLMSettings{
			Provider:  s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:     s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:   s.configStore.GetString(keyLLMBaseURL),
			APIKey:    s.configStore.GetString(keyLLMAPIKey),
			MaxTokens: s.configStore.GetInt(keyLLMMaxTokens),
		},
		VectorStore: domain.VectorStoreSettings{
			Provider:  domain.VectorStoreProvider(s.getString(keyStoreProvider, string(d.VectorStore.Provider))),
			IndexName: s.getString(keyStoreIndex, d.VectorStore.IndexName),
			Dimension: s.configStore.GetInt(keyStoreDimension),
			Metric:    domain.Metric(s.getString(keyStoreMetric, string(d.VectorStore.Metric))),
			DataDir:   s.configStore.GetString(keyStoreDataDir),
			DSN:       s.configStore.GetString(keyStoreDSN),
			APIKey:    s.configStore.GetString(keyStoreAPIKey),
			Cloud:     s.getString(keyStoreCloud, d.VectorStore.Cloud),
			Region:    s.getString(keyStoreRegion, d.VectorStore.Region),
		},
		Ingest: domain.IngestSettings{
			ChunkSize:      s.getInt(keyChunkSize, d.Ingest.ChunkSize),
			ChunkOverlap:   s.getIntAllowZero(keyChunkOverlap, d.Ingest.ChunkOverlap),
			NamespaceWords: s.getInt(keyNamespaceWords, d.Ingest.NamespaceWords),
			MaxUploadBytes: int64(s.getInt(keyServerMaxUpload, int(d.Ingest.MaxUploadBytes>>20))) << 20,
		},
		Archive: domain.ArchiveSettings{
			Provider:  domain.ArchiveProvider(s.getString(keyArchiveProvider, string(d.Archive.Provider))),
			Dir:       s.configStore.GetString(keyArchiveDir),
			Endpoint:  s.configStore.GetString(keyArchiveEndpoint),
			AccessKey: s.configStore.GetString(keyArchiveAccessKey),
			SecretKey: s.configStore.GetString(keyArchiveSecretKey),
			Bucket:    s.getString(keyArchiveBucket, d.Archive.Bucket),
			Region:    s.configStore.GetString(keyArchiveRegion),
			UseSSL:    s.configStore.GetBool(keyArchiveUseSSL),
		},
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, d.Server.Addr),
			AllowedOrigins: s.configStore.GetStringSlice(keyServerOrigins),
		},
	}
	if len(settings.Server.AllowedOrigins) == 0 {
		settings.Server.AllowedOrigins = d.Server.AllowedOrigins
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv overrides secrets with environment variables when set.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if v := s.getenv(providerKeyEnv[settings.Embedding.Provider]); v != "" {
		settings.Embedding.APIKey = v
	}
	if v := s.getenv(providerKeyEnv[settings.LLM.Provider]); v != "" {
		settings.LLM.APIKey = v
	}
	if v := s.getenv(EnvPineconeKey); v != "" {
		settings.VectorStore.APIKey = v
	}
	if v := s.getenv(EnvDatabaseURL); v != "" {
		settings.VectorStore.DSN = v
	}
	if v := s.getenv(EnvMinioAccessKey); v != "" {
		settings.Archive.AccessKey = v
	}
	if v := s.getenv(EnvMinioSecretKey); v != "" {
		settings.Archive.SecretKey = v
	}
}

// Save persists application settings.
// Secrets that came from the environment are not written to the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyEmbedProvider:   settings.Embedding.Provider.String(),
		keyEmbedModel:      settings.Embedding.Model,
		keyEmbedBaseURL:    settings.Embedding.BaseURL,
		keyEmbedRateLimit:  settings.Embedding.RateLimit,
		keyLLMProvider:     settings.LLM.Provider.String(),
		keyLLMModel:        settings.LLM.Model,
		keyLLMBaseURL:      settings.LLM.BaseURL,
		keyLLMMaxTokens:    settings.LLM.MaxTokens,
		keyStoreProvider:   settings.VectorStore.Provider.String(),
		keyStoreIndex:      settings.VectorStore.IndexName,
		keyStoreDimension:  settings.VectorStore.Dimension,
		keyStoreMetric:     settings.VectorStore.Metric.String(),
		keyStoreDataDir:    settings.VectorStore.DataDir,
		keyStoreCloud:      settings.VectorStore.Cloud,
		keyStoreRegion:     settings.VectorStore.Region,
		keyChunkSize:       settings.Ingest.ChunkSize,
		keyChunkOverlap:    settings.Ingest.ChunkOverlap,
		keyNamespaceWords:  settings.Ingest.NamespaceWords,
		keyServerMaxUpload: int(settings.Ingest.MaxUploadBytes >> 20),
		keyArchiveProvider: string(settings.Archive.Provider),
		keyArchiveDir:      settings.Archive.Dir,
		keyArchiveEndpoint: settings.Archive.Endpoint,
		keyArchiveBucket:   settings.Archive.Bucket,
		keyArchiveRegion:   settings.Archive.Region,
		keyArchiveUseSSL:   settings.Archive.UseSSL,
		keyServerAddr:      settings.Server.Addr,
		keyServerOrigins:   settings.Server.AllowedOrigins,
	}

	secrets := []struct {
		key, val, env string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey, providerKeyEnv[settings.Embedding.Provider]},
		{keyLLMAPIKey, settings.LLM.APIKey, providerKeyEnv[settings.LLM.Provider]},
		{keyStoreAPIKey, settings.VectorStore.APIKey, EnvPineconeKey},
		{keyStoreDSN, settings.VectorStore.DSN, EnvDatabaseURL},
		{keyArchiveAccessKey, settings.Archive.AccessKey, EnvMinioAccessKey},
		{keyArchiveSecretKey, settings.Archive.SecretKey, EnvMinioSecretKey},
	}
	for _, sec := range secrets {
		if sec.val == "" || sec.val == s.getenv(sec.env) {
			continue
		}
		values[sec.key] = sec.val
	}

	if err := s.configStore.SetMany(values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = s.getenv(providerKeyEnv[provider])
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	// A new model usually means a new dimension; let it be derived again.
	settings.VectorStore.Dimension = 0

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = s.getenv(providerKeyEnv[provider])
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorStore configures the vector store backend.
// dsn is used by postgres and apiKey by pinecone; either may come from the environment.
func (s *SettingsService) SetVectorStore(provider domain.VectorStoreProvider, dsn, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid vector store: %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch provider {
	case domain.VectorStorePostgres:
		if dsn == "" {
			dsn = settings.VectorStore.DSN
		}
		if dsn == "" {
			return fmt.Errorf("%w: DSN required for postgres", domain.ErrInvalidInput)
		}
		settings.VectorStore.DSN = dsn
	case domain.VectorStorePinecone:
		if apiKey == "" {
			apiKey = settings.VectorStore.APIKey
		}
		if apiKey == "" {
			return fmt.Errorf("%w: API key required for pinecone", domain.ErrInvalidInput)
		}
		settings.VectorStore.APIKey = apiKey
	}
	settings.VectorStore.Provider = provider

	return s.Save(settings)
}

// Validate checks the current settings fail-fast.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero treats a stored zero as a real value.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func modelOrDefault(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

// baseURLFor keeps a local provider's URL, defaulting it, and clears it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}
