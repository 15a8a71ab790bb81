package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// newTestSettings returns a service whose environment is the given map.
func newTestSettings(env map[string]string) (*SettingsService, *mockConfigStore) {
	store := newMockConfigStore()
	service := NewSettingsService(store, nil)
	service.getenv = func(k string) string { return env[k] }
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettings(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newTestSettings(nil)
	_ = store.Set("embedding.provider", "ollama")
	_ = store.Set("embedding.model", "nomic-embed-text")
	_ = store.Set("embedding.rate_limit", 3.0)
	_ = store.Set("vector_store.provider", "postgres")
	_ = store.Set("vector_store.dimension", int64(768))
	_ = store.Set("chunking.size", int64(500))
	_ = store.Set("chunking.overlap", int64(0))
	_ = store.Set("server.max_upload_mb", int64(8))
	_ = store.Set("server.allowed_origins", []any{"http://ui"})
	_ = store.Set("archive.provider", "filesystem")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.InDelta(t, 3.0, settings.Embedding.RateLimit, 1e-9)
	assert.Equal(t, domain.VectorStorePostgres, settings.VectorStore.Provider)
	assert.Equal(t, 768, settings.VectorStore.Dimension)
	assert.Equal(t, 500, settings.Ingest.ChunkSize)
	assert.Equal(t, 0, settings.Ingest.ChunkOverlap, "explicit zero overlap is kept")
	assert.Equal(t, int64(8<<20), settings.Ingest.MaxUploadBytes)
	assert.Equal(t, []string{"http://ui"}, settings.Server.AllowedOrigins)
	assert.Equal(t, domain.ArchiveFilesystem, settings.Archive.Provider)
}

func TestSettingsService_Get_InvalidProviderReturnsDefault(t *testing.T) {
	service, store := newTestSettings(nil)
	_ = store.Set("embedding.provider", "invalid_provider")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	service, store := newTestSettings(map[string]string{
		EnvOpenAIKey:      "sk-env",
		EnvAnthropicKey:   "sk-ant-env",
		EnvPineconeKey:    "pc-env",
		EnvDatabaseURL:    "postgres://env",
		EnvMinioAccessKey: "ak",
		EnvMinioSecretKey: "sk",
	})
	_ = store.Set("embedding.api_key", "sk-file")
	_ = store.Set("llm.provider", "anthropic")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-env", settings.Embedding.APIKey)
	assert.Equal(t, "sk-ant-env", settings.LLM.APIKey)
	assert.Equal(t, "pc-env", settings.VectorStore.APIKey)
	assert.Equal(t, "postgres://env", settings.VectorStore.DSN)
	assert.Equal(t, "ak", settings.Archive.AccessKey)
	assert.Equal(t, "sk", settings.Archive.SecretKey)
}

func TestSettingsService_Get_OllamaIgnoresCloudKeys(t *testing.T) {
	service, store := newTestSettings(map[string]string{EnvOpenAIKey: "sk-env"})
	_ = store.Set("embedding.provider", "ollama")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Empty(t, settings.Embedding.APIKey)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	service, store := newTestSettings(nil)

	want := domain.DefaultAppSettings()
	want.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderGemini, Model: "text-embedding-004", APIKey: "g-key", RateLimit: 1.5,
	}
	want.LLM = domain.LLMSettings{
		Provider: domain.AIProviderAnthropic, Model: "claude-3-5-sonnet-latest", APIKey: "sk-ant", MaxTokens: 1024,
	}
	want.VectorStore.Provider = domain.VectorStorePinecone
	want.VectorStore.APIKey = "pc"
	want.VectorStore.Dimension = 768
	want.Ingest.ChunkSize = 1000
	want.Ingest.ChunkOverlap = 100
	want.Archive = domain.ArchiveSettings{
		Provider: domain.ArchiveMinio, Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s",
		Bucket: "b", Region: "us-east-1", UseSSL: true,
	}
	want.Server = domain.ServerSettings{Addr: ":8080", AllowedOrigins: []string{"http://x"}}

	require.NoError(t, service.Save(&want))
	assert.Equal(t, 1, store.writes)

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSettingsService_Save_SkipsEnvironmentSecrets(t *testing.T) {
	service, store := newTestSettings(map[string]string{EnvOpenAIKey: "sk-env"})

	settings, err := service.Get()
	require.NoError(t, err)
	require.NoError(t, service.Save(settings))

	_, stored := store.Get("embedding.api_key")
	assert.False(t, stored, "environment secret must not be persisted")
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	t.Run("ollama gets default model and base url", func(t *testing.T) {
		service, _ := newTestSettings(nil)

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

		s, _ := service.Get()
		assert.Equal(t, domain.AIProviderOllama, s.Embedding.Provider)
		assert.Equal(t, "nomic-embed-text", s.Embedding.Model)
		assert.Equal(t, "http://localhost:11434", s.Embedding.BaseURL)
		assert.Equal(t, 768, s.IndexSpec().Dimension)
	})

	t.Run("cloud provider clears base url", func(t *testing.T) {
		service, store := newTestSettings(nil)
		_ = store.Set("embedding.base_url", "http://localhost:11434")

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "sk"))

		s, _ := service.Get()
		assert.Empty(t, s.Embedding.BaseURL)
		assert.Equal(t, "text-embedding-3-large", s.Embedding.Model)
		assert.Equal(t, 3072, s.IndexSpec().Dimension)
	})

	t.Run("key from environment", func(t *testing.T) {
		service, _ := newTestSettings(map[string]string{EnvGeminiKey: "g"})
		assert.NoError(t, service.SetEmbeddingProvider(domain.AIProviderGemini, "", ""))
	})

	errs := []struct {
		name     string
		provider domain.AIProvider
		key      string
	}{
		{"invalid provider", "nope", "k"},
		{"anthropic has no embeddings", domain.AIProviderAnthropic, "k"},
		{"missing key", domain.AIProviderOpenAI, ""},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestSettings(nil)
			err := service.SetEmbeddingProvider(tt.provider, "", tt.key)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service, _ := newTestSettings(nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant"))

	s, _ := service.Get()
	assert.Equal(t, domain.AIProviderAnthropic, s.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", s.LLM.Model)
	assert.Equal(t, "sk-ant", s.LLM.APIKey)

	assert.ErrorIs(t, service.SetLLMProvider("nope", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetLLMProvider(domain.AIProviderGemini, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetVectorStore(t *testing.T) {
	tests := []struct {
		name     string
		provider domain.VectorStoreProvider
		dsn, key string
		wantErr  bool
	}{
		{"sqlite", domain.VectorStoreSQLite, "", "", false},
		{"memory", domain.VectorStoreMemory, "", "", false},
		{"postgres with dsn", domain.VectorStorePostgres, "postgres://localhost/db", "", false},
		{"postgres without dsn", domain.VectorStorePostgres, "", "", true},
		{"pinecone with key", domain.VectorStorePinecone, "", "pc", false},
		{"pinecone without key", domain.VectorStorePinecone, "", "", true},
		{"unknown", "chroma", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestSettings(nil)

			err := service.SetVectorStore(tt.provider, tt.dsn, tt.key)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			s, _ := service.Get()
			assert.Equal(t, tt.provider, s.VectorStore.Provider)
		})
	}
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("missing key is a configuration error", func(t *testing.T) {
		service, _ := newTestSettings(nil)
		assert.ErrorIs(t, service.Validate(), domain.ErrConfiguration)
	})

	t.Run("environment keys satisfy validation", func(t *testing.T) {
		service, _ := newTestSettings(map[string]string{EnvOpenAIKey: "sk"})
		assert.NoError(t, service.Validate())
	})
}

func TestSettingsService_ValidateProviderConfigs(t *testing.T) {
	tests := []struct {
		name      string
		validator *mockAIConfigValidator
		wantEmbed bool
		wantLLM   bool
	}{
		{"nil validator", nil, false, false},
		{"valid", &mockAIConfigValidator{}, false, false},
		{"embedding error", &mockAIConfigValidator{embedErr: assert.AnError}, true, false},
		{"llm error", &mockAIConfigValidator{llmErr: assert.AnError}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(newMockConfigStore(), nil)
			if tt.validator != nil {
				service = NewSettingsService(newMockConfigStore(), tt.validator)
			}

			assert.Equal(t, tt.wantEmbed, service.ValidateEmbeddingConfig() != nil)
			assert.Equal(t, tt.wantLLM, service.ValidateLLMConfig() != nil)
		})
	}
}
