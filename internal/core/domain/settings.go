package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	for _, e := range AllEmbeddingProviders() {
		if e == p {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// VectorStoreProvider identifies the backend holding index records.
type VectorStoreProvider string

// Available vector store backends.
const (
	// VectorStoreSQLite keeps records in a local SQLite database.
	VectorStoreSQLite VectorStoreProvider = "sqlite"

	// VectorStoreMemory keeps records in process memory.
	VectorStoreMemory VectorStoreProvider = "memory"

	// VectorStorePostgres keeps records in Postgres with pgvector.
	VectorStorePostgres VectorStoreProvider = "postgres"

	// VectorStorePinecone keeps records in a Pinecone serverless index.
	VectorStorePinecone VectorStoreProvider = "pinecone"
)

// IsValid returns true if the store provider is recognised.
func (p VectorStoreProvider) IsValid() bool {
	switch p {
	case VectorStoreSQLite, VectorStoreMemory, VectorStorePostgres, VectorStorePinecone:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p VectorStoreProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the store.
func (p VectorStoreProvider) Description() string {
	switch p {
	case VectorStoreSQLite:
		return "SQLite (local file)"
	case VectorStoreMemory:
		return "In-memory (ephemeral)"
	case VectorStorePostgres:
		return "Postgres + pgvector"
	case VectorStorePinecone:
		return "Pinecone (serverless)"
	default:
		return unknownDescription
	}
}

// ArchiveProvider identifies where uploaded originals are archived.
type ArchiveProvider string

// Available archive providers.
const (
	ArchiveNone       ArchiveProvider = "none"
	ArchiveFilesystem ArchiveProvider = "filesystem"
	ArchiveMinio      ArchiveProvider = "minio"
)

// IsValid returns true if the archive provider is recognised.
func (p ArchiveProvider) IsValid() bool {
	switch p {
	case ArchiveNone, ArchiveFilesystem, ArchiveMinio:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// RateLimit caps embedding requests per second. Zero means unlimited.
	RateLimit float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// MaxTokens bounds the generated answer. Zero uses the provider default.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	// Provider selects the backend.
	Provider VectorStoreProvider

	// IndexName is the index all namespaces live in.
	IndexName string

	// Dimension is the vector length. Zero derives it from the embedding model.
	Dimension int

	// Metric is the similarity metric.
	Metric Metric

	// DataDir holds the SQLite database file.
	DataDir string

	// DSN is the Postgres connection string.
	DSN string

	// APIKey is the Pinecone API key.
	APIKey string

	// Cloud and Region place a Pinecone serverless index.
	Cloud  string
	Region string
}

// IngestSettings holds chunking and upload configuration.
type IngestSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters carried into the next chunk.
	ChunkOverlap int

	// NamespaceWords is how many filename words prefix a namespace.
	NamespaceWords int

	// MaxUploadBytes caps the size of an uploaded PDF.
	MaxUploadBytes int64
}

// ArchiveSettings holds upload archive configuration.
type ArchiveSettings struct {
	Provider  ArchiveProvider
	Dir       string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// AllowedOrigins are the CORS origins permitted to call the API.
	AllowedOrigins []string
}

// AppSettings holds all application settings.
// It is built once at startup and passed explicitly into constructors.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorStore VectorStoreSettings
	Ingest      IngestSettings
	Archive     ArchiveSettings
	Server      ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are never defaulted; they come from the config file or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		VectorStore: VectorStoreSettings{
			Provider:  VectorStoreSQLite,
			IndexName: "main",
			Metric:    MetricCosine,
			Cloud:     "aws",
			Region:    "us-east-1",
		},
		Ingest: IngestSettings{
			ChunkSize:      800,
			ChunkOverlap:   200,
			NamespaceWords: 3,
			MaxUploadBytes: 32 << 20,
		},
		Archive: ArchiveSettings{
			Provider: ArchiveNone,
			Bucket:   "pdfrag-uploads",
		},
		Server: ServerSettings{
			Addr:           ":4545",
			AllowedOrigins: []string{"http://localhost:8501"},
		},
	}
}

// IndexSpec returns the index the settings describe.
// A zero dimension is derived from the embedding model.
func (s AppSettings) IndexSpec() IndexSpec {
	dim := s.VectorStore.Dimension
	if dim == 0 {
		dim = EmbeddingDimensions()[s.Embedding.Model]
	}
	return IndexSpec{
		Name:      s.VectorStore.IndexName,
		Dimension: dim,
		Metric:    s.VectorStore.Metric,
	}
}

// Validate fails fast on anything that would break at first use.
// All problems are reported together, wrapped in ErrConfiguration.
func (s AppSettings) Validate() error {
	var problems []string

	if !s.Embedding.Provider.SupportsEmbeddings() {
		problems = append(problems, fmt.Sprintf("embedding provider %q does not support embeddings", s.Embedding.Provider))
	} else if !s.Embedding.IsConfigured() {
		problems = append(problems, fmt.Sprintf("embedding provider %s requires an API key", s.Embedding.Provider))
	}
	if !s.LLM.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown LLM provider %q", s.LLM.Provider))
	} else if !s.LLM.IsConfigured() {
		problems = append(problems, fmt.Sprintf("LLM provider %s requires an API key", s.LLM.Provider))
	}

	switch s.VectorStore.Provider {
	case VectorStorePinecone:
		if s.VectorStore.APIKey == "" {
			problems = append(problems, "pinecone vector store requires an API key")
		}
	case VectorStorePostgres:
		if s.VectorStore.DSN == "" {
			problems = append(problems, "postgres vector store requires a DSN")
		}
	case VectorStoreSQLite, VectorStoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown vector store %q", s.VectorStore.Provider))
	}
	if err := s.IndexSpec().Validate(); err != nil {
		problems = append(problems, strings.TrimPrefix(err.Error(), ErrConfiguration.Error()+": "))
	}

	if s.Ingest.ChunkSize <= 0 {
		problems = append(problems, "chunk size must be positive")
	}
	if s.Ingest.ChunkOverlap < 0 || s.Ingest.ChunkOverlap >= s.Ingest.ChunkSize {
		problems = append(problems, "chunk overlap must be in [0, chunk size)")
	}
	if s.Ingest.NamespaceWords <= 0 {
		problems = append(problems, "namespace words must be positive")
	}

	if !s.Archive.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown archive provider %q", s.Archive.Provider))
	}
	if s.Archive.Provider == ArchiveMinio {
		if s.Archive.Endpoint == "" || s.Archive.AccessKey == "" || s.Archive.SecretKey == "" {
			problems = append(problems, "minio archive requires endpoint and credentials")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
		AIProviderGemini,
	}
}

// AllVectorStoreProviders returns the supported vector store backends.
func AllVectorStoreProviders() []VectorStoreProvider {
	return []VectorStoreProvider{
		VectorStoreSQLite,
		VectorStorePinecone,
		VectorStorePostgres,
		VectorStoreMemory,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
