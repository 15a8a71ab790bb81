package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// MockIngestService implements driving.IngestService for testing.
type MockIngestService struct {
	IngestFunc func(ctx context.Context, filename string, r io.Reader) (*domain.IngestResult, error)
}

func (m *MockIngestService) Ingest(ctx context.Context, filename string, r io.Reader) (*domain.IngestResult, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, filename, r)
	}
	return &domain.IngestResult{
		Filename:   filename,
		Namespace:  "annual-report-2024-20250101000000",
		Index:      "main",
		PageCount:  3,
		ChunkCount: 9,
	}, nil
}

// MockAskService implements driving.AskService for testing.
type MockAskService struct {
	AskFunc func(ctx context.Context, req domain.AskRequest) (*domain.Answer, error)
}

func (m *MockAskService) Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, req)
	}
	return &domain.Answer{Query: req.Query, Namespace: req.Namespace, Answer: "mock answer"}, nil
}

// MockNamespaceService implements driving.NamespaceService for testing.
type MockNamespaceService struct {
	ListFunc func(ctx context.Context) ([]domain.NamespaceInfo, error)
}

func (m *MockNamespaceService) List(ctx context.Context) ([]domain.NamespaceInfo, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.NamespaceInfo{{Name: "annual-report-2024-20250101000000", RecordCount: 9}}, nil
}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	Settings    domain.AppSettings
	GetErr      error
	ValidateErr error

	EmbeddingCalls []string
	LLMCalls       []string
	StoreCalls     []string
}

func newMockSettingsService() *MockSettingsService {
	s := domain.DefaultAppSettings()
	s.Embedding.APIKey = "sk-test-embedding-key"
	s.LLM.APIKey = "sk-test-llm-key"
	return &MockSettingsService{Settings: s}
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	s := m.Settings
	return &s, nil
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	m.Settings = *settings
	return nil
}

func (m *MockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.EmbeddingCalls = append(m.EmbeddingCalls, strings.Join([]string{string(provider), model, apiKey}, "|"))
	return nil
}

func (m *MockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.LLMCalls = append(m.LLMCalls, strings.Join([]string{string(provider), model, apiKey}, "|"))
	return nil
}

func (m *MockSettingsService) SetVectorStore(provider domain.VectorStoreProvider, dsn, apiKey string) error {
	m.StoreCalls = append(m.StoreCalls, strings.Join([]string{string(provider), dsn, apiKey}, "|"))
	return nil
}

func (m *MockSettingsService) Validate() error {
	return m.ValidateErr
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *MockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *MockSettingsService) ValidateLLMConfig() error { return nil }

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() func() {
	SetServices(&MockIngestService{}, &MockAskService{}, &MockNamespaceService{})
	SetSettingsService(newMockSettingsService())
	return resetGlobals
}

func resetGlobals() {
	SetServices(nil, nil, nil)
	SetSettingsService(nil)
	SetWiring(nil)
	appSettings = nil
	closeServices = nil
}

// executeCommand runs rootCmd with args, resetting flag state first.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	verbose = false
	configDir = ""
	ingestJSON = false
	askTopK = domain.DefaultTopK
	askJSON = false
	namespacesJSON = false
	serveAddr = ""
	versionJSON = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
