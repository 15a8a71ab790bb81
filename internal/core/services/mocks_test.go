package services

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
)

// fixedClock always reports the same instant.
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	pages    []domain.PageRecord
	err      error
	seenPath string
	seenData []byte
}

func (m *mockLoader) Load(_ context.Context, path string) ([]domain.PageRecord, error) {
	m.seenPath = path
	m.seenData, _ = os.ReadFile(path)
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.PageRecord, len(m.pages))
	copy(out, m.pages)
	return out, nil
}

// mockNormaliser upper-cases page text so tests can see it ran.
type mockNormaliser struct{}

func (mockNormaliser) Name() string { return "upper" }

func (mockNormaliser) Normalise(pages []domain.PageRecord) []domain.PageRecord {
	out := make([]domain.PageRecord, len(pages))
	for i, p := range pages {
		out[i] = domain.PageRecord{Text: strings.ToUpper(p.Text), PageNumber: p.PageNumber}
	}
	return out
}

// mockPipeline emits one chunk per space-separated word.
type mockPipeline struct {
	err error
}

func (m *mockPipeline) Process(_ context.Context, page *domain.PageRecord) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	var chunks []domain.Chunk
	for i, w := range strings.Fields(page.Text) {
		chunks = append(chunks, domain.Chunk{
			ID:       page.Text + "-" + w,
			Text:     w,
			Position: i,
			Metadata: domain.ChunkMetadata{Source: domain.ChunkSource, PageNumber: page.DisplayNumber()},
		})
	}
	return chunks, nil
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	dims      int
	embedErr  error
	failAfter int // successful calls before embedErr is returned
	mu        sync.Mutex
	calls     []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.embedErr != nil && len(m.calls) > m.failAfter {
		return nil, m.embedErr
	}
	v := make([]float32, m.Dimensions())
	v[0] = float32(len(text))
	return v, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 4
}

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockVectorStore implements driven.VectorStore in memory.
type mockVectorStore struct {
	mu         sync.Mutex
	specs      []domain.IndexSpec
	records    map[string][]domain.IndexRecord // namespace -> records
	ensureErr  error
	upsertErr  error
	queryErr   error
	listErr    error
	queryTopK  int
	queryIndex string
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{records: make(map[string][]domain.IndexRecord)}
}

func (m *mockVectorStore) EnsureIndex(_ context.Context, spec domain.IndexSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specs = append(m.specs, spec)
	return m.ensureErr
}

func (m *mockVectorStore) Upsert(_ context.Context, _ string, namespace string, records []domain.IndexRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.records[namespace] = append(m.records[namespace], records...)
	return nil
}

func (m *mockVectorStore) Query(
	_ context.Context, index, namespace string, _ []float32, topK int,
) ([]domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryTopK = topK
	m.queryIndex = index
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var matches []domain.Match
	for i, r := range m.records[namespace] {
		if i == topK {
			break
		}
		matches = append(matches, domain.Match{ID: r.ID, Score: 1 - float64(i)/10, Metadata: r.Metadata})
	}
	return matches, nil
}

func (m *mockVectorStore) Namespaces(_ context.Context, _ string) ([]domain.NamespaceInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.NamespaceInfo
	for ns, recs := range m.records {
		out = append(out, domain.NamespaceInfo{Name: ns, RecordCount: len(recs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response    string
	generateErr error
	prompts     []string
	opts        driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = opts
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

// mockArchive implements driven.DocumentArchive for testing.
type mockArchive struct {
	key  string
	data []byte
	size int64
	err  error
}

func (m *mockArchive) Put(_ context.Context, key string, r io.Reader, size int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.key, m.data, m.size = key, data, size
	return "mock://" + key, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompt string
	err    error
}

func (m *mockPromptStore) Load(_ string) (string, error) { return m.prompt, m.err }

func (m *mockPromptStore) Reload() {}

// mockAIConfigValidator implements driven.AIConfigValidator for testing.
type mockAIConfigValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockAIConfigValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockAIConfigValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

// failingReader returns err after yielding nothing.
type failingReader struct {
	err error
}

func (r failingReader) Read(_ []byte) (int, error) { return 0, r.err }

// mockConfigStore is a map-backed driven.ConfigStore. Numeric getters accept
// the int64 and []any shapes a TOML decoder produces.
type mockConfigStore struct {
	values map[string]any
	writes int
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	switch v := m.values[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	m.writes++
	return nil
}

func (m *mockConfigStore) SetMany(values map[string]any) error {
	for k, v := range values {
		m.values[k] = v
	}
	m.writes++
	return nil
}

func (m *mockConfigStore) Save() error { return nil }

func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Path() string { return "" }
