package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

type promptSpec struct {
	fallback     string
	placeholders []string
}

// prompts lists every template the store knows about.
var prompts = map[string]promptSpec{
	driven.PromptAnswer: {
		fallback:     domain.DefaultAnswerTemplate,
		placeholders: []string{"{context}", "{query}"},
	},
}

const promptsReadme = `# pdfrag prompts

answer.txt turns retrieved context and a question into an answer.

Placeholders:
  {context}  retrieved chunk text, one chunk per line, best match first
  {query}    the question as asked

Edits apply to the next question, including inside a running chat.
A prompt missing either placeholder is ignored and the built-in one is used.
Delete a file to restore the built-in prompt.
`

// cachedPrompt remembers which version of the file a template came from.
type cachedPrompt struct {
	text    string
	modTime time.Time
	size    int64
}

// PromptStore serves answer templates from text files under a directory,
// falling back to the built-in templates. Files are seeded on first use and
// re-read whenever they change on disk.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

// NewPromptStore creates a store over dir, or ~/.pdfrag/prompts when dir
// is empty. Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]cachedPrompt)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template. Unusable files yield the built-in
// template; only unknown names are errors.
func (s *PromptStore) Load(name string) (string, error) {
	spec, ok := prompts[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown prompt %q", domain.ErrNotFound, name)
	}

	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		logger.Debug("prompts: %v; using built-in %s prompt", s.seedErr, name)
		return spec.fallback, nil
	}

	path := s.path(name)
	info, err := os.Stat(path)
	if err != nil {
		return spec.fallback, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[name]; ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.text, nil
	}

	text, err := readPrompt(path, spec)
	if err != nil {
		logger.Warn("prompts: %v; using built-in %s prompt", err, name)
		text = spec.fallback
	}
	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime(), size: info.Size()}
	return text, nil
}

// Reload drops every cached template.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]cachedPrompt)
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// seed creates the directory, any missing template files and the README.
// Existing files are never overwritten.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	files := map[string]string{"README.md": promptsReadme}
	for name, spec := range prompts {
		files[name+".txt"] = spec.fallback
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.seedErr = fmt.Errorf("write %s: %w", file, err)
			return
		}
	}
}

func readPrompt(path string, spec promptSpec) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	for _, p := range spec.placeholders {
		if !strings.Contains(text, p) {
			return "", fmt.Errorf("%s is missing placeholder %s", filepath.Base(path), p)
		}
	}
	return text, nil
}
