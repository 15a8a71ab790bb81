package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// Ensure AskService implements the interfaces.
var (
	_ driving.AskService      = (*AskService)(nil)
	_ driven.PromptStoreAware = (*AskService)(nil)
)

// AskService answers a query from the chunks stored in one namespace.
type AskService struct {
	embedder    driven.EmbeddingService
	store       driven.VectorStore
	llm         driven.LLMService
	index       string
	promptStore driven.PromptStore
	genOpts     driven.GenerateOptions
}

// NewAskService creates a new retrieval/answer service over the named index.
func NewAskService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.LLMService,
	index string,
) *AskService {
	return &AskService{
		embedder: embedder,
		store:    store,
		llm:      llm,
		index:    index,
	}
}

// SetPromptStore sets the prompt store for loading the answer template.
func (s *AskService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetGenerateOptions sets the options passed to every generation call.
func (s *AskService) SetGenerateOptions(opts driven.GenerateOptions) {
	s.genOpts = opts
}

// Ask embeds the query, retrieves the top matches, joins their text in
// ranked order, and generates an answer. Errors are not retried.
func (s *AskService) Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error) {
	req, err := req.Normalise()
	if err != nil {
		return nil, err
	}

	logger.Section("Ask")
	logger.Debug("Namespace: %s, top_k: %d, query: %q", req.Namespace, req.TopK, req.Query)

	vector, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrExternalService, err)
	}

	matches, err := s.store.Query(ctx, s.index, req.Namespace, vector, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s/%s: %w", domain.ErrExternalService, s.index, req.Namespace, err)
	}
	if len(matches) > req.TopK {
		matches = matches[:req.TopK]
	}
	logger.Debug("Retrieved %d matches", len(matches))

	prompt := domain.RenderAnswerPrompt(s.answerTemplate(), domain.BuildContext(matches), req.Query)

	answer, err := s.llm.Generate(ctx, prompt, s.genOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: generate answer: %w", domain.ErrExternalService, err)
	}
	logger.Debug("Generated %d characters with %s", len(answer), s.llm.ModelName())

	return &domain.Answer{
		Query:     req.Query,
		Namespace: req.Namespace,
		Answer:    answer,
		Matches:   matches,
	}, nil
}

func (s *AskService) answerTemplate() string {
	if s.promptStore == nil {
		return domain.DefaultAnswerTemplate
	}
	tmpl, err := s.promptStore.Load(driven.PromptAnswer)
	if err != nil || tmpl == "" {
		logger.Warn("Using default answer prompt: %v", err)
		return domain.DefaultAnswerTemplate
	}
	return tmpl
}
