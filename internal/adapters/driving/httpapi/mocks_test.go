package httpapi

import (
	"context"
	"io"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

type mockIngestService struct {
	result   *domain.IngestResult
	err      error
	filename string
	body     []byte
}

func (m *mockIngestService) Ingest(_ context.Context, filename string, r io.Reader) (*domain.IngestResult, error) {
	m.filename = filename
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.body = body
	if m.err != nil {
		return nil, m.err
	}
	res := *m.result
	res.Filename = filename
	return &res, nil
}

type mockAskService struct {
	answer *domain.Answer
	err    error
	req    domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	if _, err := req.Normalise(); err != nil {
		return nil, err
	}
	return m.answer, nil
}

type mockNamespaceService struct {
	namespaces []domain.NamespaceInfo
	err        error
}

func (m *mockNamespaceService) List(_ context.Context) ([]domain.NamespaceInfo, error) {
	return m.namespaces, m.err
}

type panicAsk struct{}

func (panicAsk) Ask(context.Context, domain.AskRequest) (*domain.Answer, error) {
	panic("boom")
}
