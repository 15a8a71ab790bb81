package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result   *domain.IngestResult
	err      error
	filename string
	body     []byte
}

func (m *mockIngestService) Ingest(_ context.Context, filename string, r io.Reader) (*domain.IngestResult, error) {
	m.filename = filename
	m.body, _ = io.ReadAll(r)
	return m.result, m.err
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer *domain.Answer
	err    error
	req    domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.req = req
	return m.answer, m.err
}

// mockNamespaceService is a mock implementation of driving.NamespaceService.
type mockNamespaceService struct {
	namespaces []domain.NamespaceInfo
	err        error
}

func (m *mockNamespaceService) List(_ context.Context) ([]domain.NamespaceInfo, error) {
	return m.namespaces, m.err
}

func validPorts() *Ports {
	return &Ports{Ingest: &mockIngestService{}, Ask: &mockAskService{}}
}
