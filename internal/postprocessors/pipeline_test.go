package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// mockProcessor returns fixed chunks, or passes through what it receives.
type mockProcessor struct {
	name     string
	chunks   []domain.Chunk
	err      error
	seenPage *domain.PageRecord
	received []domain.Chunk
}

func (m *mockProcessor) Name() string { return m.name }

func (m *mockProcessor) Process(_ context.Context, page *domain.PageRecord, chunks []domain.Chunk) ([]domain.Chunk, error) {
	m.seenPage = page
	m.received = chunks
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func TestPipeline_AddAndNames(t *testing.T) {
	p := NewPipeline()
	assert.Equal(t, 0, p.Len())

	p.Add(&mockProcessor{name: "chunker"})
	p.Add(&mockProcessor{name: "filter"})

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []string{"chunker", "filter"}, p.Names())
}

func TestPipeline_Process_NilPage(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPipeline_Process_Empty(t *testing.T) {
	chunks, err := NewPipeline().Process(context.Background(), &domain.PageRecord{Text: "revenue grew"})

	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestPipeline_Process_ChainsProcessors(t *testing.T) {
	page := &domain.PageRecord{Text: "revenue grew", PageNumber: 4}
	created := []domain.Chunk{{ID: "c1", Text: "revenue"}, {ID: "c2", Text: "grew"}}
	first := &mockProcessor{name: "chunker", chunks: created}
	second := &mockProcessor{name: "passthrough"}

	chunks, err := NewPipeline(first, second).Process(context.Background(), page)

	require.NoError(t, err)
	assert.Nil(t, first.received)
	assert.Same(t, page, first.seenPage)
	assert.Equal(t, created, second.received)
	assert.Equal(t, created, chunks)
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	boom := errors.New("processor failed")
	p := NewPipeline(&mockProcessor{name: "failing", err: boom})

	_, err := p.Process(context.Background(), &domain.PageRecord{Text: "x", PageNumber: 2})

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "processor failing on page 3")
}

func TestNewChunkingPipeline(t *testing.T) {
	p, err := NewChunkingPipeline(10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{ChunkerName}, p.Names())

	chunks, err := p.Process(context.Background(), &domain.PageRecord{Text: "aaaa bbbb cccc dddd", PageNumber: 0})

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa bbbb", chunks[0].Text)
	assert.Equal(t, "cccc dddd", chunks[1].Text)
	assert.Equal(t, 1, chunks[0].Metadata.PageNumber)
}

func TestNewChunkingPipeline_InvalidSettings(t *testing.T) {
	_, err := NewChunkingPipeline(100, 100)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewChunkingPipeline(0, 0)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
