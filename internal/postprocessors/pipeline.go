// Package postprocessors turns normalised pages into chunks ready for
// embedding.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs processors in order. The first receives nil chunks and
// creates them; later ones filter or rewrite what they are handed.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a pipeline of the given processors.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process chunks one page.
func (p *Pipeline) Process(ctx context.Context, page *domain.PageRecord) ([]domain.Chunk, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: page is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, proc := range p.processors {
		var err error
		chunks, err = proc.Process(ctx, page, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s on page %d: %w", proc.Name(), page.DisplayNumber(), err)
		}
	}
	logger.Debug("page %d: %d chunks", page.DisplayNumber(), len(chunks))
	return chunks, nil
}

// Add appends a processor.
func (p *Pipeline) Add(proc driven.PostProcessor) {
	p.processors = append(p.processors, proc)
}

// Len returns the number of processors.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// Names lists processor names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}
