package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
)

// BuilderFunc creates a PostProcessor from a settings map such as
// {"chunk_size": 800, "overlap": 200}.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Step names one processor of a pipeline and its settings.
type Step struct {
	Name   string
	Config map[string]any
}

// Registry maps processor names to builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds or replaces the builder for name.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates the named processor. Unknown names and rejected settings
// are configuration errors.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q (have %v)", domain.ErrConfiguration, name, r.Names())
	}
	proc, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: processor %s: %w", domain.ErrConfiguration, name, err)
	}
	return proc, nil
}

// BuildPipeline builds every step in order into one pipeline.
func (r *Registry) BuildPipeline(steps ...Step) (*Pipeline, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: pipeline has no steps", domain.ErrConfiguration)
	}
	p := NewPipeline()
	for _, step := range steps {
		proc, err := r.Build(step.Name, step.Config)
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered processor names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
