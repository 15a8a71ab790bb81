package postprocessors

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/postprocessors/chunker"
)

// ChunkerName is the registry name of the recursive text splitter.
const ChunkerName = "chunker"

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register(ChunkerName, buildChunker)
}

// NewChunkingPipeline returns the ingestion pipeline: a single recursive
// splitter with the given size and overlap, in characters.
func NewChunkingPipeline(chunkSize, overlap int) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	return r.BuildPipeline(Step{
		Name:   ChunkerName,
		Config: map[string]any{"chunk_size": chunkSize, "overlap": overlap},
	})
}

// buildChunker creates the splitter. Recognised keys:
//   - chunk_size (int): characters per chunk, default 800
//   - overlap (int): characters carried into the next chunk, default 200
//   - separators ([]string): ordered split separators
//
// An overlap that is not smaller than the chunk size is rejected rather
// than silently clamped.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	size := chunker.DefaultChunkSize
	overlap := chunker.DefaultChunkOverlap

	if v, ok := cfg["chunk_size"]; ok {
		size = toInt(v)
		if size <= 0 {
			return nil, fmt.Errorf("chunk_size must be positive, got %v", v)
		}
	}
	if v, ok := cfg["overlap"]; ok {
		overlap = toInt(v)
		if overlap < 0 {
			return nil, fmt.Errorf("overlap must not be negative, got %v", v)
		}
	}
	if overlap >= size {
		return nil, errors.New("overlap must be smaller than chunk_size")
	}

	opts := []chunker.Option{chunker.WithChunkSize(size), chunker.WithOverlap(overlap)}
	if seps := toStrings(cfg["separators"]); len(seps) > 0 {
		opts = append(opts, chunker.WithSeparators(seps...))
	}
	return chunker.New(opts...), nil
}

// toInt accepts the number types TOML and JSON decoding produce.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return -1
	}
}

func toStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
