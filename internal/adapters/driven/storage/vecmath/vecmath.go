// Package vecmath scores and ranks vectors for the stores that search in
// process (sqlite and memory).
package vecmath

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// Score returns the similarity of a and b under metric. Higher is more similar.
//
//   - cosine: cosine similarity in [-1, 1]; a zero vector scores 0
//   - dotproduct: the inner product
//   - euclidean: 1 / (1 + distance), in (0, 1]
func Score(metric domain.Metric, a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(b), len(a))
	}

	switch metric {
	case domain.MetricCosine:
		var dot, na, nb float64
		for i := range a {
			x, y := float64(a[i]), float64(b[i])
			dot += x * y
			na += x * x
			nb += y * y
		}
		if na == 0 || nb == 0 {
			return 0, nil
		}
		return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil

	case domain.MetricDotProduct:
		var dot float64
		for i := range a {
			dot += float64(a[i]) * float64(b[i])
		}
		return dot, nil

	case domain.MetricEuclidean:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return 1 / (1 + math.Sqrt(sum)), nil

	default:
		return 0, fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidInput, metric)
	}
}

// TopK sorts matches by descending score, ties broken by ID, and keeps at
// most k. A non-positive k keeps nothing.
func TopK(matches []domain.Match, k int) []domain.Match {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if k <= 0 {
		return matches[:0]
	}
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
