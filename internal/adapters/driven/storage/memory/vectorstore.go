package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/pdfrag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Contents are lost when the process exits.
type VectorStore struct {
	mu      sync.RWMutex
	indexes map[string]*memIndex
}

type memIndex struct {
	spec       domain.IndexSpec
	namespaces map[string]map[string]domain.IndexRecord // namespace -> id -> record
	owner      map[string]string                        // id -> namespace
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		indexes: make(map[string]*memIndex),
	}
}

// EnsureIndex creates the index if it does not exist.
func (s *VectorStore) EnsureIndex(_ context.Context, spec domain.IndexSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indexes[spec.Name]; ok {
		if idx.spec.Dimension != spec.Dimension {
			return fmt.Errorf("%w: index %s has dimension %d, want %d",
				domain.ErrDimensionMismatch, spec.Name, idx.spec.Dimension, spec.Dimension)
		}
		return nil
	}

	s.indexes[spec.Name] = &memIndex{
		spec:       spec,
		namespaces: make(map[string]map[string]domain.IndexRecord),
		owner:      make(map[string]string),
	}
	return nil
}

// Upsert stores copies of records, replacing any with the same ID.
func (s *VectorStore) Upsert(_ context.Context, index, namespace string, records []domain.IndexRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexes[index]
	if !ok {
		return fmt.Errorf("%w: index %s", domain.ErrNotFound, index)
	}
	for _, r := range records {
		if len(r.Vector) != idx.spec.Dimension {
			return fmt.Errorf("%w: record %s has %d values, index %s wants %d",
				domain.ErrDimensionMismatch, r.ID, len(r.Vector), index, idx.spec.Dimension)
		}
	}

	for _, r := range records {
		if prev, ok := idx.owner[r.ID]; ok && prev != namespace {
			delete(idx.namespaces[prev], r.ID)
			if len(idx.namespaces[prev]) == 0 {
				delete(idx.namespaces, prev)
			}
		}
		ns := idx.namespaces[namespace]
		if ns == nil {
			ns = make(map[string]domain.IndexRecord)
			idx.namespaces[namespace] = ns
		}
		r.Namespace = namespace
		r.Vector = append([]float32(nil), r.Vector...)
		ns[r.ID] = r
		idx.owner[r.ID] = namespace
	}
	return nil
}

// Query returns the topK most similar records in namespace.
func (s *VectorStore) Query(
	ctx context.Context, index, namespace string, vector []float32, topK int,
) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[index]
	if !ok {
		return nil, fmt.Errorf("%w: index %s", domain.ErrNotFound, index)
	}
	if len(vector) != idx.spec.Dimension {
		return nil, fmt.Errorf("%w: query has %d values, index %s wants %d",
			domain.ErrDimensionMismatch, len(vector), index, idx.spec.Dimension)
	}

	matches := []domain.Match{}
	for _, r := range idx.namespaces[namespace] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score, err := vecmath.Score(idx.spec.Metric, vector, r.Vector)
		if err != nil {
			return nil, err
		}
		matches = append(matches, domain.Match{ID: r.ID, Score: score, Metadata: r.Metadata})
	}
	return vecmath.TopK(matches, topK), nil
}

// Namespaces lists the namespaces of index, sorted by name.
// An unknown index has no namespaces.
func (s *VectorStore) Namespaces(_ context.Context, index string) ([]domain.NamespaceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := []domain.NamespaceInfo{}
	idx, ok := s.indexes[index]
	if !ok {
		return infos, nil
	}
	for name, recs := range idx.namespaces {
		infos = append(infos, domain.NamespaceInfo{Name: name, RecordCount: len(recs)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}
