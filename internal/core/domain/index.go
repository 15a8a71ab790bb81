package domain

import "fmt"

// Metric is the similarity metric of a vector index.
type Metric string

// Supported similarity metrics.
const (
	MetricCosine     Metric = "cosine"
	MetricDotProduct Metric = "dotproduct"
	MetricEuclidean  Metric = "euclidean"
)

// IsValid returns true if the metric is recognised.
func (m Metric) IsValid() bool {
	switch m {
	case MetricCosine, MetricDotProduct, MetricEuclidean:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Metric) String() string {
	return string(m)
}

// IndexSpec describes the index that records are written to.
type IndexSpec struct {
	// Name is the index name (e.g. "main").
	Name string

	// Dimension is the fixed vector length.
	Dimension int

	// Metric is the similarity metric.
	Metric Metric
}

// Validate checks the spec is usable for index creation.
func (s IndexSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: index name is required", ErrConfiguration)
	}
	if s.Dimension <= 0 {
		return fmt.Errorf("%w: index dimension must be positive, got %d", ErrConfiguration, s.Dimension)
	}
	if !s.Metric.IsValid() {
		return fmt.Errorf("%w: unknown metric %q", ErrConfiguration, s.Metric)
	}
	return nil
}

// RecordMetadata is the metadata persisted with each vector.
type RecordMetadata struct {
	// Text is the chunk text used to build answer context.
	Text string `json:"text"`

	// Source is the chunk source tag.
	Source string `json:"source"`

	// PageNumber is the one-based page number.
	PageNumber int `json:"page_number"`
}

// IndexRecord is a chunk vector as stored in the vector store.
// Records are written once and read-only afterwards.
type IndexRecord struct {
	// ID is the record identifier, unique within the index.
	ID string

	// Vector is the embedding; its length equals the index dimension.
	Vector []float32

	// Metadata carries the chunk text and provenance.
	Metadata RecordMetadata

	// Namespace is the partition the record belongs to.
	Namespace string
}

// NewIndexRecord builds the stored form of an embedded chunk.
func NewIndexRecord(namespace string, chunk Chunk, vector []float32) IndexRecord {
	return IndexRecord{
		ID:     chunk.ID,
		Vector: vector,
		Metadata: RecordMetadata{
			Text:       chunk.Text,
			Source:     chunk.Metadata.Source,
			PageNumber: chunk.Metadata.PageNumber,
		},
		Namespace: namespace,
	}
}

// Match is a ranked similarity search hit.
type Match struct {
	// ID is the matched record.
	ID string

	// Score is the similarity score reported by the store.
	// Higher is more similar.
	Score float64

	// Metadata is the stored record metadata.
	Metadata RecordMetadata
}

// NamespaceInfo summarises one partition of an index.
type NamespaceInfo struct {
	// Name is the namespace identifier.
	Name string `json:"name"`

	// RecordCount is the number of stored records.
	RecordCount int `json:"record_count"`
}
