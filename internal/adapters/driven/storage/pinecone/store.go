// Package pinecone provides a vector store backed by a Pinecone serverless
// index, using the official Go client.
package pinecone

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const (
	// DefaultControlURL is the Pinecone control plane.
	DefaultControlURL = "https://api.pinecone.io"

	// upsertBatchSize is the number of vectors per upsert request.
	upsertBatchSize = 100

	defaultCloud  = "aws"
	defaultRegion = "us-east-1"
)

// Config configures the Pinecone store.
type Config struct {
	APIKey     string
	Cloud      string
	Region     string
	ControlURL string
	Timeout    time.Duration

	// ReadyPoll is the interval between readiness checks after index creation.
	ReadyPoll time.Duration
}

// controlPlane is the part of *pinecone.Client the store uses.
type controlPlane interface {
	CreateServerlessIndex(ctx context.Context, in *pinecone.CreateServerlessIndexRequest) (*pinecone.Index, error)
	DescribeIndex(ctx context.Context, idxName string) (*pinecone.Index, error)
}

// dataPlane is the part of *pinecone.IndexConnection the store uses.
type dataPlane interface {
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	DescribeIndexStats(ctx context.Context) (*pinecone.DescribeIndexStatsResponse, error)
	Close() error
}

// connectFunc opens a data plane connection to host scoped to namespace.
type connectFunc func(host, namespace string) (dataPlane, error)

type connKey struct {
	index     string
	namespace string
}

// Store is a Pinecone-backed vector store.
type Store struct {
	cfg     Config
	control controlPlane
	connect connectFunc

	mu    sync.Mutex
	hosts map[string]string // index name -> data plane host
	conns map[connKey]dataPlane
}

// NewStore creates a Pinecone store. No request is made until first use.
func NewStore(cfg Config) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: pinecone API key is required", domain.ErrConfiguration)
	}
	cfg = withDefaults(cfg)

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey:     cfg.APIKey,
		Host:       cfg.ControlURL,
		RestClient: &http.Client{Timeout: cfg.Timeout},
		SourceTag:  "pdfrag",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pinecone client: %w", domain.ErrConfiguration, err)
	}

	connect := func(host, namespace string) (dataPlane, error) {
		conn, err := client.Index(pinecone.NewIndexConnParams{Host: host, Namespace: namespace})
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return newStore(cfg, client, connect), nil
}

func newStore(cfg Config, control controlPlane, connect connectFunc) *Store {
	return &Store{
		cfg:     withDefaults(cfg),
		control: control,
		connect: connect,
		hosts:   make(map[string]string),
		conns:   make(map[connKey]dataPlane),
	}
}

func withDefaults(cfg Config) Config {
	if cfg.Cloud == "" {
		cfg.Cloud = defaultCloud
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.ControlURL == "" {
		cfg.ControlURL = DefaultControlURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ReadyPoll == 0 {
		cfg.ReadyPoll = 2 * time.Second
	}
	return cfg
}

// Close closes every open data plane connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for key, conn := range s.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.conns, key)
	}
	return errors.Join(errs...)
}

// EnsureIndex creates the serverless index if needed and waits until it is ready.
func (s *Store) EnsureIndex(ctx context.Context, spec domain.IndexSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	dimension := int32(spec.Dimension)
	metric := pinecone.IndexMetric(spec.Metric)
	_, err := s.control.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:      spec.Name,
		Cloud:     pinecone.Cloud(s.cfg.Cloud),
		Region:    s.cfg.Region,
		Dimension: &dimension,
		Metric:    &metric,
	})
	err = classify("create index "+spec.Name, err)
	switch {
	case err == nil:
		logger.Info("pinecone: created index %s (%d, %s)", spec.Name, spec.Dimension, spec.Metric)
	case errors.Is(err, domain.ErrAlreadyExists):
		logger.Debug("pinecone: index %s already exists", spec.Name)
	default:
		return err
	}

	idx, err := s.waitReady(ctx, spec.Name)
	if err != nil {
		return err
	}
	if idx.Dimension == nil || int(*idx.Dimension) != spec.Dimension {
		got := 0
		if idx.Dimension != nil {
			got = int(*idx.Dimension)
		}
		return fmt.Errorf("%w: index %s has dimension %d, want %d",
			domain.ErrDimensionMismatch, spec.Name, got, spec.Dimension)
	}
	return nil
}

func (s *Store) waitReady(ctx context.Context, name string) (*pinecone.Index, error) {
	ticker := time.NewTicker(s.cfg.ReadyPoll)
	defer ticker.Stop()

	for {
		idx, err := s.describe(ctx, name)
		if err != nil {
			return nil, err
		}
		if idx.Status != nil && idx.Status.Ready {
			return idx, nil
		}
		logger.Debug("pinecone: waiting for index %s", name)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for index %s: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *Store) describe(ctx context.Context, name string) (*pinecone.Index, error) {
	idx, err := s.control.DescribeIndex(ctx, name)
	if err != nil {
		return nil, classify("describe index "+name, err)
	}
	if idx.Host != "" {
		s.mu.Lock()
		s.hosts[name] = idx.Host
		s.mu.Unlock()
	}
	return idx, nil
}

// conn returns the data plane connection for index and namespace,
// describing the index on first use.
func (s *Store) conn(ctx context.Context, index, namespace string) (dataPlane, error) {
	key := connKey{index: index, namespace: namespace}

	s.mu.Lock()
	c, ok := s.conns[key]
	host := s.hosts[index]
	s.mu.Unlock()
	if ok {
		return c, nil
	}

	if host == "" {
		idx, err := s.describe(ctx, index)
		if err != nil {
			return nil, err
		}
		if idx.Host == "" {
			return nil, fmt.Errorf("%w: index %s has no host yet", domain.ErrExternalService, index)
		}
		host = idx.Host
	}

	c, err := s.connect(host, namespace)
	if err != nil {
		return nil, fmt.Errorf("%w: pinecone connect %s: %w", domain.ErrExternalService, host, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.conns[key]; ok {
		_ = c.Close()
		return existing, nil
	}
	s.conns[key] = c
	return c, nil
}

// Upsert writes records in batches of 100.
func (s *Store) Upsert(ctx context.Context, index, namespace string, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}
	c, err := s.conn(ctx, index, namespace)
	if err != nil {
		return err
	}

	for start := 0; start < len(records); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(records))
		batch := make([]*pinecone.Vector, 0, end-start)
		for _, r := range records[start:end] {
			v, err := toVector(r)
			if err != nil {
				return err
			}
			batch = append(batch, v)
		}
		if _, err := c.UpsertVectors(ctx, batch); err != nil {
			return classify(fmt.Sprintf("upsert batch at %d", start), err)
		}
		logger.Debug("pinecone: upserted %d vectors into %s/%s", end-start, index, namespace)
	}
	return nil
}

func toVector(r domain.IndexRecord) (*pinecone.Vector, error) {
	md, err := structpb.NewStruct(map[string]any{
		"text":        r.Metadata.Text,
		"source":      r.Metadata.Source,
		"page_number": float64(r.Metadata.PageNumber),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: metadata for %s: %w", domain.ErrInvalidInput, r.ID, err)
	}
	values := r.Vector
	return &pinecone.Vector{Id: r.ID, Values: &values, Metadata: md}, nil
}

// Query returns the topK most similar records. Scores are Pinecone's own.
func (s *Store) Query(
	ctx context.Context, index, namespace string, vec []float32, topK int,
) ([]domain.Match, error) {
	matches := []domain.Match{}
	if topK <= 0 {
		return matches, nil
	}
	c, err := s.conn(ctx, index, namespace)
	if err != nil {
		return nil, err
	}

	resp, err := c.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vec,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, classify("query", err)
	}

	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		matches = append(matches, domain.Match{
			ID:       m.Vector.Id,
			Score:    float64(m.Score),
			Metadata: fromMetadata(m.Vector.Metadata),
		})
	}
	return matches, nil
}

// fromMetadata reads the stored fields; missing fields are zero.
func fromMetadata(md *pinecone.Metadata) domain.RecordMetadata {
	fields := md.GetFields()
	return domain.RecordMetadata{
		Text:       fields["text"].GetStringValue(),
		Source:     fields["source"].GetStringValue(),
		PageNumber: int(fields["page_number"].GetNumberValue()),
	}
}

// Namespaces lists namespaces from the index statistics, sorted by name.
// An unknown index has no namespaces.
func (s *Store) Namespaces(ctx context.Context, index string) ([]domain.NamespaceInfo, error) {
	c, err := s.conn(ctx, index, "")
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.NamespaceInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	stats, err := c.DescribeIndexStats(ctx)
	if err != nil {
		return nil, classify("describe index stats", err)
	}

	infos := make([]domain.NamespaceInfo, 0, len(stats.Namespaces))
	for name, ns := range stats.Namespaces {
		count := 0
		if ns != nil {
			count = int(ns.VectorCount)
		}
		infos = append(infos, domain.NamespaceInfo{Name: name, RecordCount: count})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// classify maps a client error onto the domain sentinels.
// 404 and 409 become ErrNotFound and ErrAlreadyExists; anything else is
// an external service failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var perr *pinecone.PineconeError
	if errors.As(err, &perr) {
		switch perr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: pinecone %s: %w", domain.ErrNotFound, op, err)
		case http.StatusConflict:
			return fmt.Errorf("%w: pinecone %s: %w", domain.ErrAlreadyExists, op, err)
		}
		return fmt.Errorf("%w: pinecone %s (status %d): %w", domain.ErrExternalService, op, perr.Code, err)
	}
	return fmt.Errorf("%w: pinecone %s: %w", domain.ErrExternalService, op, err)
}
