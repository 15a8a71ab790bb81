package pinecone

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// fakeControl stands in for the Pinecone control plane.
type fakeControl struct {
	mu         sync.Mutex
	exists     bool
	readyAfter int
	describes  int
	dimension  int32
	created    *pinecone.CreateServerlessIndexRequest
	createErr  error
}

func (f *fakeControl) CreateServerlessIndex(
	_ context.Context, in *pinecone.CreateServerlessIndexRequest,
) (*pinecone.Index, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.exists {
		return nil, &pinecone.PineconeError{Code: http.StatusConflict, Msg: errors.New("ALREADY_EXISTS")}
	}
	f.exists = true
	return &pinecone.Index{Name: in.Name}, nil
}

func (f *fakeControl) DescribeIndex(_ context.Context, name string) (*pinecone.Index, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.exists {
		return nil, &pinecone.PineconeError{Code: http.StatusNotFound, Msg: errors.New("NOT_FOUND")}
	}
	f.describes++
	dim := f.dimension
	return &pinecone.Index{
		Name:      name,
		Host:      name + "-abc.svc.pinecone.io",
		Dimension: &dim,
		Status:    &pinecone.IndexStatus{Ready: f.describes > f.readyAfter},
	}, nil
}

// fakeData stands in for one data plane connection.
type fakeData struct {
	mu        sync.Mutex
	upserts   [][]*pinecone.Vector
	lastQuery *pinecone.QueryByVectorValuesRequest
	matches   []*pinecone.ScoredVector
	stats     map[string]*pinecone.NamespaceSummary
	closed    bool
}

func (f *fakeData) UpsertVectors(_ context.Context, in []*pinecone.Vector) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, in)
	return uint32(len(in)), nil
}

func (f *fakeData) QueryByVectorValues(
	_ context.Context, in *pinecone.QueryByVectorValuesRequest,
) (*pinecone.QueryVectorsResponse, error) {
	f.lastQuery = in
	return &pinecone.QueryVectorsResponse{Matches: f.matches}, nil
}

func (f *fakeData) DescribeIndexStats(context.Context) (*pinecone.DescribeIndexStatsResponse, error) {
	return &pinecone.DescribeIndexStatsResponse{Namespaces: f.stats}, nil
}

func (f *fakeData) Close() error {
	f.closed = true
	return nil
}

type fixture struct {
	control *fakeControl
	data    *fakeData
	hosts   []string
	spaces  []string
}

func newFixture() *fixture {
	return &fixture{control: &fakeControl{dimension: 3}, data: &fakeData{}}
}

func (f *fixture) store() *Store {
	return newStore(Config{APIKey: "pc-key", ReadyPoll: time.Millisecond}, f.control,
		func(host, namespace string) (dataPlane, error) {
			f.hosts = append(f.hosts, host)
			f.spaces = append(f.spaces, namespace)
			return f.data, nil
		})
}

func metadata(t *testing.T, fields map[string]any) *pinecone.Metadata {
	t.Helper()
	md, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return md
}

var spec = domain.IndexSpec{Name: "main", Dimension: 3, Metric: domain.MetricCosine}

func TestNewStore(t *testing.T) {
	_, err := NewStore(Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	s, err := NewStore(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultControlURL, s.cfg.ControlURL)
	assert.Equal(t, "aws", s.cfg.Cloud)
	assert.Equal(t, "us-east-1", s.cfg.Region)
	assert.NoError(t, s.Close())
}

func TestStore_EnsureIndex_CreatesAndWaits(t *testing.T) {
	f := newFixture()
	f.control.readyAfter = 2

	require.NoError(t, f.store().EnsureIndex(context.Background(), spec))

	req := f.control.created
	require.NotNil(t, req)
	assert.Equal(t, "main", req.Name)
	assert.Equal(t, pinecone.Cloud("aws"), req.Cloud)
	assert.Equal(t, "us-east-1", req.Region)
	require.NotNil(t, req.Dimension)
	assert.Equal(t, int32(3), *req.Dimension)
	require.NotNil(t, req.Metric)
	assert.Equal(t, pinecone.IndexMetric("cosine"), *req.Metric)
	assert.Equal(t, 3, f.control.describes)
}

func TestStore_EnsureIndex_ExistingIsSuccess(t *testing.T) {
	f := newFixture()
	f.control.exists = true

	assert.NoError(t, f.store().EnsureIndex(context.Background(), spec))
}

func TestStore_EnsureIndex_DimensionMismatch(t *testing.T) {
	f := newFixture()
	f.control.exists = true
	f.control.dimension = 1536

	err := f.store().EnsureIndex(context.Background(), spec)

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_EnsureIndex_NotReadyBeforeDeadline(t *testing.T) {
	f := newFixture()
	f.control.readyAfter = 1 << 30
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := f.store().EnsureIndex(ctx, spec)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_EnsureIndex_ClientErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "api error",
			err:      &pinecone.PineconeError{Code: http.StatusUnauthorized, Msg: errors.New("unauthorized")},
			contains: "status 401",
		},
		{
			name:     "transport error",
			err:      fmt.Errorf("dial tcp: connection refused"),
			contains: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.control.createErr = tt.err

			err := f.store().EnsureIndex(context.Background(), spec)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrExternalService)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, domain.KindExternal, domain.ErrorKind(err))
		})
	}
}

func TestStore_Upsert_Batches(t *testing.T) {
	f := newFixture()
	f.control.exists = true
	records := make([]domain.IndexRecord, 250)
	for i := range records {
		records[i] = domain.IndexRecord{
			ID:       fmt.Sprintf("r%d", i),
			Vector:   []float32{1, 2, 3},
			Metadata: domain.RecordMetadata{Text: "t", Source: domain.ChunkSource, PageNumber: 2},
		}
	}

	require.NoError(t, f.store().Upsert(context.Background(), "main", "ns", records))

	require.Len(t, f.data.upserts, 3)
	assert.Len(t, f.data.upserts[0], 100)
	assert.Len(t, f.data.upserts[1], 100)
	assert.Len(t, f.data.upserts[2], 50)
	assert.Equal(t, []string{"main-abc.svc.pinecone.io"}, f.hosts)
	assert.Equal(t, []string{"ns"}, f.spaces)

	first := f.data.upserts[0][0]
	assert.Equal(t, "r0", first.Id)
	require.NotNil(t, first.Values)
	assert.Equal(t, []float32{1, 2, 3}, *first.Values)
	assert.Equal(t, domain.RecordMetadata{Text: "t", Source: domain.ChunkSource, PageNumber: 2},
		fromMetadata(first.Metadata))
}

func TestStore_Upsert_Empty(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.store().Upsert(context.Background(), "main", "ns", nil))
	assert.Empty(t, f.hosts)
}

func TestStore_Query(t *testing.T) {
	f := newFixture()
	f.control.exists = true
	f.data.matches = []*pinecone.ScoredVector{
		{Score: 0.92, Vector: &pinecone.Vector{Id: "a", Metadata: metadata(t, map[string]any{
			"text": "revenue grew", "source": "AI Embedding", "page_number": 3.0,
		})}},
		{Score: 0.41, Vector: &pinecone.Vector{Id: "b", Metadata: metadata(t, map[string]any{
			"page_number": 1,
		})}},
		nil,
	}

	matches, err := f.store().Query(context.Background(), "main", "ns", []float32{1, 0, 0}, 5)

	require.NoError(t, err)
	require.NotNil(t, f.data.lastQuery)
	assert.Equal(t, []float32{1, 0, 0}, f.data.lastQuery.Vector)
	assert.Equal(t, uint32(5), f.data.lastQuery.TopK)
	assert.True(t, f.data.lastQuery.IncludeMetadata)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.InDelta(t, 0.92, matches[0].Score, 1e-6)
	assert.Equal(t, domain.RecordMetadata{Text: "revenue grew", Source: domain.ChunkSource, PageNumber: 3},
		matches[0].Metadata)
	assert.Equal(t, "", matches[1].Metadata.Text)
	assert.Equal(t, 1, matches[1].Metadata.PageNumber)
}

func TestStore_Query_ZeroTopK(t *testing.T) {
	f := newFixture()

	matches, err := f.store().Query(context.Background(), "main", "ns", []float32{1, 0, 0}, 0)

	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Empty(t, f.hosts)
}

func TestStore_ReusesConnections(t *testing.T) {
	f := newFixture()
	f.control.exists = true
	s := f.store()
	ctx := context.Background()

	_, err := s.Query(ctx, "main", "ns", []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	_, err = s.Query(ctx, "main", "ns", []float32{1, 0, 0}, 1)
	require.NoError(t, err)

	assert.Len(t, f.hosts, 1)
	assert.Equal(t, 1, f.control.describes)
	require.NoError(t, s.Close())
	assert.True(t, f.data.closed)
}

func TestStore_Namespaces(t *testing.T) {
	f := newFixture()
	f.control.exists = true
	f.data.stats = map[string]*pinecone.NamespaceSummary{
		"zeta":  {VectorCount: 4},
		"alpha": {VectorCount: 2},
	}

	infos, err := f.store().Namespaces(context.Background(), "main")

	require.NoError(t, err)
	assert.Equal(t, []domain.NamespaceInfo{
		{Name: "alpha", RecordCount: 2},
		{Name: "zeta", RecordCount: 4},
	}, infos)
}

func TestStore_Namespaces_UnknownIndex(t *testing.T) {
	infos, err := newFixture().store().Namespaces(context.Background(), "main")

	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", nil))
	assert.ErrorIs(t, classify("op", &pinecone.PineconeError{Code: 404, Msg: errors.New("x")}), domain.ErrNotFound)
	assert.ErrorIs(t, classify("op", &pinecone.PineconeError{Code: 409, Msg: errors.New("x")}), domain.ErrAlreadyExists)
	assert.ErrorIs(t, classify("op", &pinecone.PineconeError{Code: 500, Msg: errors.New("x")}), domain.ErrExternalService)
}
