package minio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// fakeS3 answers the bucket and object calls the archive makes.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
	makes   int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.Trim(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]
	switch {
	case len(parts) == 1 && r.Method == http.MethodHead:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case len(parts) == 1 && r.Method == http.MethodPut:
		f.buckets[bucket] = true
		f.makes++
		w.WriteHeader(http.StatusOK)
	case len(parts) == 2 && r.Method == http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[bucket+"/"+parts[1]] = data
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newFakeArchive(t *testing.T) (*Archive, *fakeS3) {
	t.Helper()
	fake := &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	a, err := New(Config{Endpoint: srv.URL, AccessKey: "ak", SecretKey: "sk", Bucket: "uploads"})
	require.NoError(t, err)
	return a, fake
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing endpoint", Config{AccessKey: "a", SecretKey: "s", Bucket: "b"}},
		{"missing credentials", Config{Endpoint: "localhost:9000", Bucket: "b"}},
		{"missing bucket", Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}

	a, err := New(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", a.region)
}

func TestArchive_Put_CreatesBucketOnce(t *testing.T) {
	a, fake := newFakeArchive(t)
	ctx := context.Background()

	uri, err := a.Put(ctx, "report-090507/report.pdf", strings.NewReader("%PDF-1.4"), 8)
	require.NoError(t, err)
	_, err = a.Put(ctx, "/other/b.pdf", strings.NewReader("xy"), 2)
	require.NoError(t, err)

	assert.Equal(t, "s3://uploads/report-090507/report.pdf", uri)
	assert.Equal(t, 1, fake.makes)
	assert.Equal(t, []byte("%PDF-1.4"), fake.objects["uploads/report-090507/report.pdf"])
	assert.Equal(t, []byte("xy"), fake.objects["uploads/other/b.pdf"])
}

func TestArchive_Put_EmptyKey(t *testing.T) {
	a, _ := newFakeArchive(t)

	_, err := a.Put(context.Background(), "/", strings.NewReader("x"), 1)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestArchive_Put_Unreachable(t *testing.T) {
	a, err := New(Config{Endpoint: "127.0.0.1:1", AccessKey: "a", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Put(ctx, "k.pdf", strings.NewReader("x"), 1)

	assert.ErrorIs(t, err, domain.ErrExternalService)
}
