package driven

import (
	"context"
	"io"
)

// DocumentArchive keeps uploaded originals.
type DocumentArchive interface {
	// Put stores size bytes from r under key and returns a URI locating them.
	Put(ctx context.Context, key string, r io.Reader, size int64) (string, error)
}
