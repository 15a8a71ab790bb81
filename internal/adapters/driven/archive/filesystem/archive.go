// Package filesystem archives uploaded originals under a local directory.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// Ensure Archive implements the interface.
var _ driven.DocumentArchive = (*Archive)(nil)

// Archive writes objects as files below a root directory.
type Archive struct {
	root string
}

// New creates an archive rooted at dir.
// If dir is empty, defaults to ~/.pdfrag/archive.
func New(dir string) (*Archive, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".pdfrag", "archive")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving archive directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &Archive{root: abs}, nil
}

// Root returns the archive directory.
func (a *Archive) Root() string {
	return a.root
}

// Put copies r to <root>/<key> through a temporary file and returns a file:// URI.
// Keys may not escape the root.
func (a *Archive) Put(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	path, err := a.resolve(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating archive subdirectory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating archive file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("writing archive file: %w", err)
	}
	if size >= 0 && n != size {
		return "", fmt.Errorf("%w: archived %d bytes, expected %d", domain.ErrInvalidInput, n, size)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("moving archive file: %w", err)
	}

	logger.Debug("archive: stored %s (%d bytes)", path, n)
	return "file://" + filepath.ToSlash(path), nil
}

func (a *Archive) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(key, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: invalid archive key %q", domain.ErrInvalidInput, key)
	}
	return filepath.Join(a.root, clean), nil
}
