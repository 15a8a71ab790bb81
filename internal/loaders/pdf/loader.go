// Package pdf loads PDF files page by page using ledongthuc/pdf.
package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader extracts the plain text of every page of a PDF.
type Loader struct{}

// New creates a new PDF loader.
func New() *Loader {
	return &Loader{}
}

// Load opens the file at path and returns one record per page with
// zero-based page numbers. Pages without a content stream yield empty text.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.PageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}

	reader, err := newReader(f, info.Size())
	if err != nil {
		return nil, err
	}

	total := reader.NumPage()
	logger.Debug("pdf: %s has %d pages", path, total)

	pages := make([]domain.PageRecord, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(reader.Page(i))
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", domain.ErrLoad, i, err)
		}
		pages = append(pages, domain.PageRecord{Text: text, PageNumber: i - 1})
	}
	return pages, nil
}

// newReader parses the PDF trailer and page tree. The parser panics on some
// malformed inputs, which is reported as a load error.
func newReader(f *os.File, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("%w: malformed pdf: %v", domain.ErrLoad, rec)
		}
	}()

	r, err = pdf.NewReader(f, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}
	return r, nil
}

func pageText(p pdf.Page) (string, error) {
	if p.V.IsNull() || p.V.Key("Contents").IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
