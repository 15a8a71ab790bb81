package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// collisionSuffixLen is the number of UUID hex characters appended when a
// generated namespace already holds records.
const collisionSuffixLen = 6

// IngestService runs the load, normalise, chunk, embed and upsert pipeline.
type IngestService struct {
	loader     driven.DocumentLoader
	normaliser driven.Normaliser
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	namespaces *NamespaceGenerator
	index      domain.IndexSpec

	archive driven.DocumentArchive
	tempDir string
}

// NewIngestService creates a new ingestion service.
// The normaliser may be nil, in which case page text is chunked as loaded.
func NewIngestService(
	loader driven.DocumentLoader,
	normaliser driven.Normaliser,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	namespaces *NamespaceGenerator,
	index domain.IndexSpec,
) *IngestService {
	if namespaces == nil {
		namespaces = NewNamespaceGenerator(nil, DefaultNamespaceWords)
	}
	return &IngestService{
		loader:     loader,
		normaliser: normaliser,
		pipeline:   pipeline,
		embedder:   embedder,
		store:      store,
		namespaces: namespaces,
		index:      index,
	}
}

// SetArchive enables archiving of uploaded originals.
func (s *IngestService) SetArchive(archive driven.DocumentArchive) {
	s.archive = archive
}

// SetTempDir sets where uploads are staged. Empty uses os.TempDir.
func (s *IngestService) SetTempDir(dir string) {
	s.tempDir = dir
}

// Ingest stages the upload in a temporary file, indexes it under a fresh
// namespace, and removes the file on every exit path.
func (s *IngestService) Ingest(ctx context.Context, filename string, r io.Reader) (*domain.IngestResult, error) {
	logger.Section("Ingest")
	namespace := s.namespaces.Generate(filename)
	logger.Debug("File: %q, namespace: %s", filename, namespace)

	tmp, err := os.CreateTemp(s.tempDir, "pdfrag-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: stage upload: %w", domain.ErrIngestion, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warn("Failed to remove %s: %v", tmpPath, rmErr)
		}
	}()

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stage upload: %w", domain.ErrIngestion, err)
	}
	logger.Debug("Staged %d bytes at %s", size, tmpPath)

	pages, err := s.loader.Load(ctx, tmpPath)
	if err != nil {
		return nil, stepError("load "+filename, domain.ErrLoad, err)
	}
	logger.Debug("Loaded %d pages", len(pages))

	if s.normaliser != nil {
		pages = s.normaliser.Normalise(pages)
		logger.Debug("Normalised with %s", s.normaliser.Name())
	}

	var chunks []domain.Chunk
	for i := range pages {
		pageChunks, err := s.pipeline.Process(ctx, &pages[i])
		if err != nil {
			return nil, stepError(fmt.Sprintf("chunk page %d", pages[i].DisplayNumber()), domain.ErrInvalidInput, err)
		}
		chunks = append(chunks, pageChunks...)
	}
	for i := range chunks {
		chunks[i].Position = i
	}
	logger.Debug("Produced %d chunks", len(chunks))
	if len(chunks) == 0 {
		logger.Warn("%s has no extractable text", filename)
	}

	records := make([]domain.IndexRecord, 0, len(chunks))
	for i := range chunks {
		vector, err := s.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return nil, stepError(fmt.Sprintf("embed chunk %d", i), domain.ErrExternalService, err)
		}
		if len(vector) != s.index.Dimension {
			return nil, stepError(
				fmt.Sprintf("embed chunk %d", i),
				domain.ErrExternalService,
				fmt.Errorf("%w: got %d, index %s expects %d",
					domain.ErrDimensionMismatch, len(vector), s.index.Name, s.index.Dimension),
			)
		}
		records = append(records, domain.NewIndexRecord(namespace, chunks[i], vector))
	}
	logger.Debug("Embedded %d chunks with %s", len(records), s.embedder.ModelName())

	if err := s.store.EnsureIndex(ctx, s.index); err != nil {
		return nil, stepError("ensure index "+s.index.Name, domain.ErrExternalService, err)
	}

	resolved, err := s.resolveNamespace(ctx, namespace)
	if err != nil {
		return nil, stepError("check namespace", domain.ErrExternalService, err)
	}
	if resolved != namespace {
		logger.Info("Namespace %s already in use, writing to %s", namespace, resolved)
		for i := range records {
			records[i].Namespace = resolved
		}
		namespace = resolved
	}

	if err := s.store.Upsert(ctx, s.index.Name, namespace, records); err != nil {
		return nil, stepError("upsert", domain.ErrExternalService, err)
	}
	logger.Info("Inserted %d records into %s/%s", len(records), s.index.Name, namespace)

	result := &domain.IngestResult{
		Filename:   filename,
		Namespace:  namespace,
		Index:      s.index.Name,
		PageCount:  len(pages),
		ChunkCount: len(records),
	}

	if s.archive != nil {
		result.ArchiveURI = s.archiveUpload(ctx, tmpPath, namespace, filename, size)
	}

	return result, nil
}

// resolveNamespace returns namespace, or a suffixed variant if the store
// already holds records under it.
func (s *IngestService) resolveNamespace(ctx context.Context, namespace string) (string, error) {
	existing, err := s.store.Namespaces(ctx, s.index.Name)
	if err != nil {
		return "", err
	}
	for _, ns := range existing {
		if ns.Name == namespace && ns.RecordCount > 0 {
			suffix := uuid.NewString()[:collisionSuffixLen]
			return s.namespaces.WithSuffix(namespace, suffix), nil
		}
	}
	return namespace, nil
}

// archiveUpload stores the original bytes. Failures are logged, not returned.
func (s *IngestService) archiveUpload(ctx context.Context, tmpPath, namespace, filename string, size int64) string {
	f, err := os.Open(tmpPath)
	if err != nil {
		logger.Warn("Archive skipped: %v", err)
		return ""
	}
	defer f.Close()

	key := namespace + "/" + path.Base(filepath.ToSlash(filename))
	uri, err := s.archive.Put(ctx, key, f, size)
	if err != nil {
		logger.Warn("Archive of %s failed: %v", key, err)
		return ""
	}
	logger.Debug("Archived original at %s", uri)
	return uri
}

// stepError wraps a pipeline step failure in ErrIngestion and the step's kind.
// Cancellation and deadline errors keep their own identity and get no kind.
func stepError(step string, kind, err error) error {
	if errors.Is(err, kind) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", domain.ErrIngestion, step, err)
	}
	return fmt.Errorf("%w: %s: %w: %w", domain.ErrIngestion, step, kind, err)
}
