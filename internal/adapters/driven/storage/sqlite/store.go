package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pdfrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/pdfrag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.pdfrag/data/vectors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pdfrag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug("sqlite: opened %s", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureIndex registers the index if it does not exist.
func (s *Store) EnsureIndex(ctx context.Context, spec domain.IndexSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vector_indexes (name, dimension, metric)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, spec.Name, spec.Dimension, string(spec.Metric))
	if err != nil {
		return fmt.Errorf("creating index %s: %w", spec.Name, err)
	}

	existing, err := s.index(ctx, spec.Name)
	if err != nil {
		return err
	}
	if existing.Dimension != spec.Dimension {
		return fmt.Errorf("%w: index %s has dimension %d, want %d",
			domain.ErrDimensionMismatch, spec.Name, existing.Dimension, spec.Dimension)
	}
	return nil
}

// Upsert writes records into namespace, replacing records with the same ID.
// All records are written in one transaction.
func (s *Store) Upsert(ctx context.Context, index, namespace string, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	spec, err := s.index(ctx, index)
	if err != nil {
		return err
	}
	for _, r := range records {
		if len(r.Vector) != spec.Dimension {
			return fmt.Errorf("%w: record %s has %d values, index %s wants %d",
				domain.ErrDimensionMismatch, r.ID, len(r.Vector), index, spec.Dimension)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_records (index_name, id, namespace, vector, text, source, page_number)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(index_name, id) DO UPDATE SET
			namespace = excluded.namespace,
			vector = excluded.vector,
			text = excluded.text,
			source = excluded.source,
			page_number = excluded.page_number
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, index, r.ID, namespace, float32SliceToBytes(r.Vector),
			r.Metadata.Text, r.Metadata.Source, r.Metadata.PageNumber); err != nil {
			return fmt.Errorf("upserting record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// Query scans the namespace and returns the topK most similar records.
func (s *Store) Query(
	ctx context.Context, index, namespace string, vector []float32, topK int,
) ([]domain.Match, error) {
	spec, err := s.index(ctx, index)
	if err != nil {
		return nil, err
	}
	if len(vector) != spec.Dimension {
		return nil, fmt.Errorf("%w: query has %d values, index %s wants %d",
			domain.ErrDimensionMismatch, len(vector), index, spec.Dimension)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vector, text, source, page_number
		FROM vector_records
		WHERE index_name = ? AND namespace = ?
	`, index, namespace)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	matches := []domain.Match{}
	for rows.Next() {
		var (
			m    domain.Match
			blob []byte
		)
		if err := rows.Scan(&m.ID, &blob, &m.Metadata.Text, &m.Metadata.Source, &m.Metadata.PageNumber); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		m.Score, err = vecmath.Score(spec.Metric, vector, bytesToFloat32Slice(blob))
		if err != nil {
			return nil, fmt.Errorf("scoring record %s: %w", m.ID, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return vecmath.TopK(matches, topK), nil
}

// Namespaces lists the namespaces of index, sorted by name.
func (s *Store) Namespaces(ctx context.Context, index string) ([]domain.NamespaceInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT namespace, COUNT(*)
		FROM vector_records
		WHERE index_name = ?
		GROUP BY namespace
		ORDER BY namespace
	`, index)
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}
	defer rows.Close()

	infos := []domain.NamespaceInfo{}
	for rows.Next() {
		var info domain.NamespaceInfo
		if err := rows.Scan(&info.Name, &info.RecordCount); err != nil {
			return nil, fmt.Errorf("scanning namespace: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// index loads a registered index definition.
func (s *Store) index(ctx context.Context, name string) (domain.IndexSpec, error) {
	spec := domain.IndexSpec{Name: name}
	var metric string
	row := s.db.QueryRowContext(ctx, `SELECT dimension, metric FROM vector_indexes WHERE name = ?`, name)
	if err := row.Scan(&spec.Dimension, &metric); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return spec, fmt.Errorf("%w: index %s", domain.ErrNotFound, name)
		}
		return spec, fmt.Errorf("loading index %s: %w", name, err)
	}
	spec.Metric = domain.Metric(metric)
	return spec, nil
}

// migrate runs all pending migrations and records their versions.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_vector_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		logger.Debug("sqlite: applied migration %s", name)
	}

	return nil
}

// float32SliceToBytes converts a []float32 to little-endian bytes.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
