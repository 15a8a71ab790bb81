// Package postgres provides a vector store on PostgreSQL with the pgvector
// extension. Each index gets its own table with a fixed-dimension vector
// column; similarity search runs in the database.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const registrySchema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS pdfrag_indexes (
    name       TEXT PRIMARY KEY,
    table_name TEXT NOT NULL UNIQUE,
    dimension  INTEGER NOT NULL,
    metric     TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store is a pgvector-backed vector store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to dsn and prepares the index registry.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrConfiguration)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to postgres: %w", domain.ErrVectorStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pinging postgres: %w", domain.ErrVectorStoreUnavailable, err)
	}
	if _, err := pool.Exec(ctx, registrySchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating index registry: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// EnsureIndex creates the index table if it does not exist.
func (s *Store) EnsureIndex(ctx context.Context, spec domain.IndexSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	table := tableName(spec.Name)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, createTableSQL(table, spec.Dimension)); err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO pdfrag_indexes (name, table_name, dimension, metric)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`, spec.Name, table, spec.Dimension, string(spec.Metric)); err != nil {
		return fmt.Errorf("registering index %s: %w", spec.Name, err)
	}

	var dimension int
	if err := tx.QueryRow(ctx, `SELECT dimension FROM pdfrag_indexes WHERE name = $1`, spec.Name).Scan(&dimension); err != nil {
		return fmt.Errorf("loading index %s: %w", spec.Name, err)
	}
	if dimension != spec.Dimension {
		return fmt.Errorf("%w: index %s has dimension %d, want %d",
			domain.ErrDimensionMismatch, spec.Name, dimension, spec.Dimension)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing index %s: %w", spec.Name, err)
	}
	logger.Debug("postgres: index %s ready in table %s", spec.Name, table)
	return nil
}

// Upsert writes records in one batch, replacing records with the same ID.
func (s *Store) Upsert(ctx context.Context, index, namespace string, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}
	ix, err := s.index(ctx, index)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	stmt := upsertSQL(ix.table)
	for _, r := range records {
		if len(r.Vector) != ix.spec.Dimension {
			return fmt.Errorf("%w: record %s has %d values, index %s wants %d",
				domain.ErrDimensionMismatch, r.ID, len(r.Vector), index, ix.spec.Dimension)
		}
		batch.Queue(stmt, r.ID, namespace, pgvector.NewVector(r.Vector),
			r.Metadata.Text, r.Metadata.Source, r.Metadata.PageNumber)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting into %s: %w", ix.table, err)
	}
	return nil
}

// Query returns the topK most similar records in namespace.
func (s *Store) Query(
	ctx context.Context, index, namespace string, vector []float32, topK int,
) ([]domain.Match, error) {
	ix, err := s.index(ctx, index)
	if err != nil {
		return nil, err
	}
	if len(vector) != ix.spec.Dimension {
		return nil, fmt.Errorf("%w: query has %d values, index %s wants %d",
			domain.ErrDimensionMismatch, len(vector), index, ix.spec.Dimension)
	}
	matches := []domain.Match{}
	if topK <= 0 {
		return matches, nil
	}

	q, err := querySQL(ix.table, ix.spec.Metric)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, q, pgvector.NewVector(vector), namespace, topK)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", ix.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ID, &m.Metadata.Text, &m.Metadata.Source, &m.Metadata.PageNumber, &m.Score); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Namespaces lists the namespaces of index, sorted by name.
// An unknown index has no namespaces.
func (s *Store) Namespaces(ctx context.Context, index string) ([]domain.NamespaceInfo, error) {
	infos := []domain.NamespaceInfo{}
	ix, err := s.index(ctx, index)
	if errors.Is(err, domain.ErrNotFound) {
		return infos, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT namespace, COUNT(*) FROM %s GROUP BY namespace ORDER BY namespace`, ix.table))
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var info domain.NamespaceInfo
		if err := rows.Scan(&info.Name, &info.RecordCount); err != nil {
			return nil, fmt.Errorf("scanning namespace: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

type registeredIndex struct {
	spec  domain.IndexSpec
	table string
}

func (s *Store) index(ctx context.Context, name string) (registeredIndex, error) {
	ix := registeredIndex{spec: domain.IndexSpec{Name: name}}
	var metric string
	err := s.pool.QueryRow(ctx,
		`SELECT table_name, dimension, metric FROM pdfrag_indexes WHERE name = $1`, name,
	).Scan(&ix.table, &ix.spec.Dimension, &metric)
	if errors.Is(err, pgx.ErrNoRows) {
		return ix, fmt.Errorf("%w: index %s", domain.ErrNotFound, name)
	}
	if err != nil {
		return ix, fmt.Errorf("loading index %s: %w", name, err)
	}
	ix.spec.Metric = domain.Metric(metric)
	return ix, nil
}

var unsafeIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// tableName maps an index name to a safe SQL identifier.
func tableName(index string) string {
	name := unsafeIdent.ReplaceAllString(strings.ToLower(index), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "default"
	}
	name = "pdfrag_vectors_" + name
	// Postgres truncates identifiers at 63 bytes.
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

func createTableSQL(table string, dimension int) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
    id          TEXT PRIMARY KEY,
    namespace   TEXT NOT NULL,
    embedding   vector(%[2]d) NOT NULL,
    text        TEXT NOT NULL DEFAULT '',
    source      TEXT NOT NULL DEFAULT '',
    page_number INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS %[1]s_namespace_idx ON %[1]s (namespace);`, table, dimension)
}

func upsertSQL(table string) string {
	return fmt.Sprintf(`
INSERT INTO %s (id, namespace, embedding, text, source, page_number)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    namespace = EXCLUDED.namespace,
    embedding = EXCLUDED.embedding,
    text = EXCLUDED.text,
    source = EXCLUDED.source,
    page_number = EXCLUDED.page_number`, table)
}

// querySQL orders by the pgvector distance operator for metric and reports
// a score where higher is more similar.
func querySQL(table string, metric domain.Metric) (string, error) {
	var op, score string
	switch metric {
	case domain.MetricCosine:
		op, score = "<=>", "1 - (embedding <=> $1)"
	case domain.MetricDotProduct:
		// <#> is the negative inner product.
		op, score = "<#>", "-(embedding <#> $1)"
	case domain.MetricEuclidean:
		op, score = "<->", "1 / (1 + (embedding <-> $1))"
	default:
		return "", fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidInput, metric)
	}
	return fmt.Sprintf(`
SELECT id, text, source, page_number, %s AS score
FROM %s
WHERE namespace = $2
ORDER BY embedding %s $1, id
LIMIT $3`, score, table, op), nil
}
