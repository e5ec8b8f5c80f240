// Package postgres provides a pgvector-backed implementation of driven.VectorStore.
//
// Records live in a single table keyed by (collection, id). Vectors use the
// pgvector "vector" type without a fixed dimension, so one table serves any
// embedding model; similarity is ranked with the cosine distance operator.
// Metadata is stored as JSONB and filters are evaluated with containment.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS coursemate_vectors (
    seq        BIGSERIAL PRIMARY KEY,
    collection TEXT NOT NULL,
    id         TEXT NOT NULL,
    embedding  vector NOT NULL,
    document   TEXT NOT NULL DEFAULT '',
    metadata   JSONB NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_coursemate_vectors_metadata ON coursemate_vectors USING GIN (metadata);
`

// VectorStore stores records in PostgreSQL with the pgvector extension.
type VectorStore struct {
	pool *pgxpool.Pool
}

// NewVectorStore connects to the database at dsn and ensures the schema exists.
func NewVectorStore(ctx context.Context, dsn string) (*VectorStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &VectorStore{pool: pool}, nil
}

// Upsert inserts or replaces records. A replaced record keeps its original position.
func (s *VectorStore) Upsert(ctx context.Context, collection string, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		metadata, err := filterJSON(r.Metadata)
		if err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
		batch.Queue(`
			INSERT INTO coursemate_vectors (collection, id, embedding, document, metadata)
			VALUES ($1, $2, $3::vector, $4, $5::jsonb)
			ON CONFLICT (collection, id) DO UPDATE SET
				embedding = EXCLUDED.embedding,
				document = EXCLUDED.document,
				metadata = EXCLUDED.metadata,
				updated_at = now()`,
			collection, r.ID, ToLiteral(r.Vector), r.Document, metadata)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert records: %w", err)
	}
	return tx.Commit(ctx)
}

// Query returns the closest matching records by cosine similarity.
func (s *VectorStore) Query(
	ctx context.Context, collection string, vector []float32, filter driven.Filter, limit int,
) ([]driven.VectorMatch, error) {
	if limit <= 0 {
		return nil, nil
	}
	where, err := filterJSON(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, embedding::text, document, metadata, 1 - (embedding <=> $2::vector) AS score
		FROM coursemate_vectors
		WHERE collection = $1 AND metadata @> $3::jsonb
		ORDER BY embedding <=> $2::vector, seq
		LIMIT $4`,
		collection, ToLiteral(vector), where, limit)
	if err != nil {
		return nil, fmt.Errorf("query vector search: %w", err)
	}
	defer rows.Close()

	var matches []driven.VectorMatch
	for rows.Next() {
		var m driven.VectorMatch
		if m.Record, err = scanRecord(rows, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return matches, nil
}

// Get returns the records with the given IDs, in the order requested.
func (s *VectorStore) Get(ctx context.Context, collection string, ids []string) ([]driven.VectorRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, embedding::text, document, metadata
		FROM coursemate_vectors
		WHERE collection = $1 AND id = ANY($2)`,
		collection, ids)
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}
	byID, err := collect(rows)
	if err != nil {
		return nil, err
	}

	var out []driven.VectorRecord
	for _, id := range ids {
		for _, r := range byID {
			if r.ID == id {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

// List returns every matching record in insertion order.
func (s *VectorStore) List(ctx context.Context, collection string, filter driven.Filter) ([]driven.VectorRecord, error) {
	where, err := filterJSON(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, embedding::text, document, metadata
		FROM coursemate_vectors
		WHERE collection = $1 AND metadata @> $2::jsonb
		ORDER BY seq`,
		collection, where)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return collect(rows)
}

// Count returns the number of records in the collection.
func (s *VectorStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM coursemate_vectors WHERE collection = $1", collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Delete removes matching records. An empty filter removes nothing.
func (s *VectorStore) Delete(ctx context.Context, collection string, filter driven.Filter) (int, error) {
	if len(filter) == 0 {
		return 0, nil
	}
	where, err := filterJSON(filter)
	if err != nil {
		return 0, err
	}
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM coursemate_vectors WHERE collection = $1 AND metadata @> $2::jsonb",
		collection, where)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Drop removes every record of the collection.
func (s *VectorStore) Drop(ctx context.Context, collection string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM coursemate_vectors WHERE collection = $1", collection); err != nil {
		return fmt.Errorf("drop collection %s: %w", collection, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *VectorStore) Close() error {
	s.pool.Close()
	return nil
}

func collect(rows pgx.Rows) ([]driven.VectorRecord, error) {
	defer rows.Close()
	var out []driven.VectorRecord
	for rows.Next() {
		r, err := scanRecord(rows, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func scanRecord(rows pgx.Rows, score *float64) (driven.VectorRecord, error) {
	var (
		r        driven.VectorRecord
		literal  string
		metadata []byte
	)
	dest := []any{&r.ID, &literal, &r.Document, &metadata}
	if score != nil {
		dest = append(dest, score)
	}
	if err := rows.Scan(dest...); err != nil {
		return r, fmt.Errorf("scan record: %w", err)
	}

	vector, err := ParseLiteral(literal)
	if err != nil {
		return r, fmt.Errorf("record %s: %w", r.ID, err)
	}
	r.Vector = vector
	if len(metadata) > 0 && string(metadata) != "{}" {
		if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
			return r, fmt.Errorf("record %s metadata: %w", r.ID, err)
		}
	}
	return r, nil
}

// filterJSON renders metadata or a filter as a JSON object. Used as the
// right-hand side of @>, an empty object matches every row.
func filterJSON(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(b), nil
}

// ToLiteral renders a vector in pgvector's text format.
func ToLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ParseLiteral is the inverse of ToLiteral.
func ParseLiteral(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("invalid vector literal %q", s)
	}
	body := s[1 : len(s)-1]
	if body == "" {
		return []float32{}, nil
	}
	fields := strings.Split(body, ",")
	out := make([]float32, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", f, err)
		}
		out[i] = float32(x)
	}
	return out, nil
}
