package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/coursemate/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/storage/vectors"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// DefaultMaxExchanges is the number of exchanges kept per session.
const DefaultMaxExchanges = 2

// Store is a SQLite database that backs the vector and history stores.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.coursemate/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".coursemate", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "coursemate.db")

	// WAL mode lets readers run alongside the ingest writer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

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

// VectorStore returns a VectorStore backed by this store.
// Closing it does not close the database.
func (s *Store) VectorStore() driven.VectorStore {
	return &vectorStore{store: s}
}

// HistoryStore returns a HistoryStore backed by this store that keeps the
// last maxExchanges exchanges per session. A non-positive value uses
// DefaultMaxExchanges. Closing it does not close the database.
func (s *Store) HistoryStore(maxExchanges int) driven.HistoryStore {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	return &historyStore{store: s, maxExchanges: maxExchanges}
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return version, nil
}

// migrate runs all pending migrations.
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

	currentVersion, err := s.SchemaVersion()
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
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
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Vector Store ====================

// vectorStore implements driven.VectorStore.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// Upsert inserts or replaces records. A replaced record keeps its original position.
func (s *vectorStore) Upsert(ctx context.Context, collection string, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_records (collection, id, vector, document, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			vector = excluded.vector,
			document = excluded.document,
			metadata = excluded.metadata,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		metadata, err := marshalMetadata(r.Metadata)
		if err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, r.ID, vectors.Encode(r.Vector), r.Document, metadata); err != nil {
			return fmt.Errorf("upserting record %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// Query returns the closest matching records by cosine similarity.
func (s *vectorStore) Query(
	ctx context.Context, collection string, vector []float32, filter driven.Filter, limit int,
) ([]driven.VectorMatch, error) {
	if limit <= 0 {
		return nil, nil
	}
	records, err := s.List(ctx, collection, filter)
	if err != nil {
		return nil, err
	}

	matches := make([]driven.VectorMatch, 0, len(records))
	for _, r := range records {
		score, err := vectors.Cosine(vector, r.Vector)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		matches = append(matches, driven.VectorMatch{Record: r, Score: score})
	}
	return vectors.TopK(matches, limit), nil
}

// Get returns the records with the given IDs.
func (s *vectorStore) Get(ctx context.Context, collection string, ids []string) ([]driven.VectorRecord, error) {
	var out []driven.VectorRecord
	for _, id := range ids {
		row := s.store.db.QueryRowContext(ctx, `
			SELECT id, vector, document, metadata FROM vector_records
			WHERE collection = ? AND id = ?
		`, collection, id)
		r, err := scanRecord(row)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("getting record %s: %w", id, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// List returns every matching record in insertion order.
func (s *vectorStore) List(ctx context.Context, collection string, filter driven.Filter) ([]driven.VectorRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, vector, document, metadata FROM vector_records
		WHERE collection = ? ORDER BY seq
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []driven.VectorRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if filter.Matches(r.Metadata) {
			out = append(out, r)
		}
	}
	return out, rows.Err()
}

// Count returns the number of records in the collection.
func (s *vectorStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	row := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vector_records WHERE collection = ?", collection)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Delete removes matching records. An empty filter removes nothing.
func (s *vectorStore) Delete(ctx context.Context, collection string, filter driven.Filter) (int, error) {
	if len(filter) == 0 {
		return 0, nil
	}
	records, err := s.List(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM vector_records WHERE collection = ? AND id = ?")
	if err != nil {
		return 0, fmt.Errorf("preparing delete: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, collection, r.ID); err != nil {
			return 0, fmt.Errorf("deleting record %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Drop removes every record of the collection.
func (s *vectorStore) Drop(ctx context.Context, collection string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM vector_records WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("dropping collection %s: %w", collection, err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the database.
func (s *vectorStore) Close() error {
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (driven.VectorRecord, error) {
	var (
		r        driven.VectorRecord
		blob     []byte
		metadata string
	)
	if err := row.Scan(&r.ID, &blob, &r.Document, &metadata); err != nil {
		return r, err
	}
	r.Vector = vectors.Decode(blob)
	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &r.Metadata); err != nil {
			return r, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}
	return r, nil
}

func marshalMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}
	return string(b), nil
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store        *Store
	maxExchanges int
}

var _ driven.HistoryStore = (*historyStore)(nil)

// GetHistory returns the formatted history of a session.
func (s *historyStore) GetHistory(ctx context.Context, sessionID string) (string, error) {
	exchanges, err := s.Exchanges(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return domain.FormatHistory(exchanges), nil
}

// Exchanges returns the session's exchanges, oldest first.
func (s *historyStore) Exchanges(ctx context.Context, sessionID string) ([]domain.Exchange, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT question, answer FROM history_exchanges
		WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []domain.Exchange
	for rows.Next() {
		var e domain.Exchange
		if err := rows.Scan(&e.Question, &e.Answer); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Append records an exchange, dropping the oldest beyond the limit.
func (s *historyStore) Append(ctx context.Context, sessionID, question, answer string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		"INSERT INTO history_exchanges (session_id, question, answer) VALUES (?, ?, ?)",
		sessionID, question, answer)
	if err != nil {
		return fmt.Errorf("inserting exchange: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history_exchanges
		WHERE session_id = ? AND id NOT IN (
			SELECT id FROM history_exchanges WHERE session_id = ? ORDER BY id DESC LIMIT ?
		)
	`, sessionID, sessionID, s.maxExchanges)
	if err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}

	return tx.Commit()
}

// Clear removes a session's history.
func (s *historyStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM history_exchanges WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the database.
func (s *historyStore) Close() error {
	return nil
}
