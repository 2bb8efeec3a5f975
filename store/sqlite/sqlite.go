/*
Package sqlite provides a SQLite-backed implementation of docstore.Store.

PURPOSE:
  Persists schemaless documents as JSON rows keyed by (collection, id).
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences (json_extract vs ->>).

INTERFACES IMPLEMENTED:
  docstore.Store:   Document CRUD + field queries
  docstore.TxStore: Atomic read-modify-write via SQL transactions

ORDERING:
  Each document gets a monotonic seq on first insert. Query and List order
  by seq, so "store-returned order" is insertion order and stays stable
  across calls. The inventory fallback scan depends on this.

FIELD QUERIES:
  Query uses the SQLite JSON1 extension (json_extract) on top-level fields.
  The (collection, seq) index keeps full-collection scans cheap; the field
  extraction itself is a scan, which is acceptable at daily-assignment
  volumes. A computed-column index on the seller-id field is the upgrade
  path if assignment counts grow.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/recon.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - docstore/docstore.go: Interface definitions
  - docstore/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/reconciliation-engine/docstore"
)

// Store implements docstore.TxStore using SQLite.
type Store struct {
	db *sql.DB
	session
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, session: session{q: db}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Schemaless documents, one JSON payload per row
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		data TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);

	-- Insertion-order scans (List, Query) per collection
	CREATE INDEX IF NOT EXISTS idx_documents_collection_seq
		ON documents(collection, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn within a SQL transaction.
func (s *Store) WithTx(ctx context.Context, fn func(docstore.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&session{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

var _ docstore.TxStore = (*Store)(nil)

// =============================================================================
// SESSION - Store operations shared between plain and transactional access
// =============================================================================

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type session struct {
	q querier
}

func (s *session) Get(ctx context.Context, coll, id string) (docstore.Document, error) {
	if err := check(coll, id); err != nil {
		return nil, err
	}
	var raw string
	err := s.q.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		coll, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, &docstore.NotFoundError{Collection: coll, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", coll, id, err)
	}
	return decode(raw)
}

func (s *session) Query(ctx context.Context, coll, field string, value any) ([]docstore.Record, error) {
	if coll == "" {
		return nil, docstore.ErrCollectionRequired
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, data FROM documents
		 WHERE collection = ? AND json_extract(data, '$.' || ?) = ?
		 ORDER BY seq`,
		coll, field, value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", coll, field, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *session) Set(ctx context.Context, coll, id string, data docstore.Document, merge bool) error {
	if err := check(coll, id); err != nil {
		return err
	}
	if merge {
		existing, err := s.Get(ctx, coll, id)
		if err == nil {
			for k, v := range data {
				existing[k] = v
			}
			data = existing
		} else if _, ok := err.(*docstore.NotFoundError); !ok {
			return err
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", coll, id, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO documents (collection, id, seq, data, created_at, updated_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents WHERE collection = ?), ?, ?, ?)
		 ON CONFLICT(collection, id)
		 DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		coll, id, coll, string(raw), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", coll, id, err)
	}
	return nil
}

func (s *session) Update(ctx context.Context, coll, id string, partial docstore.Document) error {
	if err := check(coll, id); err != nil {
		return err
	}
	existing, err := s.Get(ctx, coll, id)
	if err != nil {
		return err
	}
	for k, v := range partial {
		existing[k] = v
	}
	raw, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", coll, id, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.q.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(raw), now, coll, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", coll, id, err)
	}
	return nil
}

func (s *session) Delete(ctx context.Context, coll, id string) error {
	if err := check(coll, id); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, coll, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", coll, id, err)
	}
	return nil
}

func (s *session) Add(ctx context.Context, coll string, data docstore.Document) (string, error) {
	if coll == "" {
		return "", docstore.ErrCollectionRequired
	}
	id := uuid.NewString()
	if err := s.Set(ctx, coll, id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *session) List(ctx context.Context, coll string) ([]docstore.Record, error) {
	if coll == "" {
		return nil, docstore.ErrCollectionRequired
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? ORDER BY seq`, coll)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", coll, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// =============================================================================
// HELPERS
// =============================================================================

func scanRecords(rows *sql.Rows) ([]docstore.Record, error) {
	var result []docstore.Record
	for rows.Next() {
		var (
			id  string
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		doc, err := decode(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, docstore.Record{ID: id, Data: doc})
	}
	return result, rows.Err()
}

func decode(raw string) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func check(coll, id string) error {
	if coll == "" {
		return docstore.ErrCollectionRequired
	}
	if id == "" {
		return docstore.ErrIDRequired
	}
	return nil
}
