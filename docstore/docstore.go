/*
docstore.go - Persistence interface for schemaless documents

PURPOSE:
  Defines the interface between the reconciliation domain logic and the
  underlying document database. Documents are schemaless key->value maps
  grouped into named collections, the way the upstream sales feed and the
  daily assignment process produce them.

KEY INTERFACES:
  Store:   Core document operations (get, query, set, update, delete, add, list)
  TxStore: Transactional read-modify-write (atomic unit consumption)

ORDERING CONTRACT:
  Query and List return documents in insertion order. The inventory engine
  relies on this for its fallback scan: "first document the store returns"
  must be stable across calls.

TRANSACTIONS:
  TxStore.WithTx runs a function against a transactional view of the store.
  If the function returns an error, every write performed inside it is
  rolled back. The inventory engine uses this to make the read-check-write
  of a unit entry atomic.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite driver
  - docstore/memory/memory.go: In-memory driver for tests and dev

SEE ALSO:
  - inventory/engine.go: Main transactional consumer
  - sales/reconciler.go: Batch reader and quarantine writer
*/
package docstore

import "context"

// Document is a schemaless key->value map, the unit of storage.
type Document = map[string]any

// Record pairs a document with its store-assigned identifier.
type Record struct {
	ID   string
	Data Document
}

// =============================================================================
// STORE - Interface for document persistence
// =============================================================================

// Store handles persistence of schemaless documents in named collections.
type Store interface {
	// Get returns the document with the given id.
	// Returns ErrNotFound if the document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Query returns all documents whose top-level field equals value,
	// in insertion order.
	Query(ctx context.Context, collection, field string, value any) ([]Record, error)

	// Set writes the document under the given id, creating it if absent.
	// With merge=true, top-level fields are merged into the existing
	// document instead of replacing it.
	Set(ctx context.Context, collection, id string, data Document, merge bool) error

	// Update applies partial top-level fields to an existing document.
	// Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, partial Document) error

	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Add inserts a document under a store-assigned id and returns that id.
	Add(ctx context.Context, collection string, data Document) (string, error)

	// List returns every document in the collection, in insertion order.
	List(ctx context.Context, collection string) ([]Record, error)
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic read-modify-write sequences
// =============================================================================

// TxStore wraps Store with transaction support.
// Use this when a sequence of reads and writes must be atomic,
// e.g. consuming a unit (history append + assignment removal).
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns an error, all writes are rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
