/*
errors.go - Centralized error types for the document store boundary

PURPOSE:
  All store-level errors in one place. Domain packages wrap these with
  additional context; handlers translate them to HTTP status codes.

USAGE:
    doc, err := store.Get(ctx, collection, id)
    if errors.Is(err, docstore.ErrNotFound) {
        // 404, or fall through to the fallback scan
    }

SEE ALSO:
  - docstore.go: Interface definitions
  - api/handlers.go: HTTP translation
*/
package docstore

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrIDRequired is returned when an operation is given an empty document id.
	ErrIDRequired = errors.New("document id required")

	// ErrCollectionRequired is returned when an operation is given an empty
	// collection name.
	ErrCollectionRequired = errors.New("collection name required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which document was missing.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %s/%s not found", e.Collection, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
