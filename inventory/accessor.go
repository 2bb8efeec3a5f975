/*
accessor.go - Store access for assignment and history documents

PURPOSE:
  Wraps the document store with the two lookup paths for a seller's daily
  assignment and the append path for the seller's consumption history.

LOOKUP PATHS:
  Primary:  asignacion_diaria/<sellerID> - the document keyed by seller id.
  Fallback: query asignacion_diaria where id_vendedor == sellerID, scanning
            results in store order. The upstream assignment process does not
            always key the document by the same value it writes into the
            id_vendedor field; the fallback tolerates that inconsistency.

HISTORY:
  historial_vendedor/<sellerID> holds the ordered list of consumed units in
  the same positional-map encoding as assignments. Created lazily on the
  first consumption for a seller. Append-only from this engine's side.

SEE ALSO:
  - engine.go: Drives both paths during consumption
*/
package inventory

import (
	"context"
	"errors"

	"github.com/warp/reconciliation-engine/docstore"
)

// Collection names shared with the external assignment process.
const (
	CollectionAssignments = "asignacion_diaria"
	CollectionHistory     = "historial_vendedor"
)

// Assignments reads and writes per-seller assignment documents.
type Assignments struct {
	store docstore.Store
}

func NewAssignments(store docstore.Store) *Assignments {
	return &Assignments{store: store}
}

// Primary fetches the assignment document keyed by seller id.
// Returns found=false (no error) when the document does not exist.
func (a *Assignments) Primary(ctx context.Context, sellerID string) (docstore.Record, bool, error) {
	doc, err := a.store.Get(ctx, CollectionAssignments, sellerID)
	if errors.Is(err, docstore.ErrNotFound) {
		return docstore.Record{}, false, nil
	}
	if err != nil {
		return docstore.Record{}, false, err
	}
	return docstore.Record{ID: sellerID, Data: doc}, true, nil
}

// BySellerField returns every assignment document whose id_vendedor field
// matches, in store order. This is the fallback scan.
func (a *Assignments) BySellerField(ctx context.Context, sellerID string) ([]docstore.Record, error) {
	return a.store.Query(ctx, CollectionAssignments, FieldSellerID, sellerID)
}

// SaveProducts persists a rebuilt product list onto an assignment document.
func (a *Assignments) SaveProducts(ctx context.Context, docID string, entries []ProductEntry) error {
	return a.store.Update(ctx, CollectionAssignments, docID, docstore.Document{
		FieldProducts: BuildProductMap(entries),
	})
}

// AppendHistory appends one consumed unit to the seller's history document,
// creating the document on first use.
func (a *Assignments) AppendHistory(ctx context.Context, sellerID string, pe ProductEntry) error {
	existing, err := a.store.Get(ctx, CollectionHistory, sellerID)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return err
	}

	entries := ExtractProducts(existing)
	entries = append(entries, pe)
	return a.store.Set(ctx, CollectionHistory, sellerID, docstore.Document{
		FieldSellerID: sellerID,
		FieldProducts: BuildProductMap(entries),
	}, true)
}
