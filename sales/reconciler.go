/*
reconciler.go - Batch reconciliation orchestration

PURPOSE:
  Runs one verification pass over the sales collection: full scan, duplicate
  resolution, per-sale validation of the winners, quarantine and deletion
  side effects, summary. Each invocation is a fresh scan - no checkpoints,
  no incremental state.

POLICY:
  One consistent policy at every call site:
  - The quarantine copy always carries the error annotation
    ("Unspecified" when a sale somehow reaches quarantine without one).
  - Source records are deleted only for completeness/price failures,
    never for inventory mismatch alone and never for duplicates.

SIDE-EFFECT ORDERING:
  Quarantine write happens before the deletion attempt. Quarantine and
  deletion failures are logged and swallowed; one bad sale never aborts
  the batch. Only the initial batch read propagates an error.

QUARANTINE:
  Each flagged sale is copied to both review collections concurrently as
  independent writes. Partial success is possible and only logged.

SEE ALSO:
  - duplicates.go: Winner/loser split
  - validator.go: Per-sale checks and the deletion policy
*/
package sales

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/warp/reconciliation-engine/docstore"
)

// Reconciler orchestrates a verification pass over the sales collection.
type Reconciler struct {
	store   docstore.Store
	checker InventoryChecker
	log     zerolog.Logger
}

func NewReconciler(store docstore.Store, checker InventoryChecker, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:   store,
		checker: checker,
		log:     log.With().Str("component", "reconciler").Logger(),
	}
}

// Reconcile scans the sales collection and returns the run summary.
// Only the initial read can fail; everything downstream is best-effort.
func (r *Reconciler) Reconcile(ctx context.Context) (*Summary, error) {
	records, err := r.store.List(ctx, CollectionSales)
	if err != nil {
		return nil, err
	}

	batch := make([]Sale, len(records))
	for i, rec := range records {
		batch[i] = Sale{ID: rec.ID, Data: rec.Data}
	}

	summary := &Summary{Total: len(batch)}

	winners, losers := ResolveDuplicates(batch)
	for _, sale := range losers {
		r.quarantine(ctx, sale)
		summary.Suspicious++
	}

	for _, sale := range winners {
		reasons := validateSale(ctx, r.checker, sale)
		if len(reasons) == 0 {
			continue
		}

		if hasReason(reasons, ReasonInventoryMismatch) {
			summary.InventoryMismatch++
			summary.MismatchDetails = append(summary.MismatchDetails, MismatchDetail{
				Folio:    sale.Folio(),
				UnitID:   sale.UnitID(),
				SellerID: sale.SellerID(),
			})
		}

		sale.SetError(joinReasons(reasons))
		r.quarantine(ctx, sale)
		summary.Suspicious++

		if deletesSource(reasons) {
			if err := r.store.Delete(ctx, CollectionSales, sale.ID); err != nil {
				r.log.Error().Err(err).
					Str("sale_id", sale.ID).
					Msg("failed to delete invalid sale from source")
			} else {
				r.log.Info().
					Str("sale_id", sale.ID).
					Str("reason", sale.ErrorReason()).
					Msg("invalid sale removed from source")
			}
		}
	}

	return summary, nil
}

// quarantine copies a flagged sale into both review collections. The two
// writes are independent; neither failure affects the other or the batch.
func (r *Reconciler) quarantine(ctx context.Context, sale Sale) {
	dup := make(docstore.Document, len(sale.Data)+1)
	for k, v := range sale.Data {
		dup[k] = v
	}
	if reason, _ := dup[FieldError].(string); reason == "" {
		dup[FieldError] = DefaultQuarantineReason
	}

	var wg sync.WaitGroup
	for _, coll := range []string{CollectionQuarantine, CollectionQuarantineSMS} {
		wg.Add(1)
		go func(coll string) {
			defer wg.Done()
			if _, err := r.store.Add(ctx, coll, dup); err != nil {
				r.log.Error().Err(err).
					Str("collection", coll).
					Str("folio", sale.Folio()).
					Msg("failed to quarantine sale")
			}
		}(coll)
	}
	wg.Wait()

	r.log.Warn().
		Str("folio", sale.Folio()).
		Str("reason", dup[FieldError].(string)).
		Msg("sale quarantined")
}
