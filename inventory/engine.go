/*
engine.go - The inventory consumption state machine

PURPOSE:
  Validates a unit against a seller's assignment and performs the
  assigned->sold transition exactly once. Consumption appends the sold copy
  to the seller's history document and removes the entry from the assignment
  document, both inside one store transaction.

OPERATIONS:
  Consume:  Transition a unit to sold (mutating).
  Validate: Check unit membership in the seller's assignment (read-only,
            any state counts, primary document only).

LOOKUP ORDER (Consume):
  1. Primary document keyed by seller id. A unit found there in a
     non-consumable state fails immediately - no fallback.
  2. Otherwise, fallback scan over documents whose id_vendedor field matches,
     in store order, skipping non-consumable entries.

CONCURRENCY:
  Two concurrent consumes of the same unit id used to be able to both
  observe the assigned state and both "sell" the unit. The engine closes
  that window: a per-unit lock serializes consumes of one unit in-process,
  and the store transaction makes the read-check-write atomic against
  other writers.

FAILURE SEMANTICS:
  "Nothing consumable" is a result (Consumed=false), not an error. Errors
  are reserved for store I/O failures, which roll the transaction back.

SEE ALSO:
  - accessor.go: Document lookup paths
  - sales/reconciler.go: Read-only validation consumer
*/
package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/reconciliation-engine/docstore"
)

// Engine performs unit validation and consumption against the store.
type Engine struct {
	store docstore.TxStore
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(store docstore.TxStore, log zerolog.Logger) *Engine {
	return &Engine{
		store: store,
		log:   log.With().Str("component", "inventory").Logger(),
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// ConsumeResult reports the outcome of a consumption attempt.
type ConsumeResult struct {
	UnitID   string
	SellerID string
	Consumed bool
}

// =============================================================================
// CONSUME - assigned -> sold, exactly once
// =============================================================================

// Consume attempts the assigned->sold transition for (sellerID, unitID).
// A missing or non-consumable unit yields Consumed=false with a nil error.
func (e *Engine) Consume(ctx context.Context, sellerID, unitID string) (ConsumeResult, error) {
	res := ConsumeResult{UnitID: unitID, SellerID: sellerID}
	if sellerID == "" || unitID == "" {
		return res, nil
	}

	unlock := e.lockUnit(unitID)
	defer unlock()

	err := e.store.WithTx(ctx, func(s docstore.Store) error {
		acc := NewAssignments(s)

		target, entries, idx, err := e.locate(ctx, acc, sellerID, unitID)
		if err != nil {
			return err
		}
		if idx < 0 {
			e.log.Warn().
				Str("seller_id", sellerID).
				Str("unit_id", unitID).
				Msg("unit not consumable for seller")
			return nil
		}

		sold := entries[idx].Entry.Clone()
		sold[FieldSaleState] = StateSold
		sold[FieldSaleDate] = e.now().Unix()

		// History append first, then assignment removal. The surrounding
		// transaction keeps the pair atomic.
		if err := acc.AppendHistory(ctx, sellerID, ProductEntry{UnitID: unitID, Entry: sold}); err != nil {
			return err
		}
		remaining := make([]ProductEntry, 0, len(entries)-1)
		remaining = append(remaining, entries[:idx]...)
		remaining = append(remaining, entries[idx+1:]...)
		if err := acc.SaveProducts(ctx, target.ID, remaining); err != nil {
			return err
		}

		res.Consumed = true
		return nil
	})
	if err != nil {
		return ConsumeResult{UnitID: unitID, SellerID: sellerID}, err
	}

	if res.Consumed {
		e.log.Info().
			Str("seller_id", sellerID).
			Str("unit_id", unitID).
			Msg("unit consumed")
	}
	return res, nil
}

// locate finds the document and entry index to consume from, or idx=-1.
func (e *Engine) locate(ctx context.Context, acc *Assignments, sellerID, unitID string) (docstore.Record, []ProductEntry, int, error) {
	primary, found, err := acc.Primary(ctx, sellerID)
	if err != nil {
		return docstore.Record{}, nil, -1, err
	}
	if found {
		entries := ExtractProducts(primary.Data)
		if idx := FindUnit(entries, unitID); idx >= 0 {
			if entries[idx].Entry.Consumable() {
				return primary, entries, idx, nil
			}
			// Found in the primary document but already sold (or in an
			// unknown state): terminal, do not fall through to the scan.
			return docstore.Record{}, nil, -1, nil
		}
	}

	records, err := acc.BySellerField(ctx, sellerID)
	if err != nil {
		return docstore.Record{}, nil, -1, err
	}
	for _, rec := range records {
		entries := ExtractProducts(rec.Data)
		idx := FindUnit(entries, unitID)
		if idx >= 0 && entries[idx].Entry.Consumable() {
			return rec, entries, idx, nil
		}
	}
	return docstore.Record{}, nil, -1, nil
}

// =============================================================================
// VALIDATE - read-only membership check
// =============================================================================

// Validate reports whether the unit appears anywhere in the seller's primary
// assignment document, regardless of sale state. It never consumes and never
// falls back to the scan. Store failures are logged and reported as a
// non-match, matching the tolerant behavior of the verification flow.
func (e *Engine) Validate(ctx context.Context, sellerID, unitID string) bool {
	if sellerID == "" || unitID == "" {
		return false
	}

	doc, err := e.store.Get(ctx, CollectionAssignments, sellerID)
	if errors.Is(err, docstore.ErrNotFound) {
		e.log.Warn().Str("seller_id", sellerID).Msg("no assignment document for seller")
		return false
	}
	if err != nil {
		e.log.Error().Err(err).Str("seller_id", sellerID).Msg("failed to read assignment document")
		return false
	}

	if FindUnit(ExtractProducts(doc), unitID) < 0 {
		e.log.Warn().
			Str("seller_id", sellerID).
			Str("unit_id", unitID).
			Msg("unit not assigned to seller")
		return false
	}
	return true
}

// lockUnit serializes consumption per unit id. The lock table grows with the
// distinct units seen by this process, which is bounded by one day's
// assignment volume.
func (e *Engine) lockUnit(unitID string) func() {
	e.mu.Lock()
	l, ok := e.locks[unitID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[unitID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}
