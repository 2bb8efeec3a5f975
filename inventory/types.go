/*
types.go - Assignment document model and product-list codec

PURPOSE:
  Defines the in-memory shape of a seller's daily assignment. The store
  encodes the product list as a map with numeric-string positional keys
  ("0", "1", ...), each value a single-entry map from unit id to the unit's
  descriptive payload. That encoding is awkward to work with, so it is
  confined to this codec: in memory the list is an ordered slice of
  (unit id, entry) pairs.

KEY CONCEPTS:
  UnitEntry:    Opaque descriptive payload of one physical unit. Only the
                sale-state tag and the consumption timestamp are interpreted;
                everything else is carried through unchanged.
  ProductEntry: One (unit id, entry) pair, position-aware.

STATE MACHINE:
  estado_venta: "assigned" -> "sold". The sold state is terminal; a sold
  entry is never consumable again.

SEE ALSO:
  - engine.go: Consumes entries via the assigned->sold transition
  - accessor.go: Reads/writes assignment and history documents
*/
package inventory

import (
	"sort"
	"strconv"

	"github.com/warp/reconciliation-engine/docstore"
)

// Document field names shared with the external assignment process.
const (
	FieldProducts  = "productos"
	FieldSellerID  = "id_vendedor"
	FieldSaleState = "estado_venta"
	FieldSaleDate  = "fecha_venta"
)

// Sale states of a unit entry.
const (
	StateAssigned = "assigned"
	StateSold     = "sold"
)

// =============================================================================
// UNIT ENTRY - Opaque unit payload with an interpreted state tag
// =============================================================================

// UnitEntry holds the descriptive fields of a physical unit as assigned to a
// seller. Arbitrary fields are preserved; only the state tag is interpreted.
type UnitEntry map[string]any

// SaleState returns the entry's state tag, or "" if absent or non-string.
func (e UnitEntry) SaleState() string {
	state, _ := e[FieldSaleState].(string)
	return state
}

// Consumable reports whether the unit can still be sold.
func (e UnitEntry) Consumable() bool {
	return e.SaleState() == StateAssigned
}

// Clone returns a shallow copy. Unit payloads are flat maps of scalars in
// practice; nested values would be shared.
func (e UnitEntry) Clone() UnitEntry {
	out := make(UnitEntry, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ProductEntry is one positional element of an assignment's product list.
type ProductEntry struct {
	UnitID string
	Entry  UnitEntry
}

// =============================================================================
// CODEC - positional map <-> ordered slice
// =============================================================================

// ExtractProducts decodes a document's product list into an ordered slice.
// Positional keys are ordered numerically; non-numeric keys (tolerated, the
// upstream process occasionally produces them) sort after, lexicographically.
// Each positional value may hold several unit ids; those are ordered by key
// for determinism.
func ExtractProducts(doc docstore.Document) []ProductEntry {
	raw, _ := doc[FieldProducts].(map[string]any)
	if len(raw) == 0 {
		return nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, errI := strconv.Atoi(keys[i])
		nj, errJ := strconv.Atoi(keys[j])
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	var entries []ProductEntry
	for _, k := range keys {
		unitMap, ok := raw[k].(map[string]any)
		if !ok || unitMap == nil {
			continue
		}
		unitIDs := make([]string, 0, len(unitMap))
		for unitID := range unitMap {
			unitIDs = append(unitIDs, unitID)
		}
		sort.Strings(unitIDs)
		for _, unitID := range unitIDs {
			entry, ok := unitMap[unitID].(map[string]any)
			if !ok {
				continue
			}
			entries = append(entries, ProductEntry{UnitID: unitID, Entry: UnitEntry(entry)})
		}
	}
	return entries
}

// BuildProductMap re-encodes an ordered product list into the store's
// positional-map form, with keys "0".."n-1" in slice order.
func BuildProductMap(entries []ProductEntry) map[string]any {
	out := make(map[string]any, len(entries))
	for i, pe := range entries {
		out[strconv.Itoa(i)] = map[string]any{pe.UnitID: map[string]any(pe.Entry)}
	}
	return out
}

// FindUnit returns the index of the entry for unitID, or -1.
func FindUnit(entries []ProductEntry, unitID string) int {
	for i, pe := range entries {
		if pe.UnitID == unitID {
			return i
		}
	}
	return -1
}
