/*
duplicates.go - Duplicate detection across a batch of sales

PURPOSE:
  A physical unit can be sold once. When a batch carries several sales for
  the same unit id, the oldest sale (by FECHA_VENTA, missing = epoch 0)
  wins; every other sale for that unit is a duplicate. Pure data, no store
  access.

TIE-BREAK:
  Sales are processed in batch order. A newcomer older than the stored
  winner displaces it: the displaced sale is flagged "Duplicate (more
  recent)". A newcomer that is not older is itself flagged "Duplicate".
  Equal timestamps keep the first arrival.

PASS-THROUGH:
  Sales without a unit id are excluded from duplicate logic entirely - they
  go straight to the winner set, neither flagged nor grouped.

SEE ALSO:
  - reconciler.go: Quarantines the losers, validates the winners
*/
package sales

// Reasons attached to duplicate sales.
const (
	ReasonDuplicate           = "Duplicate"
	ReasonDuplicateMoreRecent = "Duplicate (more recent)"
)

// ResolveDuplicates splits a batch into winners (one per unit id, plus all
// unit-id-less sales) and annotated losers. Winner order follows first
// appearance in the batch.
func ResolveDuplicates(batch []Sale) (winners, losers []Sale) {
	winners = make([]Sale, 0, len(batch))
	slot := make(map[string]int) // unit id -> index in winners

	for _, sale := range batch {
		unitID := sale.UnitID()
		if unitID == "" {
			winners = append(winners, sale)
			continue
		}

		idx, seen := slot[unitID]
		if !seen {
			slot[unitID] = len(winners)
			winners = append(winners, sale)
			continue
		}

		current := winners[idx]
		if sale.SaleDate() < current.SaleDate() {
			// Newcomer is older: demote the stored winner.
			current.SetError(ReasonDuplicateMoreRecent)
			losers = append(losers, current)
			winners[idx] = sale
		} else {
			sale.SetError(ReasonDuplicate)
			losers = append(losers, sale)
		}
	}
	return winners, losers
}
