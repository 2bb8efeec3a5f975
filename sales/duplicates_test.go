package sales

import (
	"testing"

	"github.com/warp/reconciliation-engine/docstore"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func saleWith(unitID string, folio string, ts int64) Sale {
	data := docstore.Document{FieldFolio: folio}
	if unitID != "" {
		data[FieldUnitID] = unitID
	}
	if ts != 0 {
		data[FieldSaleDate] = ts
	}
	return Sale{ID: "sale-" + folio, Data: data}
}

func folios(sales []Sale) []string {
	out := make([]string, len(sales))
	for i, s := range sales {
		out[i] = s.Folio()
	}
	return out
}

// =============================================================================
// DUPLICATE RESOLUTION TESTS
// =============================================================================

func TestResolveDuplicates_OlderSaleWins(t *testing.T) {
	// GIVEN: Two sales for C1, the older one arriving second
	batch := []Sale{
		saleWith("C1", "F1", 100),
		saleWith("C1", "F2", 50),
	}

	winners, losers := ResolveDuplicates(batch)

	if len(winners) != 1 || winners[0].Folio() != "F2" {
		t.Fatalf("winners = %v, want [F2]", folios(winners))
	}
	if len(losers) != 1 || losers[0].Folio() != "F1" {
		t.Fatalf("losers = %v, want [F1]", folios(losers))
	}
	// The stored winner was displaced by an older newcomer
	if got := losers[0].ErrorReason(); got != ReasonDuplicateMoreRecent {
		t.Errorf("reason = %q, want %q", got, ReasonDuplicateMoreRecent)
	}
}

func TestResolveDuplicates_NewerArrivalLoses(t *testing.T) {
	// GIVEN: Two sales for C1, the older one arriving first
	batch := []Sale{
		saleWith("C1", "F1", 50),
		saleWith("C1", "F2", 100),
	}

	winners, losers := ResolveDuplicates(batch)

	if len(winners) != 1 || winners[0].Folio() != "F1" {
		t.Fatalf("winners = %v, want [F1]", folios(winners))
	}
	if len(losers) != 1 || losers[0].ErrorReason() != ReasonDuplicate {
		t.Fatalf("losers = %v reason %q, want [F2] with %q",
			folios(losers), losers[0].ErrorReason(), ReasonDuplicate)
	}
}

func TestResolveDuplicates_MissingTimestampTreatedAsEpoch(t *testing.T) {
	// A sale without FECHA_VENTA sorts as 0, i.e. oldest possible.
	batch := []Sale{
		saleWith("C1", "F1", 100),
		saleWith("C1", "F2", 0),
	}

	winners, _ := ResolveDuplicates(batch)
	if winners[0].Folio() != "F2" {
		t.Errorf("winner = %q, want F2", winners[0].Folio())
	}
}

func TestResolveDuplicates_EqualTimestampsKeepFirst(t *testing.T) {
	batch := []Sale{
		saleWith("C1", "F1", 100),
		saleWith("C1", "F2", 100),
	}

	winners, losers := ResolveDuplicates(batch)
	if winners[0].Folio() != "F1" {
		t.Errorf("winner = %q, want F1", winners[0].Folio())
	}
	if losers[0].ErrorReason() != ReasonDuplicate {
		t.Errorf("reason = %q, want %q", losers[0].ErrorReason(), ReasonDuplicate)
	}
}

func TestResolveDuplicates_UnitlessSalesPassThrough(t *testing.T) {
	// Sales without a unit id are never grouped or flagged.
	batch := []Sale{
		saleWith("", "F1", 100),
		saleWith("C1", "F2", 50),
		saleWith("", "F3", 100),
		saleWith("C1", "F4", 10),
	}

	winners, losers := ResolveDuplicates(batch)

	wantWinners := []string{"F1", "F4", "F3"}
	got := folios(winners)
	if len(got) != len(wantWinners) {
		t.Fatalf("winners = %v, want %v", got, wantWinners)
	}
	for i := range wantWinners {
		if got[i] != wantWinners[i] {
			t.Fatalf("winners = %v, want %v", got, wantWinners)
		}
	}
	if len(losers) != 1 || losers[0].Folio() != "F2" {
		t.Fatalf("losers = %v, want [F2]", folios(losers))
	}
}

func TestResolveDuplicates_EverySaleAccountedForExactlyOnce(t *testing.T) {
	batch := []Sale{
		saleWith("C1", "F1", 30),
		saleWith("C2", "F2", 10),
		saleWith("C1", "F3", 20),
		saleWith("C1", "F4", 40),
		saleWith("", "F5", 0),
	}

	winners, losers := ResolveDuplicates(batch)

	seen := make(map[string]int)
	for _, s := range winners {
		seen[s.Folio()]++
	}
	for _, s := range losers {
		seen[s.Folio()]++
	}
	if len(seen) != len(batch) {
		t.Fatalf("accounted for %d sales, want %d", len(seen), len(batch))
	}
	for folio, n := range seen {
		if n != 1 {
			t.Errorf("sale %s appeared %d times", folio, n)
		}
	}
}
