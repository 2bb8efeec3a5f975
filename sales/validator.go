/*
validator.go - Per-sale business rule checks

PURPOSE:
  Evaluates the three independent checks on a winning sale: field
  completeness, price bounds, and inventory membership. All three run;
  failures accumulate rather than short-circuit, so a quarantined sale
  carries every applicable reason.

PRICE BOUNDS:
  PRECIO must parse as a decimal, be >= 0 and <= 20000, both ends
  inclusive. Parsing uses shopspring/decimal; the feed mixes string and
  numeric encodings.

INVENTORY CHECK:
  Read-only, delegated to the inventory engine. Missing seller or unit id
  short-circuits to "no match" without touching the store.

SEE ALSO:
  - reconciler.go: Acts on the accumulated errors
  - inventory/engine.go: Validate implementation
*/
package sales

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation reasons attached to quarantined sales.
const (
	ReasonIncompleteFields  = "Null or empty fields"
	ReasonInvalidPrice      = "Invalid price"
	ReasonInventoryMismatch = "Inventory mismatch"
)

// reasonSeparator joins accumulated reasons into the stored annotation.
const reasonSeparator = " | "

// maxPrice is the inclusive upper bound for a plausible sale price.
var maxPrice = decimal.NewFromInt(20000)

// requiredFields must all be present and non-empty on a valid sale.
var requiredFields = []string{FieldUnitID, FieldSellerID, FieldFolio, FieldPrice, FieldAddress}

// InventoryChecker is the read-only membership check the validator delegates
// to. Implemented by *inventory.Engine.
type InventoryChecker interface {
	Validate(ctx context.Context, sellerID, unitID string) bool
}

// validateSale runs all checks and returns the accumulated reasons.
func validateSale(ctx context.Context, checker InventoryChecker, sale Sale) []string {
	var reasons []string

	for _, field := range requiredFields {
		if !sale.HasField(field) {
			reasons = append(reasons, ReasonIncompleteFields)
			break
		}
	}

	if !priceValid(sale.Price()) {
		reasons = append(reasons, ReasonInvalidPrice)
	}

	if !checker.Validate(ctx, sale.SellerID(), sale.UnitID()) {
		reasons = append(reasons, ReasonInventoryMismatch)
	}

	return reasons
}

func priceValid(raw string) bool {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return !price.IsNegative() && price.LessThanOrEqual(maxPrice)
}

// deletesSource reports whether the accumulated reasons warrant deleting the
// source record. Inventory mismatch alone leaves the record in place for
// review; bad data (incomplete fields, implausible price) is removed.
func deletesSource(reasons []string) bool {
	for _, r := range reasons {
		if r == ReasonIncompleteFields || r == ReasonInvalidPrice {
			return true
		}
	}
	return false
}

func joinReasons(reasons []string) string {
	return strings.Join(reasons, reasonSeparator)
}

func hasReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}
