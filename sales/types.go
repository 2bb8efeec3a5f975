/*
types.go - Sale records and the reconciliation summary

PURPOSE:
  A sale is a schemaless document from the point-of-sale feed; this file
  gives it typed accessors without imposing a schema. Field names are the
  upstream feed's names and are shared with the quarantine collections.

FIELD NOTES:
  FECHA_VENTA arrives either as plain epoch seconds or as the upstream
  store's timestamp object ({"_seconds": n}); both are accepted, missing
  means 0.
  PRECIO arrives as string or number; both are normalized to a string for
  decimal parsing.

SEE ALSO:
  - validator.go: Field checks over these accessors
  - duplicates.go: Tie-breaking on SaleDate
*/
package sales

import (
	"encoding/json"
	"strconv"

	"github.com/warp/reconciliation-engine/docstore"
)

// Collections shared with the upstream feed and the review tooling.
const (
	CollectionSales         = "venta_dia_sms"
	CollectionQuarantine    = "venta_sospechosa"
	CollectionQuarantineSMS = "venta_dia_sospechosa_sms"
)

// Sale document field names, as produced by the point-of-sale feed.
const (
	FieldUnitID   = "ID_CILINDRO"
	FieldSellerID = "ID_VENDEDOR"
	FieldFolio    = "FOLIO"
	FieldPrice    = "PRECIO"
	FieldAddress  = "DOMICILIO"
	FieldSaleDate = "FECHA_VENTA"
	FieldError    = "error"
)

// DefaultQuarantineReason is attached when a sale reaches quarantine without
// an explicit reason.
const DefaultQuarantineReason = "Unspecified"

// =============================================================================
// SALE
// =============================================================================

// Sale pairs a source document with its store id.
type Sale struct {
	ID   string
	Data docstore.Document
}

func (s Sale) UnitID() string   { return s.stringField(FieldUnitID) }
func (s Sale) SellerID() string { return s.stringField(FieldSellerID) }
func (s Sale) Folio() string    { return s.stringField(FieldFolio) }
func (s Sale) Address() string  { return s.stringField(FieldAddress) }

// Price returns the raw price normalized to a string, "" when absent.
func (s Sale) Price() string { return s.stringField(FieldPrice) }

// SaleDate returns the sale timestamp in epoch seconds, 0 when missing.
func (s Sale) SaleDate() int64 {
	switch v := s.Data[FieldSaleDate].(type) {
	case map[string]any:
		return toInt64(v["_seconds"])
	default:
		return toInt64(v)
	}
}

// SetError annotates the sale with a validation reason.
func (s Sale) SetError(reason string) {
	s.Data[FieldError] = reason
}

// ErrorReason returns the attached reason, "" when none.
func (s Sale) ErrorReason() string { return s.stringField(FieldError) }

// HasField reports whether the field is present and non-empty.
// Numeric zero counts as present; nil and "" do not.
func (s Sale) HasField(key string) bool {
	v, ok := s.Data[key]
	if !ok || v == nil {
		return false
	}
	if str, isString := v.(string); isString {
		return str != ""
	}
	return true
}

func (s Sale) stringField(key string) string {
	switch v := s.Data[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

// MismatchDetail identifies one sale whose unit was not in the seller's
// assignment.
type MismatchDetail struct {
	Folio    string `json:"folio"`
	UnitID   string `json:"id_cilindro"`
	SellerID string `json:"id_vendedor"`
}

// Summary is the ephemeral result of one reconciliation run.
type Summary struct {
	Total             int
	Suspicious        int
	InventoryMismatch int
	MismatchDetails   []MismatchDetail
}
