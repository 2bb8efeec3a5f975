/*
dto.go - Request and response types for the HTTP surface

PURPOSE:
  JSON structures for API communication, decoupled from the internal
  domain model. Response field names are the contract the downstream
  review tooling already consumes; they are not renamed here.

NAMING CONVENTION:
  - *Response: types returned to clients
  - *Request:  request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/reconciliation-engine/sales"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ReconcileResponse summarizes one verification run.
type ReconcileResponse struct {
	OK                bool                   `json:"ok"`
	Total             int                    `json:"total"`
	Suspicious        int                    `json:"sospechosas"`
	InventoryMismatch int                    `json:"inventario_no_coincide"`
	MismatchDetails   []sales.MismatchDetail `json:"detalles_inventario_no_coincide"`
}

// AssignmentResponse wraps one seller's assignment document.
type AssignmentResponse struct {
	OK         bool           `json:"ok"`
	ID         string         `json:"id"`
	Assignment map[string]any `json:"asignacion"`
}

// ValidateInfoRequest carries pipe-delimited sale segments to validate.
type ValidateInfoRequest struct {
	Data string `json:"data" validate:"required"`
}

// SegmentResult reports the consumption outcome for one parsed segment.
type SegmentResult struct {
	UnitID   string `json:"id_cilindro"`
	SellerID string `json:"id_vendedor"`
	Status   bool   `json:"estado"`
}

// errorResponse is the generic failure body.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// notFoundResponse matches the contract of the assignment lookup.
type notFoundResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"mensaje"`
}
