/*
handlers.go - HTTP API handlers for the reconciliation service

PURPOSE:
  Exposes the reconciliation engine via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  GET  /ping                         Liveness probe
  GET  /verificar                    Run batch reconciliation
  GET  /ver-asignacion/{idVendedor}  Fetch one assignment document
  POST /validar-informacion          Parse + consume pipe-delimited segments

ERROR HANDLING:
  - 400: Invalid/missing request body
  - 404: Assignment document not found
  - 500: Primary store read failures (message included in body)
  Per-sale validation outcomes are data, never HTTP errors.

SEE ALSO:
  - dto.go: Request/response types
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/warp/reconciliation-engine/docstore"
	"github.com/warp/reconciliation-engine/inventory"
	"github.com/warp/reconciliation-engine/sales"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      docstore.Store
	Engine     *inventory.Engine
	Reconciler *sales.Reconciler

	log      zerolog.Logger
	validate *validator.Validate
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(store docstore.Store, engine *inventory.Engine, reconciler *sales.Reconciler, log zerolog.Logger) *Handler {
	return &Handler{
		Store:      store,
		Engine:     engine,
		Reconciler: reconciler,
		log:        log.With().Str("component", "api").Logger(),
		validate:   validator.New(),
	}
}

// Ping is the liveness probe.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// Verify runs one reconciliation pass over the sales collection.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Reconciler.Reconcile(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("reconciliation run failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	details := summary.MismatchDetails
	if details == nil {
		details = []sales.MismatchDetail{}
	}
	writeJSON(w, http.StatusOK, ReconcileResponse{
		OK:                true,
		Total:             summary.Total,
		Suspicious:        summary.Suspicious,
		InventoryMismatch: summary.InventoryMismatch,
		MismatchDetails:   details,
	})
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

// GetAssignment returns one seller's assignment document.
func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "idVendedor")

	doc, err := h.Store.Get(r.Context(), inventory.CollectionAssignments, sellerID)
	if errors.Is(err, docstore.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, notFoundResponse{
			OK:      false,
			Message: fmt.Sprintf("no assignment found for %s", sellerID),
		})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("seller_id", sellerID).Msg("failed to fetch assignment")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, AssignmentResponse{OK: true, ID: sellerID, Assignment: doc})
}

// =============================================================================
// SALE VALIDATION
// =============================================================================

// ValidateInfo parses each pipe-delimited segment of the request body and
// attempts to consume the referenced unit. One result per input segment,
// in input order.
func (h *Handler) ValidateInfo(w http.ResponseWriter, r *http.Request) {
	var req ValidateInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("data field is required"))
		return
	}

	segments := strings.Split(req.Data, "|")
	results := make([]SegmentResult, 0, len(segments))

	for _, segment := range segments {
		intent := sales.ParseRecord(segment)
		result := SegmentResult{UnitID: intent.UnitID, SellerID: intent.SellerID}

		if intent.UnitID != "" && intent.SellerID != "" {
			outcome, err := h.Engine.Consume(r.Context(), intent.SellerID, intent.UnitID)
			if err != nil {
				h.log.Error().Err(err).
					Str("seller_id", intent.SellerID).
					Str("unit_id", intent.UnitID).
					Msg("consume failed")
			} else {
				result.Status = outcome.Consumed
			}
		}
		results = append(results, result)
	}

	writeJSON(w, http.StatusOK, results)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{OK: false, Error: err.Error()})
}
