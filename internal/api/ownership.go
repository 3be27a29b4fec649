package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/diamondbase/internal/ledger"
	"github.com/erazemk/diamondbase/internal/model"
)

// OwnershipHandler handles the administrative ownership endpoints.
type OwnershipHandler struct {
	Ledger *ledger.Ledger
}

type transferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

// Get handles GET /api/owner.
func (h *OwnershipHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := h.Ledger.Owner(r.Context())
	if err != nil {
		ledgerError(w, "owner", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]model.Address{"owner": owner})
}

// Transfer handles PUT /api/owner.
func (h *OwnershipHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(w, r)
	if !ok {
		return
	}

	var req transferOwnershipRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	newOwner, err := model.ParseAddress(req.NewOwner)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid new_owner address")
		return
	}

	event, err := h.Ledger.TransferOwnership(r.Context(), owner, newOwner)
	if err != nil {
		ledgerError(w, "transferOwnership", err)
		return
	}

	slog.Info("ownership transferred", "from", owner, "to", newOwner)
	jsonResponse(w, http.StatusOK, event)
}

// Renounce handles DELETE /api/owner.
func (h *OwnershipHandler) Renounce(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(w, r)
	if !ok {
		return
	}

	event, err := h.Ledger.RenounceOwnership(r.Context(), owner)
	if err != nil {
		ledgerError(w, "renounceOwnership", err)
		return
	}

	slog.Warn("ownership renounced", "previous_owner", owner)
	jsonResponse(w, http.StatusOK, event)
}

// Destroy handles POST /api/destroy.
func (h *OwnershipHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.Destroy(r.Context(), owner); err != nil {
		ledgerError(w, "destroy", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "ledger destroyed"})
}
