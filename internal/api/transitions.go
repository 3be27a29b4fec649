package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/diamondbase/internal/ledger"
	"github.com/erazemk/diamondbase/internal/model"
)

// TransitionsHandler runs lifecycle transitions on items.
type TransitionsHandler struct {
	Ledger *ledger.Ledger
}

// transitionRequest carries the optional arguments of a transition. Amounts
// are decimal wei strings.
type transitionRequest struct {
	Target string `json:"target"`
	Price  string `json:"price"`
	Value  string `json:"value"`
}

// Apply handles POST /api/items/{upc}/{operation}, where operation is the
// transition name, e.g. sellItem or purchaseItem.
func (h *TransitionsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	upc, ok := pathUPC(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid upc")
		return
	}
	op := ledger.Operation(r.PathValue("operation"))

	var req transitionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	call := ledger.Call{Caller: account, UPC: upc}
	var err error
	if call.Target, err = optionalAddress(req.Target); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid target address")
		return
	}
	if call.Price, err = optionalWei(req.Price); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid price")
		return
	}
	if call.Value, err = optionalWei(req.Value); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid value")
		return
	}

	event, err := h.Ledger.Apply(r.Context(), op, call)
	if err != nil {
		slog.Warn("transition rejected", "op", op, "upc", upc, "caller", account, "error", err)
		ledgerError(w, string(op), err)
		return
	}

	slog.Info("transition applied", "op", op, "upc", upc, "caller", account, "state", event.Name)
	jsonResponse(w, http.StatusOK, event)
}

// States handles GET /api/states.
func (h *TransitionsHandler) States(w http.ResponseWriter, r *http.Request) {
	states := make([]string, model.NumStates)
	for i := range states {
		states[i] = model.State(i).String()
	}
	jsonResponse(w, http.StatusOK, states)
}
