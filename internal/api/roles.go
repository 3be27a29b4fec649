package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/diamondbase/internal/ledger"
	"github.com/erazemk/diamondbase/internal/model"
)

// RolesHandler handles role membership endpoints.
type RolesHandler struct {
	Ledger *ledger.Ledger
}

type addMemberRequest struct {
	Account string `json:"account"`
}

func pathRole(w http.ResponseWriter, r *http.Request) (model.Role, bool) {
	role, err := model.ParseRole(r.PathValue("role"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "unknown role")
		return "", false
	}
	return role, true
}

// Members handles GET /api/roles/{role}/members.
func (h *RolesHandler) Members(w http.ResponseWriter, r *http.Request) {
	role, ok := pathRole(w, r)
	if !ok {
		return
	}

	members, err := h.Ledger.RoleMembers(r.Context(), role)
	if err != nil {
		ledgerError(w, "roleMembers", err)
		return
	}
	if members == nil {
		members = []model.Address{}
	}
	jsonResponse(w, http.StatusOK, members)
}

// Check handles GET /api/roles/{role}/members/{address}.
func (h *RolesHandler) Check(w http.ResponseWriter, r *http.Request) {
	role, ok := pathRole(w, r)
	if !ok {
		return
	}
	address, err := model.ParseAddress(r.PathValue("address"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid address")
		return
	}

	member, err := h.Ledger.HasRole(r.Context(), role, address)
	if err != nil {
		ledgerError(w, "is"+string(role), err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"member": member})
}

// Add handles POST /api/roles/{role}/members (owner only).
func (h *RolesHandler) Add(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(w, r)
	if !ok {
		return
	}
	role, ok := pathRole(w, r)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, err := model.ParseAddress(req.Account)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	if err := h.Ledger.AddRole(r.Context(), owner, role, account); err != nil {
		ledgerError(w, "add"+string(role), err)
		return
	}

	slog.Info("role added", "owner", owner, "role", role, "account", account)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "role added"})
}

// Renounce handles DELETE /api/roles/{role}/members/me.
func (h *RolesHandler) Renounce(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	role, ok := pathRole(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.RenounceRole(r.Context(), account, role); err != nil {
		ledgerError(w, "renounce"+string(role), err)
		return
	}

	slog.Info("role renounced", "role", role, "account", account)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "role renounced"})
}
