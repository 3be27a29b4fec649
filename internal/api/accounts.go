package api

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/diamondbase/internal/ledger"
	"github.com/erazemk/diamondbase/internal/model"
)

// AccountsHandler handles account provisioning and balance reads.
type AccountsHandler struct {
	Ledger *ledger.Ledger
}

type createAccountRequest struct {
	Password string `json:"password"`
	Balance  string `json:"balance"`
}

type transferRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type accountResponse struct {
	Address model.Address `json:"address"`
	Balance string        `json:"balance"`
	Roles   []model.Role  `json:"roles"`
}

// Create handles POST /api/accounts (owner only).
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(w, r)
	if !ok {
		return
	}

	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := optionalWei(req.Balance)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	account, err := h.Ledger.OpenAccount(r.Context(), owner, string(hash), balance)
	if err != nil {
		ledgerError(w, "openAccount", err)
		return
	}

	slog.Info("account opened", "owner", owner, "address", account.Address, "balance", account.Balance)
	jsonResponse(w, http.StatusCreated, accountResponse{
		Address: account.Address,
		Balance: account.Balance.String(),
		Roles:   []model.Role{},
	})
}

// List handles GET /api/accounts (owner only).
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(w, r)
	if !ok {
		return
	}

	accounts, err := h.Ledger.Accounts(r.Context(), owner)
	if err != nil {
		ledgerError(w, "accounts", err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, accountResponse{Address: a.Address, Balance: a.Balance.String()})
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Transfer handles POST /api/transfers.
func (h *AccountsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	to, err := model.ParseAddress(req.To)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid recipient address")
		return
	}
	amount, err := model.ParseWei(req.Amount)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Ledger.Transfer(r.Context(), from, to, amount); err != nil {
		ledgerError(w, "transfer", err)
		return
	}

	slog.Info("funds transferred", "from", from, "to", to, "amount", amount)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "transferred"})
}

// Get handles GET /api/accounts/{address}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	address, err := model.ParseAddress(r.PathValue("address"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid address")
		return
	}

	balance, err := h.Ledger.Balance(r.Context(), address)
	if err != nil {
		ledgerError(w, "balance", err)
		return
	}

	roles, err := h.Ledger.AccountRoles(r.Context(), address)
	if err != nil {
		ledgerError(w, "accountRoles", err)
		return
	}
	if roles == nil {
		roles = []model.Role{}
	}

	jsonResponse(w, http.StatusOK, accountResponse{
		Address: address,
		Balance: balance.String(),
		Roles:   roles,
	})
}
