package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/erazemk/diamondbase/internal/ledger"
	"github.com/erazemk/diamondbase/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(target)
}

// ledgerError writes the response for an error returned by the ledger.
// Rejections carry their message and kind; anything else is logged and
// reported as an internal error.
func ledgerError(w http.ResponseWriter, op string, err error) {
	var lerr *ledger.Error
	if !errors.As(err, &lerr) {
		slog.Error("ledger operation failed", "op", op, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, errorStatus(err), map[string]string{
		"error": lerr.Msg,
		"kind":  ledger.Kind(err),
	})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrWrongState), errors.Is(err, ledger.ErrDuplicateItem),
		errors.Is(err, ledger.ErrAlreadyDeployed):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrRoleRequired), errors.Is(err, ledger.ErrNotAuthorized),
		errors.Is(err, ledger.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInsufficientPayment), errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrDestroyed):
		return http.StatusGone
	case errors.Is(err, ledger.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// pathUPC parses the {upc} path value.
func pathUPC(r *http.Request) (int64, bool) {
	upc, err := strconv.ParseInt(r.PathValue("upc"), 10, 64)
	if err != nil || upc <= 0 {
		return 0, false
	}
	return upc, true
}

// optionalWei parses a decimal wei amount; empty means absent.
func optionalWei(v string) (*big.Int, error) {
	if v == "" {
		return nil, nil
	}
	return model.ParseWei(v)
}

// optionalAddress parses an address; empty means absent.
func optionalAddress(v string) (model.Address, error) {
	if v == "" {
		return "", nil
	}
	return model.ParseAddress(v)
}
