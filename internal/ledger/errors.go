package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/erazemk/diamondbase/internal/model"
)

// Error kinds. Every error returned by a ledger operation that is caused by
// the caller (rather than by storage) wraps exactly one of these.
var (
	ErrWrongState          = errors.New("item absent or in the wrong state")
	ErrRoleRequired        = errors.New("role required")
	ErrNotAuthorized       = errors.New("caller is not the authorized party")
	ErrNotOwner            = errors.New("caller is not the owner")
	ErrInsufficientPayment = errors.New("payment below price")
	ErrInsufficientFunds   = errors.New("caller cannot cover the attached value")
	ErrDuplicateItem       = errors.New("item already exists")
	ErrDestroyed           = errors.New("ledger destroyed")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrAlreadyDeployed     = errors.New("ledger already deployed")
)

// Error is a rejected operation. Msg is the human-readable reason and Kind is
// the sentinel it matches with errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func wrongState(required model.State) error {
	return &Error{Kind: ErrWrongState, Msg: "state is not " + required.String()}
}

func roleRequired(role model.Role) error {
	return &Error{Kind: ErrRoleRequired, Msg: fmt.Sprintf("Only a %s can perform this action", role)}
}

func targetRoleRequired(role model.Role, target model.Address) error {
	return &Error{Kind: ErrRoleRequired, Msg: fmt.Sprintf("Target %s is not a %s", target, role)}
}

func notAuthorized() error {
	return &Error{Kind: ErrNotAuthorized, Msg: "Only the authorized user/address can perform this"}
}

func notOwner() error {
	return &Error{Kind: ErrNotOwner, Msg: "Only the owner can perform this action"}
}

func insufficientPayment(value, price *big.Int) error {
	return &Error{Kind: ErrInsufficientPayment, Msg: fmt.Sprintf("Paid %s wei, price is %s wei", value, price)}
}

func insufficientFunds(cause error) error {
	return &Error{Kind: ErrInsufficientFunds, Msg: cause.Error()}
}

func duplicateItem(upc int64) error {
	return &Error{Kind: ErrDuplicateItem, Msg: fmt.Sprintf("item already exists: upc %d", upc)}
}

func destroyed() error {
	return &Error{Kind: ErrDestroyed, Msg: "ledger has been destroyed"}
}

func invalidArgument(format string, args ...any) error {
	return &Error{Kind: ErrInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// kinds maps each sentinel to a short label for metrics and API responses.
var kinds = []struct {
	err   error
	label string
}{
	{ErrWrongState, "wrong_state"},
	{ErrRoleRequired, "role_required"},
	{ErrNotAuthorized, "not_authorized"},
	{ErrNotOwner, "not_owner"},
	{ErrInsufficientPayment, "insufficient_payment"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrDuplicateItem, "duplicate_item"},
	{ErrDestroyed, "destroyed"},
	{ErrInvalidArgument, "invalid_argument"},
	{ErrAlreadyDeployed, "already_deployed"},
}

// Kind returns the label of the error kind err wraps, or "internal" for
// storage and other unexpected failures.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.label
		}
	}
	return "internal"
}
