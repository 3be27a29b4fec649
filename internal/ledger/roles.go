package ledger

import (
	"context"
	"database/sql"

	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

// AddRole enrols account in role. Only the owner may add members; adding an
// existing member changes nothing and records no event.
func (l *Ledger) AddRole(ctx context.Context, caller model.Address, role model.Role, account model.Address) error {
	if !role.Valid() {
		return invalidArgument("unknown role %q", role)
	}
	return l.write(ctx, "add"+string(role), func(tx *sql.Tx) (string, error) {
		if _, err := requireOwner(ctx, tx, caller); err != nil {
			return "", err
		}
		if account.IsZero() {
			return "", invalidArgument("account must not be the zero address")
		}
		added, err := store.AddRole(ctx, tx, role, account)
		if err != nil || !added {
			return "", err
		}
		_, err = store.AppendEvent(ctx, tx, model.EventRoleAdded, 0, caller,
			model.RoleChanged{Role: role, Account: account})
		return "", err
	})
}

// RenounceRole removes caller from role. Renouncing a role the caller does
// not hold is a no-op.
func (l *Ledger) RenounceRole(ctx context.Context, caller model.Address, role model.Role) error {
	if !role.Valid() {
		return invalidArgument("unknown role %q", role)
	}
	return l.write(ctx, "renounce"+string(role), func(tx *sql.Tx) (string, error) {
		removed, err := store.RemoveRole(ctx, tx, role, caller)
		if err != nil || !removed {
			return "", err
		}
		_, err = store.AppendEvent(ctx, tx, model.EventRoleRemoved, 0, caller,
			model.RoleChanged{Role: role, Account: caller})
		return "", err
	})
}

// HasRole reports whether account holds role.
func (l *Ledger) HasRole(ctx context.Context, role model.Role, account model.Address) (bool, error) {
	if err := l.read(ctx); err != nil {
		return false, err
	}
	return store.HasRole(ctx, l.db, role, account)
}

// RoleMembers lists the members of role.
func (l *Ledger) RoleMembers(ctx context.Context, role model.Role) ([]model.Address, error) {
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, invalidArgument("unknown role %q", role)
	}
	return store.ListRoleMembers(ctx, l.db, role)
}

// AccountRoles lists the roles account holds.
func (l *Ledger) AccountRoles(ctx context.Context, account model.Address) ([]model.Role, error) {
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	return store.ListAccountRoles(ctx, l.db, account)
}

func (l *Ledger) AddMiner(ctx context.Context, caller, account model.Address) error {
	return l.AddRole(ctx, caller, model.RoleMiner, account)
}

func (l *Ledger) AddManufacturer(ctx context.Context, caller, account model.Address) error {
	return l.AddRole(ctx, caller, model.RoleManufacturer, account)
}

func (l *Ledger) AddMasterjeweler(ctx context.Context, caller, account model.Address) error {
	return l.AddRole(ctx, caller, model.RoleMasterjeweler, account)
}

func (l *Ledger) AddRetailer(ctx context.Context, caller, account model.Address) error {
	return l.AddRole(ctx, caller, model.RoleRetailer, account)
}

func (l *Ledger) AddCustomer(ctx context.Context, caller, account model.Address) error {
	return l.AddRole(ctx, caller, model.RoleCustomer, account)
}

func (l *Ledger) RenounceMiner(ctx context.Context, caller model.Address) error {
	return l.RenounceRole(ctx, caller, model.RoleMiner)
}

func (l *Ledger) RenounceManufacturer(ctx context.Context, caller model.Address) error {
	return l.RenounceRole(ctx, caller, model.RoleManufacturer)
}

func (l *Ledger) RenounceMasterjeweler(ctx context.Context, caller model.Address) error {
	return l.RenounceRole(ctx, caller, model.RoleMasterjeweler)
}

func (l *Ledger) RenounceRetailer(ctx context.Context, caller model.Address) error {
	return l.RenounceRole(ctx, caller, model.RoleRetailer)
}

func (l *Ledger) RenounceCustomer(ctx context.Context, caller model.Address) error {
	return l.RenounceRole(ctx, caller, model.RoleCustomer)
}

func (l *Ledger) IsMiner(ctx context.Context, account model.Address) (bool, error) {
	return l.HasRole(ctx, model.RoleMiner, account)
}

func (l *Ledger) IsManufacturer(ctx context.Context, account model.Address) (bool, error) {
	return l.HasRole(ctx, model.RoleManufacturer, account)
}

func (l *Ledger) IsMasterjeweler(ctx context.Context, account model.Address) (bool, error) {
	return l.HasRole(ctx, model.RoleMasterjeweler, account)
}

func (l *Ledger) IsRetailer(ctx context.Context, account model.Address) (bool, error) {
	return l.HasRole(ctx, model.RoleRetailer, account)
}

func (l *Ledger) IsCustomer(ctx context.Context, account model.Address) (bool, error) {
	return l.HasRole(ctx, model.RoleCustomer, account)
}
