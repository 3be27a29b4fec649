package ledger

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

// Owner returns the administrative owner, or the zero address once
// ownership has been renounced.
func (l *Ledger) Owner(ctx context.Context) (model.Address, error) {
	if err := l.read(ctx); err != nil {
		return "", err
	}
	owner, deployed, err := store.GetOwner(ctx, l.db)
	if err != nil {
		return "", err
	}
	if !deployed {
		return model.ZeroAddress, nil
	}
	return owner, nil
}

// IsOwner reports whether account is the administrative owner.
func (l *Ledger) IsOwner(ctx context.Context, account model.Address) (bool, error) {
	owner, err := l.Owner(ctx)
	if err != nil {
		return false, err
	}
	return !owner.IsZero() && owner == account, nil
}

// TransferOwnership hands the administrative capability to newOwner.
func (l *Ledger) TransferOwnership(ctx context.Context, caller, newOwner model.Address) (*model.Event, error) {
	var event *model.Event
	err := l.write(ctx, "transferOwnership", func(tx *sql.Tx) (string, error) {
		previous, err := requireOwner(ctx, tx, caller)
		if err != nil {
			return "", err
		}
		if newOwner.IsZero() {
			return "", invalidArgument("new owner must not be the zero address")
		}
		event, err = setOwner(ctx, tx, caller, previous, newOwner)
		return "", err
	})
	return event, err
}

// RenounceOwnership leaves the ledger without an owner. Owner-gated
// operations become permanently unreachable.
func (l *Ledger) RenounceOwnership(ctx context.Context, caller model.Address) (*model.Event, error) {
	var event *model.Event
	err := l.write(ctx, "renounceOwnership", func(tx *sql.Tx) (string, error) {
		previous, err := requireOwner(ctx, tx, caller)
		if err != nil {
			return "", err
		}
		event, err = setOwner(ctx, tx, caller, previous, model.ZeroAddress)
		return "", err
	})
	return event, err
}

// Destroy permanently disables the ledger. Items, roles and events are
// purged and every later ledger call fails with ErrDestroyed. Account
// balances and Transfer are exempt and keep working.
func (l *Ledger) Destroy(ctx context.Context, caller model.Address) error {
	err := l.write(ctx, "destroy", func(tx *sql.Tx) (string, error) {
		if _, err := requireOwner(ctx, tx, caller); err != nil {
			return "", err
		}
		return "", store.DestroyLedger(ctx, tx)
	})
	if err == nil {
		slog.Warn("ledger destroyed", "owner", caller)
	}
	return err
}

func setOwner(ctx context.Context, tx *sql.Tx, caller, previous, next model.Address) (*model.Event, error) {
	if err := store.SetOwner(ctx, tx, next); err != nil {
		return nil, err
	}
	return store.AppendEvent(ctx, tx, model.EventOwnershipTransferred, 0, caller,
		model.OwnershipTransferred{PreviousOwner: previous, NewOwner: next})
}
