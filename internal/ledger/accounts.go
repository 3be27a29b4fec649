package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

// OpenAccount provisions a new account with an opening balance. Only the
// owner may open accounts. passwordHash may be empty for accounts that never
// sign in.
func (l *Ledger) OpenAccount(ctx context.Context, caller model.Address, passwordHash string, balance *big.Int) (*model.Account, error) {
	if balance != nil && balance.Sign() < 0 {
		return nil, invalidArgument("opening balance must not be negative")
	}

	var account *model.Account
	err := l.write(ctx, "openAccount", func(tx *sql.Tx) (string, error) {
		if _, err := requireOwner(ctx, tx, caller); err != nil {
			return "", err
		}
		address, err := model.NewAddress()
		if err != nil {
			return "", err
		}
		account, err = store.CreateAccount(ctx, tx, address, passwordHash, balance)
		if errors.Is(err, store.ErrAccountExists) {
			return "", invalidArgument("address collision, retry")
		}
		return "", err
	})
	return account, err
}

// Balance returns the wei balance of an account. Balances belong to the
// value-transfer layer underneath the ledger and stay readable after the
// ledger is destroyed.
func (l *Ledger) Balance(ctx context.Context, account model.Address) (*big.Int, error) {
	return store.GetBalance(ctx, l.db, account)
}

// Accounts lists every account. Only the owner may list accounts.
func (l *Ledger) Accounts(ctx context.Context, caller model.Address) ([]model.Account, error) {
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	if _, err := requireOwner(ctx, l.db, caller); err != nil {
		return nil, err
	}
	return store.ListAccounts(ctx, l.db)
}

// Transfer moves amount wei from caller to another account. Like balances,
// transfers work whether or not the ledger has been destroyed.
func (l *Ledger) Transfer(ctx context.Context, caller, to model.Address, amount *big.Int) error {
	if to.IsZero() {
		return invalidArgument("recipient must not be the zero address")
	}
	if amount == nil || amount.Sign() <= 0 {
		return invalidArgument("amount must be positive")
	}

	start := time.Now()
	defer l.metrics.ObserveDuration("transfer", start)

	err := l.transfer(ctx, caller, to, amount)
	if err != nil {
		l.metrics.Rejected("transfer", Kind(err))
		return err
	}
	l.metrics.Applied("transfer", "")
	return nil
}

func (l *Ledger) transfer(ctx context.Context, from, to model.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := store.TransferFunds(ctx, tx, from, to, amount); err != nil {
		if errors.Is(err, store.ErrInsufficientBalance) {
			return insufficientFunds(err)
		}
		return err
	}
	return tx.Commit()
}
