package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/erazemk/diamondbase/internal/model"
)

// GetBalance returns the wei balance of an address. Unknown addresses hold zero.
func GetBalance(ctx context.Context, q DBTX, address model.Address) (*big.Int, error) {
	var balance string
	err := q.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE address = ?`, address,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}
	return parseAmount(balance)
}

// AdjustBalance adds delta (which may be negative) to an address's balance.
// Crediting an unknown address creates its account row. A debit that would
// leave a negative balance fails with ErrInsufficientBalance.
func AdjustBalance(ctx context.Context, q DBTX, address model.Address, delta *big.Int) error {
	if delta.Sign() == 0 {
		return nil
	}
	if address.IsZero() {
		return fmt.Errorf("cannot move funds for the zero address")
	}

	current, err := GetBalance(ctx, q, address)
	if err != nil {
		return err
	}

	newBalance := new(big.Int).Add(current, delta)
	if newBalance.Sign() < 0 {
		return fmt.Errorf("%w: %s has %s wei, needs %s", ErrInsufficientBalance, address, current, new(big.Int).Neg(delta))
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO accounts (address, balance) VALUES (?, ?)
		 ON CONFLICT (address) DO UPDATE SET balance = excluded.balance`,
		address, newBalance.String(),
	)
	if err != nil {
		return fmt.Errorf("adjusting balance: %w", err)
	}
	return nil
}

// TransferFunds moves amount from one address to another. Callers run it
// inside a transaction so that a failed credit undoes the debit.
func TransferFunds(ctx context.Context, q DBTX, from, to model.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}

	if err := AdjustBalance(ctx, q, from, new(big.Int).Neg(amount)); err != nil {
		return fmt.Errorf("debiting %s: %w", from, err)
	}
	if err := AdjustBalance(ctx, q, to, amount); err != nil {
		return fmt.Errorf("crediting %s: %w", to, err)
	}
	return nil
}
