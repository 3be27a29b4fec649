package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/erazemk/diamondbase/internal/model"
)

// CreateAccount creates a new account with an opening balance.
func CreateAccount(ctx context.Context, q DBTX, address model.Address, passwordHash string, balance *big.Int) (*model.Account, error) {
	if balance == nil {
		balance = new(big.Int)
	}
	if balance.Sign() < 0 {
		return nil, fmt.Errorf("opening balance must not be negative")
	}

	var hash sql.NullString
	if passwordHash != "" {
		hash = sql.NullString{String: passwordHash, Valid: true}
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO accounts (address, password_hash, balance) VALUES (?, ?, ?)
		 ON CONFLICT (address) DO NOTHING`,
		address, hash, balance.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrAccountExists
	}

	return GetAccount(ctx, q, address)
}

// GetAccount returns an account by address, or nil if it does not exist.
func GetAccount(ctx context.Context, q DBTX, address model.Address) (*model.Account, error) {
	a := &model.Account{}
	var hash sql.NullString
	var balance string
	err := q.QueryRowContext(ctx,
		`SELECT address, password_hash, balance, created_at FROM accounts WHERE address = ?`, address,
	).Scan(&a.Address, &hash, &balance, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}
	a.PasswordHash = hash.String
	if a.Balance, err = parseAmount(balance); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAccounts returns all accounts ordered by creation.
func ListAccounts(ctx context.Context, q DBTX) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT address, balance, created_at FROM accounts ORDER BY created_at, address`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var balance string
		if err := rows.Scan(&a.Address, &balance, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		if a.Balance, err = parseAmount(balance); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccountPassword updates an account's password hash.
func UpdateAccountPassword(ctx context.Context, q DBTX, address model.Address, passwordHash string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ? WHERE address = ?`,
		passwordHash, address,
	)
	if err != nil {
		return fmt.Errorf("updating account password: %w", err)
	}
	return nil
}

func parseAmount(v string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt amount %q", v)
	}
	return n, nil
}

func amountString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}
