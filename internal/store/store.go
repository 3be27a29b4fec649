// Package store holds the SQL persistence functions for the ledger.
//
// Every function takes a DBTX so it can run against the database directly
// or inside the transaction of a single ledger operation.
package store

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	// ErrItemExists is returned when creating an item whose UPC is taken.
	ErrItemExists = errors.New("item already exists")

	// ErrInsufficientBalance is returned when a debit would leave a negative balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAccountExists is returned when creating an account that already exists.
	ErrAccountExists = errors.New("account already exists")
)
