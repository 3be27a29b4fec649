// Package ledger implements the gemstone custody ledger: role membership,
// administrative ownership, the item lifecycle state machine, escrow for the
// two paid transitions, and the provenance image hash store.
//
// Every write runs as one SQL transaction, serialised per Ledger, so an
// operation either fully applies (item mutation, event and fund movement) or
// leaves no trace.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/erazemk/diamondbase/internal/metrics"
	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

// Ledger is the system context every operation runs against.
type Ledger struct {
	db      *sql.DB
	metrics *metrics.Metrics

	mu sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithMetrics records operation outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// New returns a Ledger backed by db. The schema must already exist.
func New(db *sql.DB, opts ...Option) *Ledger {
	l := &Ledger{db: db}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Deploy initialises a fresh ledger: deployer becomes the administrative
// owner and is enrolled as a Miner.
func (l *Ledger) Deploy(ctx context.Context, deployer model.Address) error {
	if deployer.IsZero() {
		return invalidArgument("deployer must not be the zero address")
	}

	return l.write(ctx, "deploy", func(tx *sql.Tx) (string, error) {
		if _, deployed, err := store.GetOwner(ctx, tx); err != nil {
			return "", err
		} else if deployed {
			return "", &Error{Kind: ErrAlreadyDeployed, Msg: "ledger already deployed"}
		}

		if err := store.SetOwner(ctx, tx, deployer); err != nil {
			return "", err
		}
		if _, err := store.AddRole(ctx, tx, model.RoleMiner, deployer); err != nil {
			return "", err
		}
		_, err := store.AppendEvent(ctx, tx, model.EventOwnershipTransferred, 0, deployer,
			model.OwnershipTransferred{PreviousOwner: model.ZeroAddress, NewOwner: deployer})
		return "", err
	})
}

// write runs fn in a serialised transaction after the destroyed check and
// records the outcome. fn returns the state name an item entered, if any.
func (l *Ledger) write(ctx context.Context, op string, fn func(tx *sql.Tx) (string, error)) error {
	start := time.Now()
	defer l.metrics.ObserveDuration(op, start)

	state, err := l.commit(ctx, op, fn)
	if err != nil {
		l.metrics.Rejected(op, Kind(err))
		return err
	}
	l.metrics.Applied(op, state)
	return nil
}

func (l *Ledger) commit(ctx context.Context, op string, fn func(tx *sql.Tx) (string, error)) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkLive(ctx, tx); err != nil {
		return "", err
	}

	state, err := fn(tx)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing %s: %w", op, err)
	}
	return state, nil
}

// read runs a read-only query after the destroyed check.
func (l *Ledger) read(ctx context.Context) error {
	return checkLive(ctx, l.db)
}

func checkLive(ctx context.Context, q store.DBTX) error {
	gone, err := store.IsDestroyed(ctx, q)
	if err != nil {
		return err
	}
	if gone {
		return destroyed()
	}
	return nil
}

// requireOwner fails unless caller is the current administrative owner.
func requireOwner(ctx context.Context, q store.DBTX, caller model.Address) (model.Address, error) {
	owner, deployed, err := store.GetOwner(ctx, q)
	if err != nil {
		return "", err
	}
	if !deployed || owner.IsZero() || owner != caller {
		return "", notOwner()
	}
	return owner, nil
}

// requireRole fails unless account holds role.
func requireRole(ctx context.Context, q store.DBTX, role model.Role, account model.Address) error {
	ok, err := store.HasRole(ctx, q, role, account)
	if err != nil {
		return err
	}
	if !ok {
		return roleRequired(role)
	}
	return nil
}
