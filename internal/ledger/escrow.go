package ledger

import (
	"context"
	"errors"
	"math/big"

	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

// settle moves an attached payment inside the transition's transaction:
// the full value leaves the buyer, the price reaches the payee and the
// excess returns to the buyer. Any failed leg fails the transition, and
// the caller's rollback undoes the legs that already ran.
func settle(ctx context.Context, q store.DBTX, buyer, payee model.Address, value, price *big.Int) error {
	if err := store.AdjustBalance(ctx, q, buyer, new(big.Int).Neg(value)); err != nil {
		if errors.Is(err, store.ErrInsufficientBalance) {
			return insufficientFunds(err)
		}
		return err
	}
	if err := store.AdjustBalance(ctx, q, payee, price); err != nil {
		return err
	}

	refund := new(big.Int).Sub(value, price)
	return store.AdjustBalance(ctx, q, buyer, refund)
}
