package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/erazemk/diamondbase/internal/db"
	"github.com/erazemk/diamondbase/internal/metrics"
	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

func testAddr(n int) model.Address {
	return model.Address(fmt.Sprintf("0x%040x", n))
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), model.Ether)
}

// fixture is a deployed ledger with one account per role, a second holder
// of every role ("other") and an account with no roles ("stranger").
type fixture struct {
	ledger  *Ledger
	metrics *metrics.Metrics

	owner         model.Address
	miner         model.Address
	manufacturer  model.Address
	masterjeweler model.Address
	retailer      model.Address
	customer      model.Address
	other         model.Address
	stranger      model.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	f := &fixture{
		metrics:       metrics.New(),
		owner:         testAddr(0xa0),
		miner:         testAddr(0xa1),
		manufacturer:  testAddr(0xa2),
		masterjeweler: testAddr(0xa3),
		retailer:      testAddr(0xa4),
		customer:      testAddr(0xa5),
		other:         testAddr(0xa6),
		stranger:      testAddr(0xa7),
	}
	f.ledger = New(database, WithMetrics(f.metrics))

	if err := f.ledger.Deploy(ctx, f.owner); err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	enrol := []struct {
		role    model.Role
		account model.Address
	}{
		{model.RoleMiner, f.miner},
		{model.RoleManufacturer, f.manufacturer},
		{model.RoleMasterjeweler, f.masterjeweler},
		{model.RoleRetailer, f.retailer},
		{model.RoleCustomer, f.customer},
	}
	for _, e := range enrol {
		if err := f.ledger.AddRole(ctx, f.owner, e.role, e.account); err != nil {
			t.Fatalf("AddRole(%s): %v", e.role, err)
		}
		if err := f.ledger.AddRole(ctx, f.owner, e.role, f.other); err != nil {
			t.Fatalf("AddRole(%s, other): %v", e.role, err)
		}
	}

	for _, a := range []model.Address{f.manufacturer, f.customer, f.other, f.stranger} {
		if err := store.AdjustBalance(ctx, database, a, ether(10)); err != nil {
			t.Fatalf("funding %s: %v", a, err)
		}
	}

	return f
}

func (f *fixture) mine(t *testing.T, upc int64) {
	t.Helper()
	_, err := f.ledger.Mine(context.Background(), f.miner, MineRequest{
		UPC:             upc,
		MineName:        "John Doe Mine",
		MineInformation: "Yarray Valley",
		MineLatitude:    "-38.239770",
		MineLongitude:   "144.341490",
		ProductNotes:    "Shiniest diamond from the world!",
	})
	if err != nil {
		t.Fatalf("Mine(%d): %v", upc, err)
	}
}

// lifecycle lists the transitions in order; lifecycle[i] applies to state i.
var lifecycle = []Operation{
	OpSellItem,
	OpBuyItem,
	OpSendItem,
	OpReceiveItem,
	OpSendItemToCut,
	OpReceiveItemToCut,
	OpCutItem,
	OpReturnCutItem,
	OpReceiveCutItem,
	OpMarkForPurchasing,
	OpSendItemForPurchasing,
	OpReceiveItemForPurchasing,
	OpPutUpForPurchasing,
	OpPurchaseItem,
	OpFetchItem,
}

// happyCall returns the call the rightful party makes for op.
func (f *fixture) happyCall(op Operation, upc int64) Call {
	c := Call{UPC: upc}
	switch op {
	case OpSellItem:
		c.Caller, c.Price = f.miner, ether(1)
	case OpBuyItem:
		c.Caller, c.Value = f.manufacturer, ether(1)
	case OpSendItem:
		c.Caller = f.miner
	case OpReceiveItem, OpReceiveCutItem:
		c.Caller = f.manufacturer
	case OpSendItemToCut:
		c.Caller, c.Target = f.manufacturer, f.masterjeweler
	case OpReceiveItemToCut, OpCutItem, OpReturnCutItem:
		c.Caller = f.masterjeweler
	case OpMarkForPurchasing:
		c.Caller, c.Price = f.manufacturer, ether(2)
	case OpSendItemForPurchasing:
		c.Caller, c.Target = f.manufacturer, f.retailer
	case OpReceiveItemForPurchasing, OpPutUpForPurchasing:
		c.Caller = f.retailer
	case OpPurchaseItem:
		c.Caller, c.Value = f.customer, ether(2)
	case OpFetchItem:
		c.Caller = f.customer
	}
	return c
}

// advance mines upc and walks it along the happy path until it is in state.
func (f *fixture) advance(t *testing.T, upc int64, state model.State) {
	t.Helper()
	f.mine(t, upc)
	for i := 0; i < int(state); i++ {
		op := lifecycle[i]
		if _, err := f.ledger.Apply(context.Background(), op, f.happyCall(op, upc)); err != nil {
			t.Fatalf("advancing upc %d through %s: %v", upc, op, err)
		}
	}
}

func (f *fixture) state(t *testing.T, upc int64) model.State {
	t.Helper()
	two, err := f.ledger.FetchItemBufferTwo(context.Background(), upc)
	if err != nil {
		t.Fatalf("FetchItemBufferTwo: %v", err)
	}
	return two.State
}

func (f *fixture) balance(t *testing.T, a model.Address) *big.Int {
	t.Helper()
	b, err := f.ledger.Balance(context.Background(), a)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	return b
}

func expectKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}
