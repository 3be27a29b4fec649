package ledger

import (
	"context"
	"database/sql"
	"math/big"

	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

// Operation names a lifecycle transition.
type Operation string

// Lifecycle transitions after mining, in order.
const (
	OpSellItem                 Operation = "sellItem"
	OpBuyItem                  Operation = "buyItem"
	OpSendItem                 Operation = "sendItem"
	OpReceiveItem              Operation = "receiveItem"
	OpSendItemToCut            Operation = "sendItemToCut"
	OpReceiveItemToCut         Operation = "receiveItemToCut"
	OpCutItem                  Operation = "cutItem"
	OpReturnCutItem            Operation = "returnCutItem"
	OpReceiveCutItem           Operation = "receiveCutItem"
	OpMarkForPurchasing        Operation = "markForPurchasing"
	OpSendItemForPurchasing    Operation = "sendItemForPurchasing"
	OpReceiveItemForPurchasing Operation = "receiveItemForPurchasing"
	OpPutUpForPurchasing       Operation = "putUpForPurchasing"
	OpPurchaseItem             Operation = "purchaseItem"
	OpFetchItem                Operation = "fetchItem"
)

// Call is one invocation of a transition.
type Call struct {
	Caller model.Address
	UPC    int64
	// Target is the next custodian for sendItemToCut and sendItemForPurchasing.
	Target model.Address
	// Price is the listing price for sellItem and markForPurchasing.
	Price *big.Int
	// Value is the amount attached to buyItem and purchaseItem.
	Value *big.Int
}

// field reads the address an item records for one stage of custody.
type field func(*model.Item) model.Address

func currentOwner(i *model.Item) model.Address { return i.CurrentOwner }
func originMiner(i *model.Item) model.Address { return i.OriginMinerID }
func manufacturer(i *model.Item) model.Address { return i.ManufacturerID }
func masterjeweler(i *model.Item) model.Address { return i.MasterjewelerID }
func retailer(i *model.Item) model.Address { return i.RetailerID }
func customer(i *model.Item) model.Address { return i.CustomerID }
func itemPrice(i *model.Item) *big.Int { return i.ItemPrice }
func productPrice(i *model.Item) *big.Int { return i.ProductPrice }

// transition is one row of the lifecycle table. The item must be in from;
// the caller must hold role (if set) and be the address in party (if set);
// Target must hold target (if set). Payable rows settle price(item) with
// payee(item), both read before mutate runs.
type transition struct {
	from   model.State
	role   model.Role
	party  field
	target model.Role
	priced bool

	payable bool
	price   func(*model.Item) *big.Int
	payee   field

	mutate func(*model.Item, Call)
}

var transitions = map[Operation]transition{
	OpSellItem: {
		from: model.StateMined, role: model.RoleMiner, party: currentOwner, priced: true,
		mutate: func(i *model.Item, c Call) { i.ItemPrice = c.Price },
	},
	OpBuyItem: {
		from: model.StateForSale, role: model.RoleManufacturer,
		payable: true, price: itemPrice, payee: currentOwner,
		mutate: func(i *model.Item, c Call) {
			i.ManufacturerID = c.Caller
			i.CurrentOwner = c.Caller
		},
	},
	OpSendItem: {
		from: model.StateSold, party: originMiner,
	},
	OpReceiveItem: {
		from: model.StateSent, party: manufacturer,
	},
	OpSendItemToCut: {
		from: model.StateReceived, party: manufacturer, target: model.RoleMasterjeweler,
		mutate: func(i *model.Item, c Call) { i.MasterjewelerID = c.Target },
	},
	OpReceiveItemToCut: {
		from: model.StateSentToCut, role: model.RoleMasterjeweler, party: masterjeweler,
		mutate: func(i *model.Item, c Call) { i.CurrentOwner = c.Caller },
	},
	OpCutItem: {
		from: model.StateReceivedForCutting, role: model.RoleMasterjeweler, party: masterjeweler,
	},
	OpReturnCutItem: {
		from: model.StateCut, party: masterjeweler,
	},
	OpReceiveCutItem: {
		from: model.StateSentFromCutting, party: manufacturer,
		mutate: func(i *model.Item, c Call) { i.CurrentOwner = c.Caller },
	},
	OpMarkForPurchasing: {
		from: model.StateReceivedFromCutting, party: manufacturer, priced: true,
		mutate: func(i *model.Item, c Call) { i.ProductPrice = c.Price },
	},
	OpSendItemForPurchasing: {
		from: model.StateMarkedForPurchasing, party: manufacturer, target: model.RoleRetailer,
		mutate: func(i *model.Item, c Call) { i.RetailerID = c.Target },
	},
	OpReceiveItemForPurchasing: {
		from: model.StateSentForPurchasing, party: retailer,
		mutate: func(i *model.Item, c Call) { i.CurrentOwner = c.Caller },
	},
	OpPutUpForPurchasing: {
		from: model.StateReceivedForPurchasing, role: model.RoleRetailer, party: retailer,
	},
	OpPurchaseItem: {
		from: model.StateForPurchasing, role: model.RoleCustomer,
		payable: true, price: productPrice, payee: retailer,
		mutate: func(i *model.Item, c Call) {
			i.CustomerID = c.Caller
			i.CurrentOwner = c.Caller
		},
	},
	OpFetchItem: {
		from: model.StatePurchased, party: customer,
	},
}

// transitionPayload is the event body of every lifecycle event.
type transitionPayload struct {
	UPC    int64         `json:"upc"`
	State  model.State   `json:"state"`
	Target model.Address `json:"target,omitempty"`
	Price  *big.Int      `json:"price,omitempty"`
	Payee  model.Address `json:"payee,omitempty"`
	Refund *big.Int      `json:"refund,omitempty"`
}

// Apply runs one lifecycle transition. Checks run in a fixed order: item
// state, caller role, caller party, target role, payment. The first failing
// check aborts the whole operation.
func (l *Ledger) Apply(ctx context.Context, op Operation, call Call) (*model.Event, error) {
	t, ok := transitions[op]
	if !ok {
		return nil, invalidArgument("unknown operation %q", op)
	}

	var event *model.Event
	var settled *big.Int
	err := l.write(ctx, string(op), func(tx *sql.Tx) (string, error) {
		item, err := store.GetItem(ctx, tx, call.UPC)
		if err != nil {
			return "", err
		}
		if item == nil || item.State != t.from {
			return "", wrongState(t.from)
		}

		if err := authorize(ctx, tx, call.Caller, item, t.role, t.party); err != nil {
			return "", err
		}

		if t.target != "" {
			if call.Target.IsZero() {
				return "", invalidArgument("%s requires a target address", op)
			}
			ok, err := store.HasRole(ctx, tx, t.target, call.Target)
			if err != nil {
				return "", err
			}
			if !ok {
				return "", targetRoleRequired(t.target, call.Target)
			}
		}

		if t.priced && (call.Price == nil || call.Price.Sign() < 0) {
			return "", invalidArgument("%s requires a non-negative price", op)
		}

		payload := transitionPayload{UPC: item.UPC}
		if t.target != "" {
			payload.Target = call.Target
		}
		if t.priced {
			payload.Price = call.Price
		}

		if t.payable {
			price, payee := t.price(item), t.payee(item)
			value := call.Value
			if value == nil {
				value = new(big.Int)
			}
			if value.Cmp(price) < 0 {
				return "", insufficientPayment(value, price)
			}
			refund := new(big.Int).Sub(value, price)
			payload.Price, payload.Payee, payload.Refund = price, payee, refund
			if err := settle(ctx, tx, call.Caller, payee, value, price); err != nil {
				return "", err
			}
			settled = price
		}

		if t.mutate != nil {
			t.mutate(item, call)
		}
		next, _ := item.State.Next()
		item.State = next
		payload.State = next

		if err := store.UpdateItem(ctx, tx, item); err != nil {
			return "", err
		}

		event, err = store.AppendEvent(ctx, tx, next.String(), item.UPC, call.Caller, payload)
		return next.String(), err
	})
	if err == nil && settled != nil {
		l.metrics.Settled(string(op), settled)
	}
	return event, err
}

// authorize composes the two orthogonal predicates of a transition: role
// membership and being the item's recorded party for this stage. Either may
// be absent; when both are present the role is checked first.
func authorize(ctx context.Context, q store.DBTX, caller model.Address, item *model.Item, role model.Role, party field) error {
	if role != "" {
		if err := requireRole(ctx, q, role, caller); err != nil {
			return err
		}
	}
	if party != nil {
		if want := party(item); want.IsZero() || want != caller {
			return notAuthorized()
		}
	}
	return nil
}

func (l *Ledger) SellItem(ctx context.Context, caller model.Address, upc int64, price *big.Int) (*model.Event, error) {
	return l.Apply(ctx, OpSellItem, Call{Caller: caller, UPC: upc, Price: price})
}

func (l *Ledger) BuyItem(ctx context.Context, caller model.Address, upc int64, value *big.Int) (*model.Event, error) {
	return l.Apply(ctx, OpBuyItem, Call{Caller: caller, UPC: upc, Value: value})
}

func (l *Ledger) SendItem(ctx context.Context, caller model.Address, upc int64) (*model.Event, error) {
	return l.Apply(ctx, OpSendItem, Call{Caller: caller, UPC: upc})
}

func (l *Ledger) ReceiveItem(ctx context.Context, caller model.Address, upc int64) (*model.Event, error) {
	return l.Apply(ctx, OpReceiveItem, Call{Caller: caller, UPC: upc})
}

func (l *Ledger) SendItemToCut(ctx context.Context, caller model.Address, upc int64, masterjeweler model.Address) (*model.Event, error) {
	return l.Apply(ctx, OpSendItemToCut, Call{Caller: caller, UPC: upc, Target: masterjeweler})
}

func (l *Ledger) ReceiveItemToCut(ctx context.Context, caller model.Address, upc int64) (*model.Event, error) {
	return l.Apply(ctx, OpReceiveItemToCut, Call{Caller: caller, UPC: upc})
}

func (l *Ledger) CutItem(ctx context.Context, caller model.Address, upc int64) (*model.Event, error) {
	return l.Apply(ctx, OpCutItem, Call{Caller: caller, UPC: upc})
}

func (l *Ledger) ReturnCutItem(ctx context.Context, caller model.Address, upc int64) (*model.Event, error) {
	return l.Apply(ctx, OpReturnCutItem, Call{Caller: caller, UPC: upc})
}

func (l *Ledger) ReceiveCutItem(ctx context.Context, caller model.Address, upc int64) (*model.Event, error) {
	return l.Apply(ctx, OpReceiveCutItem, Call{Caller: caller, UPC: upc})
}

func (l *Ledger) MarkForPurchasing(ctx context.Context, caller model.Address, upc int64, price *big.Int) (*model.Event, error) {
	return l.Apply(ctx, OpMarkForPurchasing, Call{Caller: caller, UPC: upc, Price: price})
}

func (l *Ledger) SendItemForPurchasing(ctx context.Context, caller model.Address, upc int64, retailer model.Address) (*model.Event, error) {
	return l.Apply(ctx, OpSendItemForPurchasing, Call{Caller: caller, UPC: upc, Target: retailer})
}

func (l *Ledger) ReceiveItemForPurchasing(ctx context.Context, caller model.Address, upc int64) (*model.Event, error) {
	return l.Apply(ctx, OpReceiveItemForPurchasing, Call{Caller: caller, UPC: upc})
}

func (l *Ledger) PutUpForPurchasing(ctx context.Context, caller model.Address, upc int64) (*model.Event, error) {
	return l.Apply(ctx, OpPutUpForPurchasing, Call{Caller: caller, UPC: upc})
}

func (l *Ledger) PurchaseItem(ctx context.Context, caller model.Address, upc int64, value *big.Int) (*model.Event, error) {
	return l.Apply(ctx, OpPurchaseItem, Call{Caller: caller, UPC: upc, Value: value})
}

func (l *Ledger) FetchItem(ctx context.Context, caller model.Address, upc int64) (*model.Event, error) {
	return l.Apply(ctx, OpFetchItem, Call{Caller: caller, UPC: upc})
}
