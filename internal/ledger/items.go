package ledger

import (
	"context"
	"database/sql"
	"math"
	"math/big"

	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

// maxUPC keeps the derived product id within int64.
const maxUPC = math.MaxInt64 / 2

// MineRequest carries the provenance metadata captured when an item is mined.
type MineRequest struct {
	UPC             int64  `json:"upc"`
	MineName        string `json:"mine_name"`
	MineInformation string `json:"mine_information"`
	MineLatitude    string `json:"mine_latitude"`
	MineLongitude   string `json:"mine_longitude"`
	ProductNotes    string `json:"product_notes"`
}

// Mine registers a new item owned by caller, who must be a Miner.
func (l *Ledger) Mine(ctx context.Context, caller model.Address, req MineRequest) (*model.Event, error) {
	var event *model.Event
	err := l.write(ctx, "mine", func(tx *sql.Tx) (string, error) {
		if req.UPC <= 0 {
			return "", invalidArgument("upc must be positive")
		}
		if req.UPC > maxUPC {
			return "", invalidArgument("upc must not exceed %d", maxUPC)
		}
		exists, err := store.ItemExists(ctx, tx, req.UPC)
		if err != nil {
			return "", err
		}
		if exists {
			return "", duplicateItem(req.UPC)
		}
		if err := requireRole(ctx, tx, model.RoleMiner, caller); err != nil {
			return "", err
		}

		item := &model.Item{
			UPC:             req.UPC,
			SKU:             req.UPC,
			ProductID:       req.UPC * 2,
			CurrentOwner:    caller,
			OriginMinerID:   caller,
			MineName:        req.MineName,
			MineInformation: req.MineInformation,
			MineLatitude:    req.MineLatitude,
			MineLongitude:   req.MineLongitude,
			ProductNotes:    req.ProductNotes,
			ItemPrice:       new(big.Int),
			ProductPrice:    new(big.Int),
			State:           model.StateMined,
			ManufacturerID:  model.ZeroAddress,
			MasterjewelerID: model.ZeroAddress,
			RetailerID:      model.ZeroAddress,
			CustomerID:      model.ZeroAddress,
		}
		if err := store.CreateItem(ctx, tx, item); err != nil {
			return "", err
		}

		event, err = store.AppendEvent(ctx, tx, model.StateMined.String(), item.UPC, caller,
			transitionPayload{UPC: item.UPC, State: model.StateMined})
		return model.StateMined.String(), err
	})
	return event, err
}

// FetchItemBufferOne returns an item's provenance fields. Unknown UPCs yield
// zero values rather than an error.
func (l *Ledger) FetchItemBufferOne(ctx context.Context, upc int64) (model.ItemBufferOne, error) {
	if err := l.read(ctx); err != nil {
		return model.ItemBufferOne{}, err
	}
	item, err := store.GetItem(ctx, l.db, upc)
	if err != nil {
		return model.ItemBufferOne{}, err
	}
	if item == nil {
		return model.EmptyBufferOne(), nil
	}
	return item.BufferOne(), nil
}

// FetchItemBufferTwo returns an item's commercial and custody fields.
// Unknown UPCs yield zero values rather than an error.
func (l *Ledger) FetchItemBufferTwo(ctx context.Context, upc int64) (model.ItemBufferTwo, error) {
	if err := l.read(ctx); err != nil {
		return model.ItemBufferTwo{}, err
	}
	item, err := store.GetItem(ctx, l.db, upc)
	if err != nil {
		return model.ItemBufferTwo{}, err
	}
	if item == nil {
		return model.EmptyBufferTwo(), nil
	}
	return item.BufferTwo(), nil
}

// Item returns the full item record, or nil if the UPC was never mined.
func (l *Ledger) Item(ctx context.Context, upc int64) (*model.Item, error) {
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	return store.GetItem(ctx, l.db, upc)
}

// Items lists items, optionally only those in state.
func (l *Ledger) Items(ctx context.Context, state *model.State) ([]model.Item, error) {
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	return store.ListItems(ctx, l.db, state)
}

// Events returns the event log of one item, or every event when upc is zero.
func (l *Ledger) Events(ctx context.Context, upc int64) ([]model.Event, error) {
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	return store.ListEvents(ctx, l.db, upc)
}
