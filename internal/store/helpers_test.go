package store

import (
	"fmt"
	"math/big"

	"github.com/erazemk/diamondbase/internal/model"
)

func testAddr(n int) model.Address {
	return model.Address(fmt.Sprintf("0x%040x", n))
}

func newTestItem(upc int64, miner model.Address) *model.Item {
	return &model.Item{
		UPC:             upc,
		SKU:             upc,
		ProductID:       upc * 2,
		CurrentOwner:    miner,
		OriginMinerID:   miner,
		MineName:        "John Doe Mine",
		MineInformation: "Yarray Valley",
		MineLatitude:    "-38.239770",
		MineLongitude:   "144.341490",
		ProductNotes:    "Shiniest diamond from the world!",
		ItemPrice:       new(big.Int),
		ProductPrice:    new(big.Int),
		State:           model.StateMined,
		ManufacturerID:  model.ZeroAddress,
		MasterjewelerID: model.ZeroAddress,
		RetailerID:      model.ZeroAddress,
		CustomerID:      model.ZeroAddress,
	}
}
