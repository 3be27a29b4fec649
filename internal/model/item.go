package model

import (
	"math/big"
	"time"
)

// NoImageHash is returned by hash reads for an item that exists but never had
// a provenance image hash uploaded.
const NoImageHash = "No Image Hash exists"

// Item is a single tracked gemstone. One UPC is exactly one physical unit.
type Item struct {
	UPC             int64     `json:"upc"`
	SKU             int64     `json:"sku"`
	ProductID       int64     `json:"product_id"`
	CurrentOwner    Address   `json:"current_owner"`
	OriginMinerID   Address   `json:"origin_miner_id"`
	MineName        string    `json:"mine_name"`
	MineInformation string    `json:"mine_information"`
	MineLatitude    string    `json:"mine_latitude"`
	MineLongitude   string    `json:"mine_longitude"`
	ProductNotes    string    `json:"product_notes"`
	ItemPrice       *big.Int  `json:"item_price"`
	ProductPrice    *big.Int  `json:"product_price"`
	State           State     `json:"state"`
	ManufacturerID  Address   `json:"manufacturer_id"`
	MasterjewelerID Address   `json:"masterjeweler_id"`
	RetailerID      Address   `json:"retailer_id"`
	CustomerID      Address   `json:"customer_id"`
	ImageHash       string    `json:"image_hash,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ItemBufferOne is the provenance half of an item as exposed to readers.
type ItemBufferOne struct {
	SKU             int64   `json:"sku"`
	UPC             int64   `json:"upc"`
	CurrentOwner    Address `json:"current_owner"`
	OriginMinerID   Address `json:"origin_miner_id"`
	MineName        string  `json:"mine_name"`
	MineInformation string  `json:"mine_information"`
	MineLatitude    string  `json:"mine_latitude"`
	MineLongitude   string  `json:"mine_longitude"`
}

// ItemBufferTwo is the commercial half of an item as exposed to readers.
type ItemBufferTwo struct {
	SKU             int64    `json:"sku"`
	UPC             int64    `json:"upc"`
	ProductID       int64    `json:"product_id"`
	ProductNotes    string   `json:"product_notes"`
	ItemPrice       *big.Int `json:"item_price"`
	ProductPrice    *big.Int `json:"product_price"`
	State           State    `json:"state"`
	ManufacturerID  Address  `json:"manufacturer_id"`
	MasterjewelerID Address  `json:"masterjeweler_id"`
	RetailerID      Address  `json:"retailer_id"`
	CustomerID      Address  `json:"customer_id"`
}

// EmptyBufferOne returns the zero-valued read for a UPC that was never mined.
func EmptyBufferOne() ItemBufferOne {
	return ItemBufferOne{CurrentOwner: ZeroAddress, OriginMinerID: ZeroAddress}
}

// EmptyBufferTwo returns the zero-valued read for a UPC that was never mined.
func EmptyBufferTwo() ItemBufferTwo {
	return ItemBufferTwo{
		ItemPrice:       new(big.Int),
		ProductPrice:    new(big.Int),
		State:           StateMined,
		ManufacturerID:  ZeroAddress,
		MasterjewelerID: ZeroAddress,
		RetailerID:      ZeroAddress,
		CustomerID:      ZeroAddress,
	}
}

// BufferOne projects the item onto its first read buffer.
func (i *Item) BufferOne() ItemBufferOne {
	return ItemBufferOne{
		SKU:             i.SKU,
		UPC:             i.UPC,
		CurrentOwner:    i.CurrentOwner,
		OriginMinerID:   i.OriginMinerID,
		MineName:        i.MineName,
		MineInformation: i.MineInformation,
		MineLatitude:    i.MineLatitude,
		MineLongitude:   i.MineLongitude,
	}
}

// BufferTwo projects the item onto its second read buffer.
func (i *Item) BufferTwo() ItemBufferTwo {
	return ItemBufferTwo{
		SKU:             i.SKU,
		UPC:             i.UPC,
		ProductID:       i.ProductID,
		ProductNotes:    i.ProductNotes,
		ItemPrice:       i.ItemPrice,
		ProductPrice:    i.ProductPrice,
		State:           i.State,
		ManufacturerID:  i.ManufacturerID,
		MasterjewelerID: i.MasterjewelerID,
		RetailerID:      i.RetailerID,
		CustomerID:      i.CustomerID,
	}
}
