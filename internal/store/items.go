package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/diamondbase/internal/model"
)

const itemColumns = `upc, sku, product_id, current_owner, origin_miner_id,
	mine_name, mine_information, mine_latitude, mine_longitude, product_notes,
	item_price, product_price, state,
	manufacturer_id, masterjeweler_id, retailer_id, customer_id,
	image_hash, created_at, updated_at`

// CreateItem inserts a newly mined item. A taken UPC fails with ErrItemExists.
func CreateItem(ctx context.Context, q DBTX, item *model.Item) error {
	exists, err := ItemExists(ctx, q, item.UPC)
	if err != nil {
		return err
	}
	if exists {
		return ErrItemExists
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO items (upc, sku, product_id, current_owner, origin_miner_id,
		                    mine_name, mine_information, mine_latitude, mine_longitude, product_notes,
		                    item_price, product_price, state,
		                    manufacturer_id, masterjeweler_id, retailer_id, customer_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UPC, item.SKU, item.ProductID, item.CurrentOwner, item.OriginMinerID,
		item.MineName, item.MineInformation, item.MineLatitude, item.MineLongitude, item.ProductNotes,
		amountString(item.ItemPrice), amountString(item.ProductPrice), item.State,
		item.ManufacturerID, item.MasterjewelerID, item.RetailerID, item.CustomerID,
	)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	return nil
}

// ItemExists reports whether a UPC has been mined.
func ItemExists(ctx context.Context, q DBTX, upc int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE upc = ?`, upc).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking item: %w", err)
	}
	return count > 0, nil
}

// GetItem returns an item by UPC, or nil if it was never mined.
func GetItem(ctx context.Context, q DBTX, upc int64) (*model.Item, error) {
	row := q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE upc = ?`, upc)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items ordered by UPC, optionally filtered by state.
func ListItems(ctx context.Context, q DBTX, state *model.State) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if state != nil {
		rows, err = q.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items WHERE state = ? ORDER BY upc`, *state,
		)
	} else {
		rows, err = q.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items ORDER BY upc`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem writes an item's mutable custody, price and state fields.
// Provenance metadata and the origin miner are never rewritten.
func UpdateItem(ctx context.Context, q DBTX, item *model.Item) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET current_owner = ?, item_price = ?, product_price = ?, state = ?,
		                  manufacturer_id = ?, masterjeweler_id = ?, retailer_id = ?, customer_id = ?,
		                  updated_at = CURRENT_TIMESTAMP
		 WHERE upc = ?`,
		item.CurrentOwner, amountString(item.ItemPrice), amountString(item.ProductPrice), item.State,
		item.ManufacturerID, item.MasterjewelerID, item.RetailerID, item.CustomerID,
		item.UPC,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// SetImageHash stores an item's provenance image hash.
func SetImageHash(ctx context.Context, q DBTX, upc int64, hash string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET image_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE upc = ?`,
		hash, upc,
	)
	if err != nil {
		return fmt.Errorf("setting image hash: %w", err)
	}
	return nil
}

// SetItemImage stores an item's provenance image.
func SetItemImage(ctx context.Context, q DBTX, upc int64, image []byte, mime string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO item_images (upc, image, image_mime) VALUES (?, ?, ?)
		 ON CONFLICT (upc) DO UPDATE SET image = excluded.image, image_mime = excluded.image_mime`,
		upc, image, mime,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's provenance image and MIME type.
func GetItemImage(ctx context.Context, q DBTX, upc int64) ([]byte, string, error) {
	var image []byte
	var mime string
	err := q.QueryRowContext(ctx,
		`SELECT image, image_mime FROM item_images WHERE upc = ?`, upc,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var itemPrice, productPrice string
	err := row.Scan(&item.UPC, &item.SKU, &item.ProductID, &item.CurrentOwner, &item.OriginMinerID,
		&item.MineName, &item.MineInformation, &item.MineLatitude, &item.MineLongitude, &item.ProductNotes,
		&itemPrice, &productPrice, &item.State,
		&item.ManufacturerID, &item.MasterjewelerID, &item.RetailerID, &item.CustomerID,
		&item.ImageHash, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if item.ItemPrice, err = parseAmount(itemPrice); err != nil {
		return nil, err
	}
	if item.ProductPrice, err = parseAmount(productPrice); err != nil {
		return nil, err
	}
	return item, nil
}
