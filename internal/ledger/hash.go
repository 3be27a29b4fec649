package ledger

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/diamondbase/internal/imaging"
	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

// UploadHash records the provenance image hash of an item. Only the item's
// original miner may write it; for anyone else, and for unknown UPCs, the
// call fails with ErrNotAuthorized.
func (l *Ledger) UploadHash(ctx context.Context, caller model.Address, upc int64, hash string) (*model.Event, error) {
	var event *model.Event
	err := l.write(ctx, "uploadHash", func(tx *sql.Tx) (string, error) {
		if err := requireOriginMiner(ctx, tx, caller, upc); err != nil {
			return "", err
		}
		if hash == "" {
			return "", invalidArgument("hash must not be empty")
		}
		var err error
		event, err = recordHash(ctx, tx, caller, upc, hash)
		return "", err
	})
	return event, err
}

// UploadImage normalises a provenance photograph, stores it and records its
// content hash as the item's image hash. Authorisation is the same as for
// UploadHash.
func (l *Ledger) UploadImage(ctx context.Context, caller model.Address, upc int64, data []byte) (*model.Event, error) {
	processed, err := imaging.Process(bytes.NewReader(data))
	if err != nil {
		return nil, invalidArgument("%v", err)
	}

	var event *model.Event
	err = l.write(ctx, "uploadImage", func(tx *sql.Tx) (string, error) {
		if err := requireOriginMiner(ctx, tx, caller, upc); err != nil {
			return "", err
		}
		if err := store.SetItemImage(ctx, tx, upc, processed.Data, processed.MIME); err != nil {
			return "", err
		}
		var err error
		event, err = recordHash(ctx, tx, caller, upc, processed.Hash)
		return "", err
	})
	return event, err
}

// ReadHash returns the image hash of an item: the stored hash, NoImageHash
// if the item has none, or "" if the item does not exist.
func (l *Ledger) ReadHash(ctx context.Context, upc int64) (string, error) {
	if err := l.read(ctx); err != nil {
		return "", err
	}
	item, err := store.GetItem(ctx, l.db, upc)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", nil
	}
	if item.ImageHash == "" {
		return model.NoImageHash, nil
	}
	return item.ImageHash, nil
}

// Image returns the stored provenance photograph of an item, if any.
func (l *Ledger) Image(ctx context.Context, upc int64) ([]byte, string, error) {
	if err := l.read(ctx); err != nil {
		return nil, "", err
	}
	return store.GetItemImage(ctx, l.db, upc)
}

func requireOriginMiner(ctx context.Context, q store.DBTX, caller model.Address, upc int64) error {
	item, err := store.GetItem(ctx, q, upc)
	if err != nil {
		return err
	}
	if item == nil || item.OriginMinerID != caller {
		return notAuthorized()
	}
	return nil
}

func recordHash(ctx context.Context, tx *sql.Tx, caller model.Address, upc int64, hash string) (*model.Event, error) {
	if err := store.SetImageHash(ctx, tx, upc, hash); err != nil {
		return nil, fmt.Errorf("recording hash: %w", err)
	}
	return store.AppendEvent(ctx, tx, model.EventImageHashUploaded, upc, caller,
		map[string]string{"hash": hash})
}
