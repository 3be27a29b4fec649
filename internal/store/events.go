package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/diamondbase/internal/model"
)

// AppendEvent records an event. A nil payload stores no payload.
func AppendEvent(ctx context.Context, q DBTX, name string, upc int64, actor model.Address, payload any) (*model.Event, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding event payload: %w", err)
		}
		raw = data
	}

	id := uuid.NewString()
	var stored sql.NullString
	if raw != nil {
		stored = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO events (id, name, upc, actor, payload) VALUES (?, ?, ?, ?, ?)`,
		id, name, upc, actor, stored,
	)
	if err != nil {
		return nil, fmt.Errorf("recording event: %w", err)
	}

	return &model.Event{ID: id, Name: name, UPC: upc, Actor: actor, Payload: raw}, nil
}

// ListEvents returns events in the order they were recorded. A UPC of zero
// returns every event; otherwise only that item's events are returned.
func ListEvents(ctx context.Context, q DBTX, upc int64) ([]model.Event, error) {
	query := `SELECT id, name, upc, actor, payload, created_at FROM events`
	var args []any

	if upc > 0 {
		query += ` WHERE upc = ?`
		args = append(args, upc)
	}

	query += ` ORDER BY rowid`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var payload sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.UPC, &e.Actor, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if payload.Valid {
			e.Payload = json.RawMessage(payload.String)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
