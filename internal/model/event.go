package model

import (
	"encoding/json"
	"time"
)

// Event is an entry in the append-only event log. Every successful
// transition and administrative action produces exactly one.
type Event struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UPC       int64           `json:"upc,omitempty"`
	Actor     Address         `json:"actor"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Administrative event names. Transition events are named after the state
// the item entered.
const (
	EventOwnershipTransferred = "OwnershipTransferred"
	EventRoleAdded            = "RoleAdded"
	EventRoleRemoved          = "RoleRemoved"
	EventImageHashUploaded    = "ImageHashUploaded"
)

// OwnershipTransferred is the payload of an ownership change.
type OwnershipTransferred struct {
	PreviousOwner Address `json:"previous_owner"`
	NewOwner      Address `json:"new_owner"`
}

// RoleChanged is the payload of a role membership change.
type RoleChanged struct {
	Role    Role    `json:"role"`
	Account Address `json:"account"`
}
