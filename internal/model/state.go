package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// State is the lifecycle stage of an item. Values are ordered and an item
// only ever moves from one state to the next.
type State int

// Item states, in lifecycle order.
const (
	StateMined State = iota
	StateForSale
	StateSold
	StateSent
	StateReceived
	StateSentToCut
	StateReceivedForCutting
	StateCut
	StateSentFromCutting
	StateReceivedFromCutting
	StateMarkedForPurchasing
	StateSentForPurchasing
	StateReceivedForPurchasing
	StateForPurchasing
	StatePurchased
	StateFetched
)

var stateNames = [...]string{
	"Mined",
	"ForSale",
	"Sold",
	"Sent",
	"Received",
	"SentToCut",
	"ReceivedForCutting",
	"Cut",
	"SentFromCutting",
	"ReceivedFromCutting",
	"MarkedForPurchasing",
	"SentForPurchasing",
	"ReceivedForPurchasing",
	"ForPurchasing",
	"Purchased",
	"Fetched",
}

// NumStates is the number of lifecycle states.
const NumStates = len(stateNames)

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	return s >= StateMined && int(s) < NumStates
}

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Next returns the state that follows s. Fetched is terminal.
func (s State) Next() (State, bool) {
	if !s.Valid() || s == StateFetched {
		return s, false
	}
	return s + 1, true
}

// ParseState accepts either a state name or its ordinal.
func ParseState(v string) (State, error) {
	for i, name := range stateNames {
		if name == v {
			return State(i), nil
		}
	}
	if n, err := strconv.Atoi(v); err == nil && State(n).Valid() {
		return State(n), nil
	}
	return 0, fmt.Errorf("unknown state %q", v)
}

// MarshalJSON encodes the state as its ordinal, matching the on-ledger value.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(s))
}
