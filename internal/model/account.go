package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Address identifies an account: "0x" followed by 40 lowercase hex digits.
type Address string

// ZeroAddress is the "no account" sentinel, used for unset custody fields and
// for the owner after ownership is renounced.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress validates and normalises an address.
func ParseAddress(v string) (Address, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if !strings.HasPrefix(v, "0x") || len(v) != 42 {
		return "", fmt.Errorf("invalid address %q", v)
	}
	if _, err := hex.DecodeString(v[2:]); err != nil {
		return "", fmt.Errorf("invalid address %q", v)
	}
	return Address(v), nil
}

// NewAddress generates a random address.
func NewAddress() (Address, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating address: %w", err)
	}
	return Address("0x" + hex.EncodeToString(buf)), nil
}

// IsZero reports whether a is unset or the zero address.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

// Account is a ledger participant with a wei balance.
type Account struct {
	Address      Address   `json:"address"`
	PasswordHash string    `json:"-"`
	Balance      *big.Int  `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// MinPasswordLength is the minimum accepted account password length.
const MinPasswordLength = 8

// ValidatePassword checks an account password against the length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Ether is 10^18 wei.
var Ether = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ParseWei parses a non-negative decimal wei amount.
func ParseWei(v string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", v)
	}
	return n, nil
}
