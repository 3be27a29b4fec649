package model

import (
	"fmt"
	"strings"
)

// Role is a named capability set, independent of item custody.
type Role string

// Roles.
const (
	RoleMiner         Role = "Miner"
	RoleManufacturer  Role = "Manufacturer"
	RoleMasterjeweler Role = "Masterjeweler"
	RoleRetailer      Role = "Retailer"
	RoleCustomer      Role = "Customer"
)

// Roles lists every role in custody order.
var Roles = []Role{RoleMiner, RoleManufacturer, RoleMasterjeweler, RoleRetailer, RoleCustomer}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole accepts role names case-insensitively.
func ParseRole(v string) (Role, error) {
	for _, known := range Roles {
		if strings.EqualFold(v, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", v)
}
