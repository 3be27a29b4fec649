package store

import (
	"context"
	"fmt"

	"github.com/erazemk/diamondbase/internal/model"
)

// AddRole enrols an address in a role. It reports whether membership changed.
func AddRole(ctx context.Context, q DBTX, role model.Role, address model.Address) (bool, error) {
	result, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO roles (role, address) VALUES (?, ?)`,
		role, address,
	)
	if err != nil {
		return false, fmt.Errorf("adding role: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// RemoveRole removes an address from a role. It reports whether membership changed.
func RemoveRole(ctx context.Context, q DBTX, role model.Role, address model.Address) (bool, error) {
	result, err := q.ExecContext(ctx,
		`DELETE FROM roles WHERE role = ? AND address = ?`,
		role, address,
	)
	if err != nil {
		return false, fmt.Errorf("removing role: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// HasRole reports whether an address holds a role.
func HasRole(ctx context.Context, q DBTX, role model.Role, address model.Address) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM roles WHERE role = ? AND address = ?`,
		role, address,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking role: %w", err)
	}
	return count > 0, nil
}

// ListRoleMembers returns the members of a role in enrolment order.
func ListRoleMembers(ctx context.Context, q DBTX, role model.Role) ([]model.Address, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT address FROM roles WHERE role = ? ORDER BY added_at, address`, role,
	)
	if err != nil {
		return nil, fmt.Errorf("listing role members: %w", err)
	}
	defer rows.Close()

	var members []model.Address
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scanning role member: %w", err)
		}
		members = append(members, a)
	}
	return members, rows.Err()
}

// ListAccountRoles returns the roles an address holds, in custody order.
func ListAccountRoles(ctx context.Context, q DBTX, address model.Address) ([]model.Role, error) {
	var roles []model.Role
	for _, role := range model.Roles {
		ok, err := HasRole(ctx, q, role, address)
		if err != nil {
			return nil, err
		}
		if ok {
			roles = append(roles, role)
		}
	}
	return roles, nil
}
