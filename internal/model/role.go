package model

import "strings"

// Role is the closed set of authorization tags a marketplace account
// can carry. Exactly one role is attached to an account at any time.
type Role string

const (
	RoleBuyer   Role = "buyer"
	RoleFarmer  Role = "farmer"
	RoleSupport Role = "support"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known role tags. The switch is
// intentionally exhaustive so a new role shows up here at review time.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleFarmer, RoleSupport, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole normalizes and validates a raw role tag.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Roles returns every known role, in declaration order.
func Roles() []Role {
	return []Role{RoleBuyer, RoleFarmer, RoleSupport, RoleAdmin}
}
