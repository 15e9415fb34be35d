package shared

import "strings"

// Role is the coarse authorization level attached to an employee account.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
)

// ParseRole normalises a role string, defaulting to EMPLOYEE for unknown values.
func ParseRole(raw string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleManager:
		return RoleManager
	default:
		return RoleEmployee
	}
}

// IsManager reports whether the role carries manager privileges.
func (r Role) IsManager() bool {
	return r == RoleManager
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager
}
