package models

import "strings"

// Role is the already-authenticated capability level of a caller.
type Role string

const (
	RoleCore  Role = "core"
	RoleAdmin Role = "admin"
)

// ParseRole resolves a case-insensitive role name.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleCore:
		return RoleCore, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// CanMutate reports whether the role may change catalog or project state.
func (r Role) CanMutate() bool {
	return r == RoleAdmin
}
