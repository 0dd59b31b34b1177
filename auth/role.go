package auth

import "strings"

// Role is one of the two dashboard roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
)

// NormalizeRole maps any case of "admin" to RoleAdmin and everything else to RoleAnalyst.
func NormalizeRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleAnalyst
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) String() string { return string(r) }
