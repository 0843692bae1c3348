package domain

import "strings"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Capability int

const (
	CapManageTours Capability = iota + 1
	CapManageBookings
	CapManageUsers
	CapViewStats
	CapModerateReviews
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleUser: {},
	RoleAdmin: {
		CapManageTours:     true,
		CapManageBookings:  true,
		CapManageUsers:     true,
		CapViewStats:       true,
		CapModerateReviews: true,
	},
}

// ParseRole returns the role named by s, or false if s names no known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// IsAdmin reports whether r grants every administrative capability.
func (r Role) IsAdmin() bool {
	for _, c := range []Capability{CapManageTours, CapManageBookings, CapManageUsers, CapViewStats} {
		if !r.Can(c) {
			return false
		}
	}
	return true
}
