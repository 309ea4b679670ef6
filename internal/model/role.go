package model

import "fmt"

// Role is a closed set so role handling can be an exhaustive switch instead
// of string comparisons scattered across handlers.
type Role int

const (
	RoleCustomer Role = iota
	RolePrinting
	RolePlant
	RoleAdmin
	RoleBusinessOwner
)

var roleNames = map[Role]string{
	RoleCustomer:      "customer",
	RolePrinting:      "printing",
	RolePlant:         "plant",
	RoleAdmin:         "admin",
	RoleBusinessOwner: "business_owner",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole maps the auth service's role string onto the Role set.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return RoleCustomer, fmt.Errorf("unknown role %q", s)
}

// IsStaff reports whether the role belongs to internal operations.
func (r Role) IsStaff() bool {
	switch r {
	case RolePrinting, RolePlant, RoleAdmin:
		return true
	case RoleCustomer, RoleBusinessOwner:
		return false
	}
	return false
}
