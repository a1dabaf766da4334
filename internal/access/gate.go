// Package access decides whether the acting session may run an operation.
package access

import (
	"go-inventory-tims/internal/apperr"
	"go-inventory-tims/internal/model"
)

// Session is the request-scoped identity, populated once per request from a
// verified session token.
type Session struct {
	UserID   uint
	Username string
	Role     model.Role
	TokenID  string
}

// RoleSet is an unordered set of roles.
type RoleSet map[model.Role]struct{}

func NewRoleSet(roles ...model.Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s RoleSet) Has(r model.Role) bool {
	_, ok := s[r]
	return ok
}

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	default:
		return "deny_forbidden"
	}
}

// Err converts a deny decision to its taxonomy error; Allow yields nil.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return apperr.ErrUnauthorized
	default:
		return apperr.ErrForbidden
	}
}

// Authorize denies when there is no session or its role is not in required.
func Authorize(s *Session, required RoleSet) Decision {
	if s == nil || s.UserID == 0 {
		return DenyUnauthenticated
	}
	if !required.Has(s.Role) {
		return DenyForbidden
	}
	return Allow
}

// Can is Authorize against the declared policy of p.
func Can(s *Session, p Privilege) Decision {
	return Authorize(s, RolesFor(p))
}
