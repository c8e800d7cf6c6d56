package access

import (
	"crypto/subtle"
	"fmt"

	"github.com/warlocks1507/checkin/internal/apperr"
)

type Role string

const (
	RoleMentor  Role = "mentor"
	RoleManager Role = "manager"
)

func (r Role) keyName() string {
	switch r {
	case RoleMentor:
		return "MENTOR_KEY"
	case RoleManager:
		return "MANAGER_KEY"
	default:
		return fmt.Sprintf("%s key", r)
	}
}

type Permission string

const (
	PermViewAttendance    Permission = "attendance:view"
	PermManageTasks       Permission = "tasks:manage"
	PermDecideCorrections Permission = "corrections:decide"
	PermManageRoster      Permission = "roster:manage"
)

// Each permission is held by exactly one role; keys do not cascade.
var grants = map[Permission]Role{
	PermViewAttendance:    RoleMentor,
	PermManageTasks:       RoleMentor,
	PermDecideCorrections: RoleMentor,
	PermManageRoster:      RoleManager,
}

func RoleFor(p Permission) (Role, bool) {
	r, ok := grants[p]
	return r, ok
}

type Authorizer struct {
	keys map[Role]string
}

func NewAuthorizer(keys map[Role]string) *Authorizer {
	cp := make(map[Role]string, len(keys))
	for r, k := range keys {
		cp[r] = k
	}
	return &Authorizer{keys: cp}
}

// Authorize checks a presented shared key against the role granting p.
func (a *Authorizer) Authorize(p Permission, presented string) (Role, error) {
	role, ok := grants[p]
	if !ok {
		return "", apperr.Internal(fmt.Sprintf("unknown permission %q", p), nil)
	}
	expected := a.keys[role]
	if expected == "" {
		return "", apperr.Internal(role.keyName()+" not configured", nil)
	}
	if presented == "" {
		return "", apperr.Unauthorized("Access key required")
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
		return "", apperr.Forbidden("Access denied")
	}
	return role, nil
}
