package security

import (
	"blogcore/internal/domain/model"
)

// Authorize decides allow/deny for an authenticated identity: allow iff no
// specific roles are required, or the identity's role claims intersect the
// required set. Each evaluation is independent and request-scoped.
func Authorize(id Identity, requiredRoles ...string) bool {
	if len(requiredRoles) == 0 {
		return true
	}
	for _, have := range id.Roles {
		for _, want := range requiredRoles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// HasRole reports whether the identity carries the named role claim.
func (id Identity) HasRole(name string) bool {
	return Authorize(id, name)
}

// IsOwnerOrPrivileged layers ownership on top of role checks: the owner of
// a resource may mutate it, an Admin may mutate any. Collaborators call
// this before resource-mutating operations.
func IsOwnerOrPrivileged(id Identity, resourceOwnerID int64) bool {
	return id.UserID == resourceOwnerID || Authorize(id, model.RoleAdmin)
}
