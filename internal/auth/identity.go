package auth

import "github.com/kev405/toolflow-backend/types"

// Identity is the authenticated user bound to a request for its duration.
type Identity struct {
	ID       int64
	Username string
	Name     string
	Roles    []types.Role
}

// HasAnyRole reports whether the identity holds at least one of the given
// roles. Roles are flat; there is no hierarchy.
func (i Identity) HasAnyRole(roles ...types.Role) bool {
	for _, required := range roles {
		for _, held := range i.Roles {
			if held == required {
				return true
			}
		}
	}
	return false
}
