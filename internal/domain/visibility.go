package domain

import "github.com/google/uuid"

// Caller is the resolved identity a request acts as. It is threaded
// explicitly through services and presenters; there is no ambient auth
// lookup. A nil *Caller means anonymous.
type Caller struct {
	ID    uuid.UUID
	Roles []RoleName
}

func (c *Caller) HasRole(name RoleName) bool {
	if c == nil {
		return false
	}
	for _, role := range c.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// CanViewPrivate reports whether private rows (is_public = false) and gated
// fields are visible to this caller. ADMIN and EDITOR are equivalent for
// read visibility. Missing caller or roles is "not qualified", never an error.
func (c *Caller) CanViewPrivate() bool {
	return c.HasRole(RoleAdmin) || c.HasRole(RoleEditor)
}
