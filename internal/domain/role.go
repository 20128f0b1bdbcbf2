package domain

import (
	"time"

	"github.com/google/uuid"
)

type RoleName string

const (
	RoleAdmin  RoleName = "ADMIN"
	RoleEditor RoleName = "EDITOR"
	RoleUser   RoleName = "USER"
)

func (n RoleName) Valid() bool {
	return n == RoleAdmin || n == RoleEditor || n == RoleUser
}

// AllRoleNames lists the fixed role enumeration in seed order.
func AllRoleNames() []RoleName {
	return []RoleName{RoleAdmin, RoleEditor, RoleUser}
}

type Role struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      RoleName  `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
