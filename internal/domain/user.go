package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	Roles        []Role    `db:"-" json:"roles,omitempty"`
}

func (u *User) HasRole(name RoleName) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

// Caller builds the visibility context for this user.
func (u *User) Caller() *Caller {
	if u == nil {
		return nil
	}
	names := make([]RoleName, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return &Caller{ID: u.ID, Roles: names}
}
