package domain

import (
	"time"

	"github.com/google/uuid"
)

type Travel struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Description  string    `db:"description" json:"description"`
	NumberOfDays int       `db:"number_of_days" json:"number_of_days"`
	IsPublic     bool      `db:"is_public" json:"is_public"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// NumberOfNights is derived, never stored.
func (t Travel) NumberOfNights() int {
	return t.NumberOfDays - 1
}

type TravelChangeFields struct {
	Name         *string
	Slug         *string
	Description  *string
	NumberOfDays *int
	IsPublic     *bool
}
