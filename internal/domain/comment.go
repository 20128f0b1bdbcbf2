package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	CommentTextMinLen = 1
	CommentTextMaxLen = 5000
)

type Comment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TourID    uuid.UUID `db:"tour_id" json:"tour_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Text      string    `db:"text" json:"text"`
	IsPublic  bool      `db:"is_public" json:"is_public"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	AuthorName  *string `db:"author_name" json:"-"`
	AuthorEmail *string `db:"author_email" json:"-"`

	Images []Image `db:"-" json:"images,omitempty"`
}

type CommentChangeFields struct {
	Text     *string
	IsPublic *bool
}
