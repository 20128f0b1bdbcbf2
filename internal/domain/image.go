package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImageOwnerKind tags the polymorphic owner of an image row. Dispatch happens
// on the tag, never on runtime type inspection.
type ImageOwnerKind string

const (
	ImageOwnerTour    ImageOwnerKind = "tours"
	ImageOwnerComment ImageOwnerKind = "comments"
)

func (k ImageOwnerKind) Valid() bool {
	return k == ImageOwnerTour || k == ImageOwnerComment
}

type ImageOwner struct {
	Kind ImageOwnerKind `json:"kind"`
	ID   uuid.UUID      `json:"id"`
}

func (o ImageOwner) String() string {
	return fmt.Sprintf("%s/%s", o.Kind, o.ID)
}

// Storage key prefixes. Temp holds durably staged uploads until a batch is
// processed; permanent keys live under the per-owner base path.
const (
	TempImagePath    = "temp_images"
	TourImagePath    = "images/tours"
	CommentImagePath = "images/comments"
)

type Image struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	Path      string         `db:"path" json:"path"`
	OwnerKind ImageOwnerKind `db:"owner_kind" json:"-"`
	OwnerID   uuid.UUID      `db:"owner_id" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

func (i Image) Owner() ImageOwner {
	return ImageOwner{Kind: i.OwnerKind, ID: i.OwnerID}
}
