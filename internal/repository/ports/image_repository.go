package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

type ImageRepository interface {
	// CreateMany inserts one row per path, in the supplied order, inside a
	// single transaction: a batch either fully persists or not at all.
	CreateMany(ctx context.Context, owner domain.ImageOwner, paths []string) ([]domain.Image, error)
	UpdatePath(ctx context.Context, id uuid.UUID, path string) error
	ListByOwner(ctx context.Context, owner domain.ImageOwner) ([]domain.Image, error)
	ListByOwners(ctx context.Context, kind domain.ImageOwnerKind, ownerIDs []uuid.UUID) (map[uuid.UUID][]domain.Image, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}
