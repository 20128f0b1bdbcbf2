package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.CommentChangeFields) (*domain.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID, includePrivate bool) (*domain.Comment, error)
	List(ctx context.Context, includePrivate bool, limit, offset int) ([]domain.Comment, error)
	Count(ctx context.Context, includePrivate bool) (int, error)
	// ListByTours batches comment lookup for tour presentation, keyed by tour id.
	ListByTours(ctx context.Context, tourIDs []uuid.UUID, includePrivate bool) (map[uuid.UUID][]domain.Comment, error)
}
