package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

type TravelRepository interface {
	Create(ctx context.Context, travel *domain.Travel) (*domain.Travel, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.TravelChangeFields) (*domain.Travel, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Travel, error)
	// FindBySlug honours the visibility scope: private travels resolve only
	// when includePrivate is set.
	FindBySlug(ctx context.Context, slug string, includePrivate bool) (*domain.Travel, error)
	List(ctx context.Context, includePrivate bool, limit, offset int) ([]domain.Travel, error)
	Count(ctx context.Context, includePrivate bool) (int, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}
