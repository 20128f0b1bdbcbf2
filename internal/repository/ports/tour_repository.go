package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

type TourRepository interface {
	Create(ctx context.Context, tour *domain.Tour) (*domain.Tour, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.TourChangeFields) (*domain.Tour, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error)
	// ListByTravel applies the filter predicates and ordering; pagination
	// bounds are supplied by the caller after consulting CountByTravel.
	ListByTravel(ctx context.Context, travelID uuid.UUID, filter domain.TourListFilter, limit, offset int) ([]domain.Tour, error)
	CountByTravel(ctx context.Context, travelID uuid.UUID, filter domain.TourListFilter) (int, error)
}
