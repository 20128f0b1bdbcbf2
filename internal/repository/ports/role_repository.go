package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

type RoleRepository interface {
	List(ctx context.Context) ([]domain.Role, error)
	GetOrCreate(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	FindByNames(ctx context.Context, names []domain.RoleName) ([]domain.Role, error)
	AssignToUser(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error
	RemoveFromUser(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error)
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]domain.Role, error)
}
