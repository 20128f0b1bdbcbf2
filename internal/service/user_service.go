package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/ports"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserValidation = errors.New("user validation failed")
)

// UserService is the ADMIN-only back office over accounts and role grants.
type UserService struct {
	users ports.UserRepository
	roles ports.RoleRepository
}

func NewUserService(users ports.UserRepository, roles ports.RoleRepository) *UserService {
	return &UserService{users: users, roles: roles}
}

func (s *UserService) List(ctx context.Context, page int) ([]domain.User, domain.PageMeta, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	meta := domain.NewPageMeta(total, domain.DefaultPerPage, page)

	users, err := s.users.List(ctx, meta.PerPage, meta.Offset())
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	roleMap, err := s.roles.ListByUsers(ctx, ids)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	for i := range users {
		users[i].Roles = roleMap[users[i].ID]
	}
	return users, meta, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

// SetRoles makes the user's grants exactly the given set. Unknown role names
// fail validation before anything changes.
func (s *UserService) SetRoles(ctx context.Context, id uuid.UUID, names []domain.RoleName) (*domain.User, error) {
	for _, name := range names {
		if !name.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrUserValidation, name)
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	desired := make(map[domain.RoleName]uuid.UUID, len(names))
	for _, name := range names {
		role, roleErr := s.roles.GetOrCreate(ctx, name)
		if roleErr != nil {
			return nil, roleErr
		}
		desired[role.Name] = role.ID
	}

	current, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	currentSet := make(map[domain.RoleName]uuid.UUID, len(current))
	for _, role := range current {
		currentSet[role.Name] = role.ID
	}

	var toAdd, toRemove []uuid.UUID
	for name, roleID := range desired {
		if _, ok := currentSet[name]; !ok {
			toAdd = append(toAdd, roleID)
		}
	}
	for name, roleID := range currentSet {
		if _, ok := desired[name]; !ok {
			toRemove = append(toRemove, roleID)
		}
	}

	if len(toAdd) > 0 {
		if err := s.roles.AssignToUser(ctx, user.ID, toAdd); err != nil {
			return nil, err
		}
	}
	if len(toRemove) > 0 {
		if err := s.roles.RemoveFromUser(ctx, user.ID, toRemove); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *UserService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}
