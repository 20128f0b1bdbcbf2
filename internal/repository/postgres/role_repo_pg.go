package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/ports"
)

type RoleRepository struct {
	db *sqlx.DB
}

func NewRoleRepo(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	const query = `
		SELECT id, name, created_at, updated_at
		FROM roles
		ORDER BY name
	`
	roles := make([]domain.Role, 0)
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) GetOrCreate(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	const query = `
		INSERT INTO roles (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET updated_at = roles.updated_at
		RETURNING id, name, created_at, updated_at
	`
	var role domain.Role
	if err := r.db.GetContext(ctx, &role, query, name); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) FindByNames(ctx context.Context, names []domain.RoleName) ([]domain.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, name, created_at, updated_at
		FROM roles
		WHERE name IN (?)
		ORDER BY name
	`, names)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	roles := make([]domain.Role, 0, len(names))
	if err := r.db.SelectContext(ctx, &roles, query, args...); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) AssignToUser(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	const query = `
		INSERT INTO role_user (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	for _, roleID := range roleIDs {
		if _, err := r.db.ExecContext(ctx, query, userID, roleID); err != nil {
			return err
		}
	}
	return nil
}

func (r *RoleRepository) RemoveFromUser(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	if len(roleIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM role_user WHERE user_id = $1 AND role_id = ANY($2)`, userID, pq.Array(roleIDs))
	return err
}

func (r *RoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	const query = `
		SELECT r.id, r.name, r.created_at, r.updated_at
		FROM roles r
		JOIN role_user ru ON ru.role_id = r.id
		WHERE ru.user_id = $1
		ORDER BY r.name
	`
	roles := make([]domain.Role, 0)
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]domain.Role, error) {
	result := make(map[uuid.UUID][]domain.Role, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT r.id, r.name, r.created_at, r.updated_at, ru.user_id AS user_id
		FROM roles r
		JOIN role_user ru ON ru.role_id = r.id
		WHERE ru.user_id IN (?)
		ORDER BY ru.user_id, r.name
	`, userIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row struct {
			domain.Role
			UserID uuid.UUID `db:"user_id"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		result[row.UserID] = append(result[row.UserID], row.Role)
	}
	return result, rows.Err()
}

var _ ports.RoleRepository = (*RoleRepository)(nil)
