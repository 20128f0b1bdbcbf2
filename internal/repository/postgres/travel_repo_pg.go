package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/ports"
)

type TravelRepository struct {
	db *sqlx.DB
}

func NewTravelRepo(db *sqlx.DB) *TravelRepository {
	return &TravelRepository{db: db}
}

func (r *TravelRepository) Create(ctx context.Context, travel *domain.Travel) (*domain.Travel, error) {
	const query = `
		INSERT INTO travels (name, slug, description, number_of_days, is_public)
		VALUES (:name, :slug, :description, :number_of_days, :is_public)
		RETURNING id, name, slug, description, number_of_days, is_public, created_at, updated_at
	`
	args := map[string]any{
		"name":           travel.Name,
		"slug":           travel.Slug,
		"description":    travel.Description,
		"number_of_days": travel.NumberOfDays,
		"is_public":      travel.IsPublic,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.Travel
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *TravelRepository) Update(ctx context.Context, id uuid.UUID, fields domain.TravelChangeFields) (*domain.Travel, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if fields.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", idx))
		args = append(args, *fields.Name)
		idx++
	}
	if fields.Slug != nil {
		setParts = append(setParts, fmt.Sprintf("slug = $%d", idx))
		args = append(args, *fields.Slug)
		idx++
	}
	if fields.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", idx))
		args = append(args, *fields.Description)
		idx++
	}
	if fields.NumberOfDays != nil {
		setParts = append(setParts, fmt.Sprintf("number_of_days = $%d", idx))
		args = append(args, *fields.NumberOfDays)
		idx++
	}
	if fields.IsPublic != nil {
		setParts = append(setParts, fmt.Sprintf("is_public = $%d", idx))
		args = append(args, *fields.IsPublic)
		idx++
	}

	query := fmt.Sprintf(`
		UPDATE travels
		SET %s
		WHERE id = $%d
		RETURNING id, name, slug, description, number_of_days, is_public, created_at, updated_at
	`, strings.Join(setParts, ", "), idx)
	args = append(args, id)

	var travel domain.Travel
	if err := r.db.GetContext(ctx, &travel, query, args...); err != nil {
		return nil, err
	}
	return &travel, nil
}

func (r *TravelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM travels WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *TravelRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Travel, error) {
	const query = `
		SELECT id, name, slug, description, number_of_days, is_public, created_at, updated_at
		FROM travels
		WHERE id = $1
	`
	var travel domain.Travel
	if err := r.db.GetContext(ctx, &travel, query, id); err != nil {
		return nil, err
	}
	return &travel, nil
}

func (r *TravelRepository) FindBySlug(ctx context.Context, slug string, includePrivate bool) (*domain.Travel, error) {
	const query = `
		SELECT id, name, slug, description, number_of_days, is_public, created_at, updated_at
		FROM travels
		WHERE slug = $1 AND (is_public OR $2)
	`
	var travel domain.Travel
	if err := r.db.GetContext(ctx, &travel, query, slug, includePrivate); err != nil {
		return nil, err
	}
	return &travel, nil
}

func (r *TravelRepository) List(ctx context.Context, includePrivate bool, limit, offset int) ([]domain.Travel, error) {
	const query = `
		SELECT id, name, slug, description, number_of_days, is_public, created_at, updated_at
		FROM travels
		WHERE is_public OR $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	travels := make([]domain.Travel, 0)
	if err := r.db.SelectContext(ctx, &travels, query, includePrivate, limit, offset); err != nil {
		return nil, err
	}
	return travels, nil
}

func (r *TravelRepository) Count(ctx context.Context, includePrivate bool) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM travels WHERE is_public OR $1`, includePrivate); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *TravelRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM travels WHERE slug = $1)`, slug); err != nil {
		return false, err
	}
	return exists, nil
}

var _ ports.TravelRepository = (*TravelRepository)(nil)
