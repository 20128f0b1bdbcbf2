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

type CommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepo(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `
	c.id,
	c.tour_id,
	c.user_id,
	c.text,
	c.is_public,
	c.created_at,
	c.updated_at,
	u.name AS author_name,
	u.email AS author_email
`

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	const query = `
		INSERT INTO comments (tour_id, user_id, text, is_public)
		VALUES (:tour_id, :user_id, :text, :is_public)
		RETURNING id, tour_id, user_id, text, is_public, created_at, updated_at
	`
	args := map[string]any{
		"tour_id":   comment.TourID,
		"user_id":   comment.UserID,
		"text":      comment.Text,
		"is_public": comment.IsPublic,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.Comment
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *CommentRepository) Update(ctx context.Context, id uuid.UUID, fields domain.CommentChangeFields) (*domain.Comment, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if fields.Text != nil {
		setParts = append(setParts, fmt.Sprintf("text = $%d", idx))
		args = append(args, *fields.Text)
		idx++
	}
	if fields.IsPublic != nil {
		setParts = append(setParts, fmt.Sprintf("is_public = $%d", idx))
		args = append(args, *fields.IsPublic)
		idx++
	}

	query := fmt.Sprintf(`
		UPDATE comments
		SET %s
		WHERE id = $%d
		RETURNING id, tour_id, user_id, text, is_public, created_at, updated_at
	`, strings.Join(setParts, ", "), idx)
	args = append(args, id)

	var comment domain.Comment
	if err := r.db.GetContext(ctx, &comment, query, args...); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
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

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID, includePrivate bool) (*domain.Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1 AND (c.is_public OR $2)
	`, commentColumns)

	var comment domain.Comment
	if err := r.db.GetContext(ctx, &comment, query, id, includePrivate); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) List(ctx context.Context, includePrivate bool, limit, offset int) ([]domain.Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.is_public OR $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3
	`, commentColumns)

	comments := make([]domain.Comment, 0)
	if err := r.db.SelectContext(ctx, &comments, query, includePrivate, limit, offset); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) Count(ctx context.Context, includePrivate bool) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM comments WHERE is_public OR $1`, includePrivate); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *CommentRepository) ListByTours(ctx context.Context, tourIDs []uuid.UUID, includePrivate bool) (map[uuid.UUID][]domain.Comment, error) {
	result := make(map[uuid.UUID][]domain.Comment, len(tourIDs))
	if len(tourIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.tour_id IN (?) AND (c.is_public OR ?)
		ORDER BY c.tour_id, c.created_at, c.id
	`, commentColumns), tourIDs, includePrivate)
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
		var comment domain.Comment
		if err := rows.StructScan(&comment); err != nil {
			return nil, err
		}
		result[comment.TourID] = append(result[comment.TourID], comment)
	}
	return result, rows.Err()
}

var _ ports.CommentRepository = (*CommentRepository)(nil)
