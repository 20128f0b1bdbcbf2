package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/ports"
)

type ImageRepository struct {
	db *sqlx.DB
}

func NewImageRepo(db *sqlx.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// CreateMany persists a whole batch inside one transaction, preserving the
// supplied path order.
func (r *ImageRepository) CreateMany(ctx context.Context, owner domain.ImageOwner, paths []string) ([]domain.Image, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO images (path, owner_kind, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, path, owner_kind, owner_id, created_at
	`

	images := make([]domain.Image, 0, len(paths))
	for _, path := range paths {
		var image domain.Image
		if err := tx.GetContext(ctx, &image, query, path, owner.Kind, owner.ID); err != nil {
			return nil, err
		}
		images = append(images, image)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *ImageRepository) UpdatePath(ctx context.Context, id uuid.UUID, path string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE images SET path = $2 WHERE id = $1`, id, path)
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

func (r *ImageRepository) ListByOwner(ctx context.Context, owner domain.ImageOwner) ([]domain.Image, error) {
	const query = `
		SELECT id, path, owner_kind, owner_id, created_at
		FROM images
		WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY created_at, id
	`
	images := make([]domain.Image, 0)
	if err := r.db.SelectContext(ctx, &images, query, owner.Kind, owner.ID); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *ImageRepository) ListByOwners(ctx context.Context, kind domain.ImageOwnerKind, ownerIDs []uuid.UUID) (map[uuid.UUID][]domain.Image, error) {
	result := make(map[uuid.UUID][]domain.Image, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, path, owner_kind, owner_id, created_at
		FROM images
		WHERE owner_kind = ? AND owner_id IN (?)
		ORDER BY owner_id, created_at, id
	`, kind, ownerIDs)
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
		var image domain.Image
		if err := rows.StructScan(&image); err != nil {
			return nil, err
		}
		result[image.OwnerID] = append(result[image.OwnerID], image)
	}
	return result, rows.Err()
}

func (r *ImageRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE id = ANY($1)`, pq.Array(ids))
	return err
}

var _ ports.ImageRepository = (*ImageRepository)(nil)
