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

type TourRepository struct {
	db *sqlx.DB
}

func NewTourRepo(db *sqlx.DB) *TourRepository {
	return &TourRepository{db: db}
}

func (r *TourRepository) Create(ctx context.Context, tour *domain.Tour) (*domain.Tour, error) {
	const query = `
		INSERT INTO tours (travel_id, name, start_date, end_date, price)
		VALUES (:travel_id, :name, :start_date, :end_date, :price)
		RETURNING id, travel_id, name, start_date, end_date, price, created_at, updated_at
	`
	args := map[string]any{
		"travel_id":  tour.TravelID,
		"name":       tour.Name,
		"start_date": tour.StartDate,
		"end_date":   tour.EndDate,
		"price":      tour.Price,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.Tour
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *TourRepository) Update(ctx context.Context, id uuid.UUID, fields domain.TourChangeFields) (*domain.Tour, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if fields.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", idx))
		args = append(args, *fields.Name)
		idx++
	}
	if fields.StartDate != nil {
		setParts = append(setParts, fmt.Sprintf("start_date = $%d", idx))
		args = append(args, *fields.StartDate)
		idx++
	}
	if fields.EndDate != nil {
		setParts = append(setParts, fmt.Sprintf("end_date = $%d", idx))
		args = append(args, *fields.EndDate)
		idx++
	}
	if fields.Price != nil {
		setParts = append(setParts, fmt.Sprintf("price = $%d", idx))
		args = append(args, *fields.Price)
		idx++
	}

	query := fmt.Sprintf(`
		UPDATE tours
		SET %s
		WHERE id = $%d
		RETURNING id, travel_id, name, start_date, end_date, price, created_at, updated_at
	`, strings.Join(setParts, ", "), idx)
	args = append(args, id)

	var tour domain.Tour
	if err := r.db.GetContext(ctx, &tour, query, args...); err != nil {
		return nil, err
	}
	return &tour, nil
}

func (r *TourRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = $1`, id)
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

func (r *TourRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error) {
	const query = `
		SELECT id, travel_id, name, start_date, end_date, price, created_at, updated_at
		FROM tours
		WHERE id = $1
	`
	var tour domain.Tour
	if err := r.db.GetContext(ctx, &tour, query, id); err != nil {
		return nil, err
	}
	return &tour, nil
}

// tourFilterClauses translates the recognised filter parameters into WHERE
// predicates. Nil fields contribute nothing; boundaries are inclusive.
func tourFilterClauses(travelID uuid.UUID, filter domain.TourListFilter) ([]string, []any) {
	clauses := []string{"travel_id = $1"}
	args := []any{travelID}
	idx := 2

	if filter.StartDate != nil {
		clauses = append(clauses, fmt.Sprintf("start_date >= $%d", idx))
		args = append(args, *filter.StartDate)
		idx++
	}
	if filter.EndDate != nil {
		clauses = append(clauses, fmt.Sprintf("end_date <= $%d", idx))
		args = append(args, *filter.EndDate)
		idx++
	}
	if filter.PriceFrom != nil {
		clauses = append(clauses, fmt.Sprintf("price >= $%d", idx))
		args = append(args, *filter.PriceFrom)
		idx++
	}
	if filter.PriceTo != nil {
		clauses = append(clauses, fmt.Sprintf("price <= $%d", idx))
		args = append(args, *filter.PriceTo)
		idx++
	}
	return clauses, args
}

func (r *TourRepository) ListByTravel(ctx context.Context, travelID uuid.UUID, filter domain.TourListFilter, limit, offset int) ([]domain.Tour, error) {
	clauses, args := tourFilterClauses(travelID, filter)
	where := "WHERE " + strings.Join(clauses, " AND ")

	// Sort enum membership is validated upstream; anything else falls back
	// to the defaults.
	sortCol := "start_date"
	switch filter.SortBy {
	case domain.TourSortPrice:
		sortCol = "price"
	case domain.TourSortEndDate:
		sortCol = "end_date"
	}
	order := "ASC"
	if filter.SortOrder == domain.SortOrderDesc {
		order = "DESC"
	}

	idx := len(args) + 1
	args = append(args, limit, offset)

	// start_date is always appended as a tie-break so page boundaries stay
	// stable regardless of the requested sort.
	query := fmt.Sprintf(`
		SELECT id, travel_id, name, start_date, end_date, price, created_at, updated_at
		FROM tours
		%s
		ORDER BY %s %s, start_date ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, where, sortCol, order, idx, idx+1)

	tours := make([]domain.Tour, 0)
	if err := r.db.SelectContext(ctx, &tours, query, args...); err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *TourRepository) CountByTravel(ctx context.Context, travelID uuid.UUID, filter domain.TourListFilter) (int, error) {
	clauses, args := tourFilterClauses(travelID, filter)
	query := "SELECT COUNT(*) FROM tours WHERE " + strings.Join(clauses, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

var _ ports.TourRepository = (*TourRepository)(nil)
