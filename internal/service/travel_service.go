package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/ports"
	"github.com/ArtemDidyk-Dev/travel-api/internal/util"
)

var (
	ErrTravelNotFound   = errors.New("travel not found")
	ErrTravelValidation = errors.New("travel validation failed")
	ErrTravelExists     = errors.New("travel already exists")
)

type TravelCreateInput struct {
	Name         string
	Description  string
	NumberOfDays int
	IsPublic     bool
}

type TravelUpdateInput struct {
	Name         *string
	Description  *string
	NumberOfDays *int
	IsPublic     *bool
}

type TravelService struct {
	travels ports.TravelRepository
}

func NewTravelService(travels ports.TravelRepository) *TravelService {
	return &TravelService{travels: travels}
}

// List returns one page of travels under the caller's visibility scope.
// Pages out of range clamp instead of erroring.
func (s *TravelService) List(ctx context.Context, caller *domain.Caller, page int) ([]domain.Travel, domain.PageMeta, error) {
	includePrivate := caller.CanViewPrivate()

	total, err := s.travels.Count(ctx, includePrivate)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	meta := domain.NewPageMeta(total, domain.DefaultPerPage, page)

	travels, err := s.travels.List(ctx, includePrivate, meta.PerPage, meta.Offset())
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	return travels, meta, nil
}

func (s *TravelService) GetBySlug(ctx context.Context, caller *domain.Caller, slug string) (*domain.Travel, error) {
	travel, err := s.travels.FindBySlug(ctx, slug, caller.CanViewPrivate())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTravelNotFound
		}
		return nil, err
	}
	return travel, nil
}

func (s *TravelService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Travel, error) {
	travel, err := s.travels.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTravelNotFound
		}
		return nil, err
	}
	return travel, nil
}

func (s *TravelService) Create(ctx context.Context, input TravelCreateInput) (*domain.Travel, error) {
	if err := validateTravelName(input.Name); err != nil {
		return nil, err
	}
	if err := validateNumberOfDays(input.NumberOfDays); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	travel, err := s.travels.Create(ctx, &domain.Travel{
		Name:         input.Name,
		Slug:         slug,
		Description:  input.Description,
		NumberOfDays: input.NumberOfDays,
		IsPublic:     input.IsPublic,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTravelExists
		}
		return nil, err
	}
	return travel, nil
}

func (s *TravelService) Update(ctx context.Context, id uuid.UUID, input TravelUpdateInput) (*domain.Travel, error) {
	fields := domain.TravelChangeFields{
		Description:  input.Description,
		NumberOfDays: input.NumberOfDays,
		IsPublic:     input.IsPublic,
	}
	if input.NumberOfDays != nil {
		if err := validateNumberOfDays(*input.NumberOfDays); err != nil {
			return nil, err
		}
	}
	if input.Name != nil {
		if err := validateTravelName(*input.Name); err != nil {
			return nil, err
		}
		current, err := s.travels.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrTravelNotFound
			}
			return nil, err
		}
		fields.Name = input.Name
		// Renaming regenerates the slug; an unchanged name keeps the
		// published URL stable.
		if *input.Name != current.Name {
			slug, slugErr := s.uniqueSlug(ctx, *input.Name)
			if slugErr != nil {
				return nil, slugErr
			}
			fields.Slug = &slug
		}
	}

	travel, err := s.travels.Update(ctx, id, fields)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTravelNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrTravelExists
		}
		return nil, err
	}
	return travel, nil
}

func (s *TravelService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.travels.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrTravelNotFound
		}
		return err
	}
	return nil
}

// uniqueSlug derives the slug from the name and suffixes a counter until it
// is free. The unique index still backstops concurrent creates.
func (s *TravelService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := util.Slugify(name)
	if base == "" {
		return "", fmt.Errorf("%w: name yields an empty slug", ErrTravelValidation)
	}

	slug := base
	for attempt := 2; ; attempt++ {
		taken, err := s.travels.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, attempt)
	}
}

func validateTravelName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrTravelValidation)
	}
	return nil
}

func validateNumberOfDays(days int) error {
	if days < 1 {
		return fmt.Errorf("%w: number_of_days must be at least 1", ErrTravelValidation)
	}
	return nil
}
