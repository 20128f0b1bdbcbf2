package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/ports"
)

var (
	ErrTourNotFound   = errors.New("tour not found")
	ErrTourValidation = errors.New("tour validation failed")
)

type TourCreateInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Price     int64
	Images    []FileUpload
}

type TourUpdateInput struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	Price     *int64

	NewImages     []FileUpload
	ReplaceImages []ImageReplacement
}

type TourService struct {
	tours    ports.TourRepository
	travels  ports.TravelRepository
	comments ports.CommentRepository
	images   ports.ImageRepository
	media    *ImageService
}

func NewTourService(
	tours ports.TourRepository,
	travels ports.TravelRepository,
	comments ports.CommentRepository,
	images ports.ImageRepository,
	media *ImageService,
) *TourService {
	return &TourService{
		tours:    tours,
		travels:  travels,
		comments: comments,
		images:   images,
		media:    media,
	}
}

// ListByTravelSlug resolves the travel under the caller's scope and returns
// one page of its tours with the filter applied. Unknown sort fields are
// rejected before any query runs.
func (s *TourService) ListByTravelSlug(ctx context.Context, caller *domain.Caller, slug string, filter domain.TourListFilter) ([]domain.Tour, domain.PageMeta, error) {
	travel, err := s.travels.FindBySlug(ctx, slug, caller.CanViewPrivate())
	if err != nil {
		if isNotFound(err) {
			return nil, domain.PageMeta{}, ErrTravelNotFound
		}
		return nil, domain.PageMeta{}, err
	}

	normalized, err := normalizeTourFilter(filter)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	total, err := s.tours.CountByTravel(ctx, travel.ID, normalized)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	meta := domain.NewPageMeta(total, domain.DefaultPerPage, normalized.Page)

	tours, err := s.tours.ListByTravel(ctx, travel.ID, normalized, meta.PerPage, meta.Offset())
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	return tours, meta, nil
}

// Show loads one tour with its images and visible comments. A tour under a
// private travel resolves only for qualified callers; everyone else gets the
// same not-found as a nonexistent id.
func (s *TourService) Show(ctx context.Context, caller *domain.Caller, id uuid.UUID) (*domain.Tour, error) {
	tour, err := s.tours.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}

	includePrivate := caller.CanViewPrivate()
	travel, err := s.travels.FindByID(ctx, tour.TravelID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}
	if !travel.IsPublic && !includePrivate {
		return nil, ErrTourNotFound
	}

	images, err := s.images.ListByOwner(ctx, domain.ImageOwner{Kind: domain.ImageOwnerTour, ID: tour.ID})
	if err != nil {
		return nil, err
	}
	tour.Images = images

	commentMap, err := s.comments.ListByTours(ctx, []uuid.UUID{tour.ID}, includePrivate)
	if err != nil {
		return nil, err
	}
	comments := commentMap[tour.ID]
	if len(comments) > 0 {
		if err := s.attachCommentImages(ctx, comments); err != nil {
			return nil, err
		}
	}
	tour.Comments = comments

	return tour, nil
}

// ShowInTravel is Show scoped to a travel slug. A tour that exists but hangs
// off a different travel is a not-found, not a redirect.
func (s *TourService) ShowInTravel(ctx context.Context, caller *domain.Caller, slug string, id uuid.UUID) (*domain.Tour, error) {
	travel, err := s.travels.FindBySlug(ctx, slug, caller.CanViewPrivate())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTravelNotFound
		}
		return nil, err
	}

	tour, err := s.Show(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if tour.TravelID != travel.ID {
		return nil, ErrTourNotFound
	}
	return tour, nil
}

// Store creates a tour under a travel. Images are processed inline so the
// created payload already references the permanent objects.
func (s *TourService) Store(ctx context.Context, travelID uuid.UUID, input TourCreateInput) (*domain.Tour, error) {
	if err := validateTourInput(input.Name, input.StartDate, input.EndDate, input.Price); err != nil {
		return nil, err
	}
	if _, err := s.travels.FindByID(ctx, travelID); err != nil {
		if isNotFound(err) {
			return nil, ErrTravelNotFound
		}
		return nil, err
	}

	tour, err := s.tours.Create(ctx, &domain.Tour{
		TravelID:  travelID,
		Name:      input.Name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Price:     input.Price,
	})
	if err != nil {
		return nil, err
	}

	owner := domain.ImageOwner{Kind: domain.ImageOwnerTour, ID: tour.ID}
	if err := s.media.Save(ctx, owner, input.Images, false); err != nil {
		return nil, err
	}

	images, err := s.images.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	tour.Images = images
	return tour, nil
}

// Update mutates the tour fields and defers any image work to the worker.
func (s *TourService) Update(ctx context.Context, id uuid.UUID, input TourUpdateInput) (*domain.Tour, error) {
	current, err := s.tours.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}

	startDate := current.StartDate
	if input.StartDate != nil {
		startDate = *input.StartDate
	}
	endDate := current.EndDate
	if input.EndDate != nil {
		endDate = *input.EndDate
	}
	if !endDate.After(startDate) {
		return nil, fmt.Errorf("%w: end_date must be after start_date", ErrTourValidation)
	}
	if input.Name != nil && *input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrTourValidation)
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrTourValidation)
	}

	tour, err := s.tours.Update(ctx, id, domain.TourChangeFields{
		Name:      input.Name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Price:     input.Price,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}

	owner := domain.ImageOwner{Kind: domain.ImageOwnerTour, ID: tour.ID}
	if len(input.ReplaceImages) > 0 {
		if err := s.media.Update(ctx, owner, input.ReplaceImages, true); err != nil {
			return nil, err
		}
	}
	if len(input.NewImages) > 0 {
		if err := s.media.Save(ctx, owner, input.NewImages, true); err != nil {
			return nil, err
		}
	}
	return tour, nil
}

// Destroy removes the tour with every attachment it transitively owns:
// its own images and the images of its comments. Comment rows go away with
// the tour via the foreign key.
func (s *TourService) Destroy(ctx context.Context, id uuid.UUID) error {
	tour, err := s.tours.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrTourNotFound
		}
		return err
	}

	commentMap, err := s.comments.ListByTours(ctx, []uuid.UUID{tour.ID}, true)
	if err != nil {
		return err
	}
	for _, comment := range commentMap[tour.ID] {
		if err := s.media.DeleteAllFor(ctx, domain.ImageOwner{Kind: domain.ImageOwnerComment, ID: comment.ID}); err != nil {
			return err
		}
	}
	if err := s.media.DeleteAllFor(ctx, domain.ImageOwner{Kind: domain.ImageOwnerTour, ID: tour.ID}); err != nil {
		return err
	}

	if err := s.tours.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrTourNotFound
		}
		return err
	}
	return nil
}

// DestroyImages drops a subset of the tour's images.
func (s *TourService) DestroyImages(ctx context.Context, id uuid.UUID, imageIDs []uuid.UUID) error {
	if _, err := s.tours.FindByID(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrTourNotFound
		}
		return err
	}
	return s.media.Delete(ctx, domain.ImageOwner{Kind: domain.ImageOwnerTour, ID: id}, imageIDs)
}

func (s *TourService) attachCommentImages(ctx context.Context, comments []domain.Comment) error {
	ids := make([]uuid.UUID, 0, len(comments))
	for _, comment := range comments {
		ids = append(ids, comment.ID)
	}
	imageMap, err := s.images.ListByOwners(ctx, domain.ImageOwnerComment, ids)
	if err != nil {
		return err
	}
	for i := range comments {
		comments[i].Images = imageMap[comments[i].ID]
	}
	return nil
}

// normalizeTourFilter fills the sort defaults and rejects values outside the
// recognised enums. Unrecognised query parameters never reach this point;
// the transport layer drops them.
func normalizeTourFilter(filter domain.TourListFilter) (domain.TourListFilter, error) {
	result := filter
	switch result.SortBy {
	case "":
		result.SortBy = domain.TourSortStartDate
	case domain.TourSortPrice, domain.TourSortStartDate, domain.TourSortEndDate:
	default:
		return domain.TourListFilter{}, fmt.Errorf("%w: unknown sort field %q", ErrTourValidation, result.SortBy)
	}
	switch result.SortOrder {
	case "":
		result.SortOrder = domain.SortOrderAsc
	case domain.SortOrderAsc, domain.SortOrderDesc:
	default:
		return domain.TourListFilter{}, fmt.Errorf("%w: unknown sort order %q", ErrTourValidation, result.SortOrder)
	}
	if result.PriceFrom != nil && *result.PriceFrom < 0 {
		return domain.TourListFilter{}, fmt.Errorf("%w: price_from must not be negative", ErrTourValidation)
	}
	if result.PriceTo != nil && *result.PriceTo < 0 {
		return domain.TourListFilter{}, fmt.Errorf("%w: price_to must not be negative", ErrTourValidation)
	}
	return result, nil
}

func validateTourInput(name string, startDate, endDate time.Time, price int64) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrTourValidation)
	}
	if startDate.IsZero() || endDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", ErrTourValidation)
	}
	if !endDate.After(startDate) {
		return fmt.Errorf("%w: end_date must be after start_date", ErrTourValidation)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrTourValidation)
	}
	return nil
}
