package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

func date(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func newTestTourService() (*TourService, *memTravelRepo, *memTourRepo, *memCommentRepo, *memImageRepo) {
	travels := &memTravelRepo{}
	tours := &memTourRepo{}
	comments := &memCommentRepo{}
	images := &memImageRepo{}
	media := NewImageService(images, newMemStorage(), nil, &funcProcessor{fn: func(data []byte, contentType string) ([]byte, error) {
		return data, nil
	}}, ImageServiceConfig{})
	svc := NewTourService(tours, travels, comments, images, media)
	return svc, travels, tours, comments, images
}

func seedTravel(travels *memTravelRepo, name, slug string, public bool) *domain.Travel {
	travel, _ := travels.Create(context.Background(), &domain.Travel{
		Name:         name,
		Slug:         slug,
		NumberOfDays: 7,
		IsPublic:     public,
	})
	return travel
}

func adminCaller() *domain.Caller {
	return &domain.Caller{ID: uuid.New(), Roles: []domain.RoleName{domain.RoleAdmin}}
}

func TestListByTravelSlugDefaultsSortAndPagination(t *testing.T) {
	svc, travels, tours, _, _ := newTestTourService()
	travel := seedTravel(travels, "Jordan 360", "jordan-360", true)

	for i := 0; i < 20; i++ {
		tours.Create(context.Background(), &domain.Tour{
			TravelID:  travel.ID,
			Name:      "Tour",
			StartDate: date("2026-01-01").AddDate(0, 0, i),
			EndDate:   date("2026-01-08").AddDate(0, 0, i),
			Price:     1000,
		})
	}

	result, meta, err := svc.ListByTravelSlug(context.Background(), nil, "jordan-360", domain.TourListFilter{Page: 2})
	if err != nil {
		t.Fatalf("ListByTravelSlug returned error: %v", err)
	}

	if meta.Total != 20 || meta.PerPage != domain.DefaultPerPage || meta.CurrentPage != 2 || meta.LastPage != 2 {
		t.Fatalf("unexpected page meta: %+v", meta)
	}
	if len(result) != 5 {
		t.Fatalf("expected 5 tours on page 2, got %d", len(result))
	}
	if tours.lastFilter.SortBy != domain.TourSortStartDate || tours.lastFilter.SortOrder != domain.SortOrderAsc {
		t.Fatalf("expected defaulted sort, got %s %s", tours.lastFilter.SortBy, tours.lastFilter.SortOrder)
	}
	if tours.lastLimit != domain.DefaultPerPage || tours.lastOffset != domain.DefaultPerPage {
		t.Fatalf("expected limit %d offset %d, got %d %d", domain.DefaultPerPage, domain.DefaultPerPage, tours.lastLimit, tours.lastOffset)
	}
}

func TestListByTravelSlugPageOutOfRangeClamps(t *testing.T) {
	svc, travels, tours, _, _ := newTestTourService()
	travel := seedTravel(travels, "Iceland", "iceland", true)
	tours.Create(context.Background(), &domain.Tour{
		TravelID:  travel.ID,
		Name:      "June",
		StartDate: date("2026-06-01"),
		EndDate:   date("2026-06-08"),
		Price:     100,
	})

	result, meta, err := svc.ListByTravelSlug(context.Background(), nil, "iceland", domain.TourListFilter{Page: 99})
	if err != nil {
		t.Fatalf("ListByTravelSlug returned error: %v", err)
	}
	if meta.CurrentPage != 1 || meta.LastPage != 1 {
		t.Fatalf("expected page clamped to 1, got %+v", meta)
	}
	if len(result) != 1 {
		t.Fatalf("expected the single tour, got %d", len(result))
	}
}

func TestListByTravelSlugRejectsUnknownSortField(t *testing.T) {
	svc, travels, _, _, _ := newTestTourService()
	seedTravel(travels, "Iceland", "iceland", true)

	_, _, err := svc.ListByTravelSlug(context.Background(), nil, "iceland", domain.TourListFilter{SortBy: "bogus"})
	if !errors.Is(err, ErrTourValidation) {
		t.Fatalf("expected ErrTourValidation, got %v", err)
	}
}

func TestListByTravelSlugPriceBoundsAreInclusive(t *testing.T) {
	svc, travels, tours, _, _ := newTestTourService()
	travel := seedTravel(travels, "Iceland", "iceland", true)

	prices := []int64{9921, 9922, 10000, 10001}
	for _, price := range prices {
		tours.Create(context.Background(), &domain.Tour{
			TravelID:  travel.ID,
			Name:      "Tour",
			StartDate: date("2026-06-01"),
			EndDate:   date("2026-06-08"),
			Price:     price,
		})
	}

	from, to := int64(9922), int64(10000)
	result, _, err := svc.ListByTravelSlug(context.Background(), nil, "iceland", domain.TourListFilter{
		PriceFrom: &from,
		PriceTo:   &to,
	})
	if err != nil {
		t.Fatalf("ListByTravelSlug returned error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected tours priced exactly at the bounds to be included, got %d", len(result))
	}
	for _, tour := range result {
		if tour.Price < from || tour.Price > to {
			t.Fatalf("tour price %d outside inclusive bounds", tour.Price)
		}
	}
}

func TestListByTravelSlugPrivateTravelHiddenFromPublic(t *testing.T) {
	svc, travels, _, _, _ := newTestTourService()
	seedTravel(travels, "Secret", "secret", false)

	if _, _, err := svc.ListByTravelSlug(context.Background(), nil, "secret", domain.TourListFilter{}); !errors.Is(err, ErrTravelNotFound) {
		t.Fatalf("expected ErrTravelNotFound for anonymous caller, got %v", err)
	}

	if _, _, err := svc.ListByTravelSlug(context.Background(), adminCaller(), "secret", domain.TourListFilter{}); err != nil {
		t.Fatalf("expected admin to resolve the private travel, got %v", err)
	}
}

func TestShowHidesPrivateCommentsFromPublic(t *testing.T) {
	svc, travels, tours, comments, _ := newTestTourService()
	travel := seedTravel(travels, "Iceland", "iceland", true)
	tour, _ := tours.Create(context.Background(), &domain.Tour{
		TravelID:  travel.ID,
		Name:      "June",
		StartDate: date("2026-06-01"),
		EndDate:   date("2026-06-08"),
		Price:     100,
	})

	comments.Create(context.Background(), &domain.Comment{TourID: tour.ID, UserID: uuid.New(), Text: "published", IsPublic: true})
	comments.Create(context.Background(), &domain.Comment{TourID: tour.ID, UserID: uuid.New(), Text: "pending", IsPublic: false})

	public, err := svc.Show(context.Background(), nil, tour.ID)
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}
	if len(public.Comments) != 1 || public.Comments[0].Text != "published" {
		t.Fatalf("expected only the published comment, got %+v", public.Comments)
	}

	privileged, err := svc.Show(context.Background(), adminCaller(), tour.ID)
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}
	if len(privileged.Comments) != 2 {
		t.Fatalf("expected both comments for admin, got %d", len(privileged.Comments))
	}
}

func TestShowTourUnderPrivateTravelIsNotFound(t *testing.T) {
	svc, travels, tours, _, _ := newTestTourService()
	travel := seedTravel(travels, "Secret", "secret", false)
	tour, _ := tours.Create(context.Background(), &domain.Tour{
		TravelID:  travel.ID,
		Name:      "Hidden",
		StartDate: date("2026-06-01"),
		EndDate:   date("2026-06-08"),
		Price:     100,
	})

	if _, err := svc.Show(context.Background(), nil, tour.ID); !errors.Is(err, ErrTourNotFound) {
		t.Fatalf("expected ErrTourNotFound, got %v", err)
	}
	if _, err := svc.Show(context.Background(), adminCaller(), tour.ID); err != nil {
		t.Fatalf("expected admin to see the tour, got %v", err)
	}
}

func TestStoreValidatesDates(t *testing.T) {
	svc, travels, _, _, _ := newTestTourService()
	travel := seedTravel(travels, "Iceland", "iceland", true)

	_, err := svc.Store(context.Background(), travel.ID, TourCreateInput{
		Name:      "Backwards",
		StartDate: date("2026-06-08"),
		EndDate:   date("2026-06-01"),
		Price:     100,
	})
	if !errors.Is(err, ErrTourValidation) {
		t.Fatalf("expected ErrTourValidation, got %v", err)
	}

	// A zero-length tour is invalid too; end_date must be strictly later.
	_, err = svc.Store(context.Background(), travel.ID, TourCreateInput{
		Name:      "Same day",
		StartDate: date("2026-06-01"),
		EndDate:   date("2026-06-01"),
		Price:     100,
	})
	if !errors.Is(err, ErrTourValidation) {
		t.Fatalf("expected ErrTourValidation for equal dates, got %v", err)
	}
}

func TestUpdateRejectsEqualDates(t *testing.T) {
	svc, travels, tours, _, _ := newTestTourService()
	travel := seedTravel(travels, "Iceland", "iceland", true)

	tour, _ := tours.Create(context.Background(), &domain.Tour{
		TravelID:  travel.ID,
		Name:      "Iceland June",
		StartDate: date("2026-06-01"),
		EndDate:   date("2026-06-08"),
		Price:     100,
	})

	sameDay := date("2026-06-08")
	if _, err := svc.Update(context.Background(), tour.ID, TourUpdateInput{StartDate: &sameDay}); !errors.Is(err, ErrTourValidation) {
		t.Fatalf("expected ErrTourValidation for equal dates, got %v", err)
	}
}

func TestDestroyRemovesTourAndAttachments(t *testing.T) {
	svc, travels, tours, comments, images := newTestTourService()
	travel := seedTravel(travels, "Iceland", "iceland", true)
	tour, _ := tours.Create(context.Background(), &domain.Tour{
		TravelID:  travel.ID,
		Name:      "June",
		StartDate: date("2026-06-01"),
		EndDate:   date("2026-06-08"),
		Price:     100,
	})
	comment, _ := comments.Create(context.Background(), &domain.Comment{TourID: tour.ID, UserID: uuid.New(), Text: "hello"})
	images.CreateMany(context.Background(), domain.ImageOwner{Kind: domain.ImageOwnerTour, ID: tour.ID}, []string{"images/tours/x/a.jpg"})
	images.CreateMany(context.Background(), domain.ImageOwner{Kind: domain.ImageOwnerComment, ID: comment.ID}, []string{"images/comments/y/b.jpg"})

	if err := svc.Destroy(context.Background(), tour.ID); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}

	if _, err := tours.FindByID(context.Background(), tour.ID); err == nil {
		t.Fatalf("expected tour to be gone")
	}
	if rows, _ := images.ListByOwner(context.Background(), domain.ImageOwner{Kind: domain.ImageOwnerTour, ID: tour.ID}); len(rows) != 0 {
		t.Fatalf("expected tour images to be gone, got %d", len(rows))
	}
	if rows, _ := images.ListByOwner(context.Background(), domain.ImageOwner{Kind: domain.ImageOwnerComment, ID: comment.ID}); len(rows) != 0 {
		t.Fatalf("expected comment images to be gone, got %d", len(rows))
	}
}

func TestShowInTravelRejectsMismatchedParent(t *testing.T) {
	svc, travels, tours, _, _ := newTestTourService()
	first := seedTravel(travels, "Jordan 360", "jordan-360", true)
	seedTravel(travels, "Iceland", "iceland", true)

	tour, _ := tours.Create(context.Background(), &domain.Tour{
		TravelID:  first.ID,
		Name:      "Petra walk",
		StartDate: date("2026-03-01"),
		EndDate:   date("2026-03-08"),
		Price:     5000,
	})

	if _, err := svc.ShowInTravel(context.Background(), nil, "iceland", tour.ID); !errors.Is(err, ErrTourNotFound) {
		t.Fatalf("expected ErrTourNotFound under the wrong travel, got %v", err)
	}

	found, err := svc.ShowInTravel(context.Background(), nil, "jordan-360", tour.ID)
	if err != nil {
		t.Fatalf("ShowInTravel returned error: %v", err)
	}
	if found.ID != tour.ID {
		t.Fatalf("expected the tour back, got %v", found.ID)
	}
}
