package http

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

func testResolver(key string) string {
	return "https://cdn.test/" + key
}

func TestTravelResponseHidesIsPublicFromUnqualifiedCallers(t *testing.T) {
	travel := domain.Travel{ID: uuid.New(), Name: "Iceland", Slug: "iceland", NumberOfDays: 7, IsPublic: false}

	anon := toTravelResponse(travel, nil)
	if anon.IsPublic != nil {
		t.Fatalf("expected is_public to be absent for anonymous callers")
	}

	user := toTravelResponse(travel, &domain.Caller{Roles: []domain.RoleName{domain.RoleUser}})
	if user.IsPublic != nil {
		t.Fatalf("expected is_public to be absent for plain users")
	}

	editor := toTravelResponse(travel, &domain.Caller{Roles: []domain.RoleName{domain.RoleEditor}})
	if editor.IsPublic == nil || *editor.IsPublic != false {
		t.Fatalf("expected is_public=false for editors, got %v", editor.IsPublic)
	}
}

func TestTravelResponseDerivesNights(t *testing.T) {
	travel := domain.Travel{Name: "Iceland", NumberOfDays: 7}
	resp := toTravelResponse(travel, nil)
	if resp.NumberOfNights != 6 {
		t.Fatalf("NumberOfNights = %d, want 6", resp.NumberOfNights)
	}
}

func TestTourResponseRendersPriceAndDates(t *testing.T) {
	tour := domain.Tour{
		ID:        uuid.New(),
		Name:      "Iceland June",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC),
		Price:     9922,
	}
	resp := toTourResponse(tour, nil, testResolver)
	if resp.Price != "99.22" {
		t.Fatalf("Price = %q, want 99.22", resp.Price)
	}
	if resp.StartDate != "2026-06-01" || resp.EndDate != "2026-06-08" {
		t.Fatalf("unexpected dates: %q %q", resp.StartDate, resp.EndDate)
	}
}

func TestCommentResponseFormatsCreatedAt(t *testing.T) {
	author := "Alice"
	comment := domain.Comment{
		ID:         uuid.New(),
		Text:       "Great trip",
		CreatedAt:  time.Date(2026, 6, 1, 15, 4, 5, 0, time.UTC),
		AuthorName: &author,
		Images:     []domain.Image{{ID: uuid.New(), Path: "images/comments/x/a.jpg"}},
	}

	resp := toCommentResponse(comment, nil, testResolver)
	if resp.CreatedAt != "2026 Jun 01" {
		t.Fatalf("CreatedAt = %q, want 2026 Jun 01", resp.CreatedAt)
	}
	if resp.Author != "Alice" {
		t.Fatalf("Author = %q, want Alice", resp.Author)
	}
	if resp.IsPublic != nil {
		t.Fatalf("expected is_public to be absent for anonymous callers")
	}
	if len(resp.Images) != 1 || resp.Images[0].URL != "https://cdn.test/images/comments/x/a.jpg" {
		t.Fatalf("unexpected images: %+v", resp.Images)
	}

	admin := toCommentResponse(comment, &domain.Caller{Roles: []domain.RoleName{domain.RoleAdmin}}, testResolver)
	if admin.IsPublic == nil {
		t.Fatalf("expected is_public for admins")
	}
}
