package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

func newTestCommentService(mailer *recordingMailer) (*CommentService, *memTravelRepo, *memTourRepo, *memCommentRepo) {
	travels := &memTravelRepo{}
	tours := &memTourRepo{}
	comments := &memCommentRepo{}
	images := &memImageRepo{}
	media := NewImageService(images, newMemStorage(), nil, &funcProcessor{fn: func(data []byte, contentType string) ([]byte, error) {
		return data, nil
	}}, ImageServiceConfig{})
	svc := NewCommentService(comments, tours, travels, images, media, mailer, "https://travel.test")
	return svc, travels, tours, comments
}

func seedTour(travels *memTravelRepo, tours *memTourRepo, public bool) *domain.Tour {
	travel, _ := travels.Create(context.Background(), &domain.Travel{
		Name: "Iceland", Slug: "iceland", NumberOfDays: 7, IsPublic: public,
	})
	tour, _ := tours.Create(context.Background(), &domain.Tour{
		TravelID:  travel.ID,
		Name:      "Iceland June",
		StartDate: date("2026-06-01"),
		EndDate:   date("2026-06-08"),
		Price:     100,
	})
	return tour
}

func userCaller() *domain.Caller {
	return &domain.Caller{ID: uuid.New(), Roles: []domain.RoleName{domain.RoleUser}}
}

func TestCommentStoreStartsPrivate(t *testing.T) {
	svc, travels, tours, _ := newTestCommentService(&recordingMailer{})
	tour := seedTour(travels, tours, true)

	comment, err := svc.Store(context.Background(), userCaller(), tour.ID, CommentCreateInput{Text: "  Great trip!  "})
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if comment.IsPublic {
		t.Fatalf("expected new comment to be private")
	}
	if comment.Text != "Great trip!" {
		t.Fatalf("expected trimmed text, got %q", comment.Text)
	}
}

func TestCommentStoreValidatesText(t *testing.T) {
	svc, travels, tours, _ := newTestCommentService(&recordingMailer{})
	tour := seedTour(travels, tours, true)

	if _, err := svc.Store(context.Background(), userCaller(), tour.ID, CommentCreateInput{Text: "   "}); !errors.Is(err, ErrCommentValidation) {
		t.Fatalf("expected ErrCommentValidation for blank text, got %v", err)
	}

	long := strings.Repeat("x", domain.CommentTextMaxLen+1)
	if _, err := svc.Store(context.Background(), userCaller(), tour.ID, CommentCreateInput{Text: long}); !errors.Is(err, ErrCommentValidation) {
		t.Fatalf("expected ErrCommentValidation for oversized text, got %v", err)
	}
}

func TestCommentTextLimitCountsCharactersNotBytes(t *testing.T) {
	svc, travels, tours, _ := newTestCommentService(&recordingMailer{})
	tour := seedTour(travels, tours, true)

	// 3000 Cyrillic characters are 6000 bytes but well under the limit.
	within := strings.Repeat("ё", 3000)
	if _, err := svc.Store(context.Background(), userCaller(), tour.ID, CommentCreateInput{Text: within}); err != nil {
		t.Fatalf("expected multibyte text within the limit to pass, got %v", err)
	}

	over := strings.Repeat("ё", domain.CommentTextMaxLen+1)
	if _, err := svc.Store(context.Background(), userCaller(), tour.ID, CommentCreateInput{Text: over}); !errors.Is(err, ErrCommentValidation) {
		t.Fatalf("expected ErrCommentValidation past the character limit, got %v", err)
	}
}

func TestCommentStoreOnPrivateTravelRequiresPrivilege(t *testing.T) {
	svc, travels, tours, _ := newTestCommentService(&recordingMailer{})
	tour := seedTour(travels, tours, false)

	if _, err := svc.Store(context.Background(), userCaller(), tour.ID, CommentCreateInput{Text: "hi"}); !errors.Is(err, ErrTourNotFound) {
		t.Fatalf("expected ErrTourNotFound for plain user, got %v", err)
	}
	if _, err := svc.Store(context.Background(), adminCaller(), tour.ID, CommentCreateInput{Text: "hi"}); err != nil {
		t.Fatalf("expected admin to comment on private travel, got %v", err)
	}
}

func TestCommentPublishSendsExactlyOneMail(t *testing.T) {
	mailer := &recordingMailer{}
	svc, travels, tours, comments := newTestCommentService(mailer)
	tour := seedTour(travels, tours, true)

	email := "author@example.com"
	name := "Author"
	comment, _ := comments.Create(context.Background(), &domain.Comment{
		TourID: tour.ID, UserID: uuid.New(), Text: "pending", IsPublic: false,
	})
	for i := range comments.comments {
		if comments.comments[i].ID == comment.ID {
			comments.comments[i].AuthorEmail = &email
			comments.comments[i].AuthorName = &name
		}
	}

	isPublic := true
	if _, err := svc.Update(context.Background(), comment.ID, CommentUpdateInput{IsPublic: &isPublic}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected exactly one mail on publication, got %d", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[0], "author@example.com") || !strings.Contains(mailer.sent[0], "/travels/iceland/tours/"+tour.ID.String()) {
		t.Fatalf("unexpected mail payload: %s", mailer.sent[0])
	}

	// Publishing an already-public comment again sends nothing.
	if _, err := svc.Update(context.Background(), comment.ID, CommentUpdateInput{IsPublic: &isPublic}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected no second mail, got %d", len(mailer.sent))
	}
}

func TestCommentUpdateStayingPrivateSendsNothing(t *testing.T) {
	mailer := &recordingMailer{}
	svc, travels, tours, comments := newTestCommentService(mailer)
	tour := seedTour(travels, tours, true)

	comment, _ := comments.Create(context.Background(), &domain.Comment{
		TourID: tour.ID, UserID: uuid.New(), Text: "pending", IsPublic: false,
	})

	text := "edited"
	if _, err := svc.Update(context.Background(), comment.ID, CommentUpdateInput{Text: &text}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no mail for a private edit, got %d", len(mailer.sent))
	}
}

func TestCommentListVisibility(t *testing.T) {
	svc, travels, tours, comments := newTestCommentService(&recordingMailer{})
	tour := seedTour(travels, tours, true)

	comments.Create(context.Background(), &domain.Comment{TourID: tour.ID, UserID: uuid.New(), Text: "public", IsPublic: true})
	comments.Create(context.Background(), &domain.Comment{TourID: tour.ID, UserID: uuid.New(), Text: "private", IsPublic: false})

	all, meta, err := svc.List(context.Background(), adminCaller(), 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 2 || meta.Total != 2 {
		t.Fatalf("expected admin to see 2 comments, got %d (total %d)", len(all), meta.Total)
	}
}

func TestCommentDestroyImagesIgnoresForeignIDs(t *testing.T) {
	svc, travels, tours, comments := newTestCommentService(&recordingMailer{})
	tour := seedTour(travels, tours, true)

	comment, _ := comments.Create(context.Background(), &domain.Comment{
		TourID: tour.ID, UserID: uuid.New(), Text: "with image", IsPublic: true,
	})

	if err := svc.DestroyImages(context.Background(), comment.ID, []uuid.UUID{uuid.New()}); err != nil {
		t.Fatalf("expected foreign ids to be a no-op, got %v", err)
	}
	if err := svc.DestroyImages(context.Background(), uuid.New(), []uuid.UUID{uuid.New()}); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound for unknown comment, got %v", err)
	}
}
