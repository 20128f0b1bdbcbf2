package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/ports"
)

var (
	ErrCommentNotFound   = errors.New("comment not found")
	ErrCommentValidation = errors.New("comment validation failed")
)

// Mailer delivers the one-time publication notice to a comment's author.
type Mailer interface {
	SendCommentPublished(ctx context.Context, to, authorName, tourName, tourURL string) error
}

type CommentCreateInput struct {
	Text   string
	Images []FileUpload
}

type CommentUpdateInput struct {
	Text     *string
	IsPublic *bool
}

type CommentService struct {
	comments ports.CommentRepository
	tours    ports.TourRepository
	travels  ports.TravelRepository
	images   ports.ImageRepository
	media    *ImageService
	mailer   Mailer

	frontendBase string
}

func NewCommentService(
	comments ports.CommentRepository,
	tours ports.TourRepository,
	travels ports.TravelRepository,
	images ports.ImageRepository,
	media *ImageService,
	mailer Mailer,
	frontendBaseURL string,
) *CommentService {
	return &CommentService{
		comments:     comments,
		tours:        tours,
		travels:      travels,
		images:       images,
		media:        media,
		mailer:       mailer,
		frontendBase: strings.TrimRight(frontendBaseURL, "/"),
	}
}

// Store creates a comment on a tour visible to the caller. New comments are
// always private until a moderator publishes them; attachments are deferred
// to the worker.
func (s *CommentService) Store(ctx context.Context, caller *domain.Caller, tourID uuid.UUID, input CommentCreateInput) (*domain.Comment, error) {
	if caller == nil {
		return nil, ErrCommentValidation
	}
	text := strings.TrimSpace(input.Text)
	if err := validateCommentText(text); err != nil {
		return nil, err
	}

	if err := s.ensureTourVisible(ctx, caller, tourID); err != nil {
		return nil, err
	}

	comment, err := s.comments.Create(ctx, &domain.Comment{
		TourID:   tourID,
		UserID:   caller.ID,
		Text:     text,
		IsPublic: false,
	})
	if err != nil {
		return nil, err
	}

	owner := domain.ImageOwner{Kind: domain.ImageOwnerComment, ID: comment.ID}
	if err := s.media.Save(ctx, owner, input.Images, true); err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns one page of comments for the back office, author joined and
// images attached.
func (s *CommentService) List(ctx context.Context, caller *domain.Caller, page int) ([]domain.Comment, domain.PageMeta, error) {
	includePrivate := caller.CanViewPrivate()

	total, err := s.comments.Count(ctx, includePrivate)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	meta := domain.NewPageMeta(total, domain.DefaultPerPage, page)

	comments, err := s.comments.List(ctx, includePrivate, meta.PerPage, meta.Offset())
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	if err := s.attachImages(ctx, comments); err != nil {
		return nil, domain.PageMeta{}, err
	}
	return comments, meta, nil
}

func (s *CommentService) Get(ctx context.Context, caller *domain.Caller, id uuid.UUID) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id, caller.CanViewPrivate())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	images, err := s.images.ListByOwner(ctx, domain.ImageOwner{Kind: domain.ImageOwnerComment, ID: comment.ID})
	if err != nil {
		return nil, err
	}
	comment.Images = images
	return comment, nil
}

// Update edits a comment from the back office. Flipping is_public from false
// to true notifies the author exactly once; publishing an already-public
// comment again sends nothing.
func (s *CommentService) Update(ctx context.Context, id uuid.UUID, input CommentUpdateInput) (*domain.Comment, error) {
	if input.Text != nil {
		trimmed := strings.TrimSpace(*input.Text)
		if err := validateCommentText(trimmed); err != nil {
			return nil, err
		}
		input.Text = &trimmed
	}

	prior, err := s.comments.GetByID(ctx, id, true)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	comment, err := s.comments.Update(ctx, id, domain.CommentChangeFields{
		Text:     input.Text,
		IsPublic: input.IsPublic,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	comment.AuthorName = prior.AuthorName
	comment.AuthorEmail = prior.AuthorEmail

	if !prior.IsPublic && comment.IsPublic {
		// Delivery is best-effort; the publication itself already
		// happened.
		if err := s.notifyPublished(ctx, prior, comment); err != nil {
			log.Printf("comment %s: publication notice failed: %v", comment.ID, err)
		}
	}
	return comment, nil
}

// Destroy removes a comment with its attachments.
func (s *CommentService) Destroy(ctx context.Context, id uuid.UUID) error {
	if _, err := s.comments.GetByID(ctx, id, true); err != nil {
		if isNotFound(err) {
			return ErrCommentNotFound
		}
		return err
	}
	if err := s.media.DeleteAllFor(ctx, domain.ImageOwner{Kind: domain.ImageOwnerComment, ID: id}); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}

// DestroyImages drops a subset of the comment's images.
func (s *CommentService) DestroyImages(ctx context.Context, id uuid.UUID, imageIDs []uuid.UUID) error {
	if _, err := s.comments.GetByID(ctx, id, true); err != nil {
		if isNotFound(err) {
			return ErrCommentNotFound
		}
		return err
	}
	return s.media.Delete(ctx, domain.ImageOwner{Kind: domain.ImageOwnerComment, ID: id}, imageIDs)
}

func (s *CommentService) notifyPublished(ctx context.Context, prior, comment *domain.Comment) error {
	if s.mailer == nil || prior.AuthorEmail == nil {
		return nil
	}
	tour, err := s.tours.FindByID(ctx, comment.TourID)
	if err != nil {
		return err
	}
	travel, err := s.travels.FindByID(ctx, tour.TravelID)
	if err != nil {
		return err
	}

	authorName := ""
	if prior.AuthorName != nil {
		authorName = *prior.AuthorName
	}
	tourURL := fmt.Sprintf("%s/travels/%s/tours/%s", s.frontendBase, travel.Slug, tour.ID)
	return s.mailer.SendCommentPublished(ctx, *prior.AuthorEmail, authorName, tour.Name, tourURL)
}

// validateCommentText bounds the trimmed text by character count, so
// multibyte text is measured the same as ASCII.
func validateCommentText(text string) error {
	runes := utf8.RuneCountInString(text)
	if runes < domain.CommentTextMinLen {
		return fmt.Errorf("%w: text is required", ErrCommentValidation)
	}
	if runes > domain.CommentTextMaxLen {
		return fmt.Errorf("%w: text exceeds %d characters", ErrCommentValidation, domain.CommentTextMaxLen)
	}
	return nil
}

func (s *CommentService) ensureTourVisible(ctx context.Context, caller *domain.Caller, tourID uuid.UUID) error {
	tour, err := s.tours.FindByID(ctx, tourID)
	if err != nil {
		if isNotFound(err) {
			return ErrTourNotFound
		}
		return err
	}
	travel, err := s.travels.FindByID(ctx, tour.TravelID)
	if err != nil {
		if isNotFound(err) {
			return ErrTourNotFound
		}
		return err
	}
	if !travel.IsPublic && !caller.CanViewPrivate() {
		return ErrTourNotFound
	}
	return nil
}

func (s *CommentService) attachImages(ctx context.Context, comments []domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}
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
