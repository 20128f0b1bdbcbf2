package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

// Wire date formats. Tours carry ISO dates; comment timestamps use the
// human-readable catalog form.
const (
	tourDateFormat       = "2006-01-02"
	commentCreatedFormat = "2006 Jan 02"
)

// URLResolver turns a storage key into a public URL. Object storage provides
// it; presenters never touch the bucket directly.
type URLResolver func(key string) string

type TravelResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	NumberOfDays   int       `json:"number_of_days"`
	NumberOfNights int       `json:"number_of_nights"`
	// IsPublic is present only for ADMIN and EDITOR callers; everyone else
	// gets no field at all rather than a null.
	IsPublic *bool `json:"is_public,omitempty"`
}

type ImageResponse struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

type CommentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Author    string          `json:"author"`
	Text      string          `json:"text"`
	CreatedAt string          `json:"created_at"`
	IsPublic  *bool           `json:"is_public,omitempty"`
	Images    []ImageResponse `json:"images,omitempty"`
}

type TourResponse struct {
	ID        uuid.UUID         `json:"id"`
	TravelID  uuid.UUID         `json:"travel_id"`
	Name      string            `json:"name"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Price     string            `json:"price"`
	Images    []ImageResponse   `json:"images,omitempty"`
	Comments  []CommentResponse `json:"comments,omitempty"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func toTravelResponse(travel domain.Travel, caller *domain.Caller) TravelResponse {
	resp := TravelResponse{
		ID:             travel.ID,
		Name:           travel.Name,
		Slug:           travel.Slug,
		Description:    travel.Description,
		NumberOfDays:   travel.NumberOfDays,
		NumberOfNights: travel.NumberOfNights(),
	}
	if caller.CanViewPrivate() {
		isPublic := travel.IsPublic
		resp.IsPublic = &isPublic
	}
	return resp
}

func toTravelResponses(travels []domain.Travel, caller *domain.Caller) []TravelResponse {
	out := make([]TravelResponse, 0, len(travels))
	for _, travel := range travels {
		out = append(out, toTravelResponse(travel, caller))
	}
	return out
}

func toImageResponses(images []domain.Image, resolve URLResolver) []ImageResponse {
	if len(images) == 0 {
		return nil
	}
	out := make([]ImageResponse, 0, len(images))
	for _, image := range images {
		out = append(out, ImageResponse{ID: image.ID, URL: resolve(image.Path)})
	}
	return out
}

func toCommentResponse(comment domain.Comment, caller *domain.Caller, resolve URLResolver) CommentResponse {
	author := ""
	if comment.AuthorName != nil {
		author = *comment.AuthorName
	}
	resp := CommentResponse{
		ID:        comment.ID,
		Author:    author,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt.Format(commentCreatedFormat),
		Images:    toImageResponses(comment.Images, resolve),
	}
	if caller.CanViewPrivate() {
		isPublic := comment.IsPublic
		resp.IsPublic = &isPublic
	}
	return resp
}

func toCommentResponses(comments []domain.Comment, caller *domain.Caller, resolve URLResolver) []CommentResponse {
	if len(comments) == 0 {
		return nil
	}
	out := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, toCommentResponse(comment, caller, resolve))
	}
	return out
}

func toTourResponse(tour domain.Tour, caller *domain.Caller, resolve URLResolver) TourResponse {
	return TourResponse{
		ID:        tour.ID,
		TravelID:  tour.TravelID,
		Name:      tour.Name,
		StartDate: tour.StartDate.Format(tourDateFormat),
		EndDate:   tour.EndDate.Format(tourDateFormat),
		Price:     tour.PriceString(),
		Images:    toImageResponses(tour.Images, resolve),
		Comments:  toCommentResponses(tour.Comments, caller, resolve),
	}
}

func toTourResponses(tours []domain.Tour, caller *domain.Caller, resolve URLResolver) []TourResponse {
	out := make([]TourResponse, 0, len(tours))
	for _, tour := range tours {
		out = append(out, toTourResponse(tour, caller, resolve))
	}
	return out
}

func toUserResponse(user domain.User) UserResponse {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role.Name))
	}
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Roles:     roles,
		CreatedAt: user.CreatedAt,
	}
}
