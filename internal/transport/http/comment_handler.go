package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/service"
	"github.com/ArtemDidyk-Dev/travel-api/internal/util"
)

type CommentHandler struct {
	comments *service.CommentService
	resolve  URLResolver
}

func RegisterComments(e *echo.Echo, auth *service.AuthService, comments *service.CommentService, resolve URLResolver) {
	handler := &CommentHandler{comments: comments, resolve: resolve}

	e.POST("/api/v1/tours/:id/comments", handler.store, RequireAuth(auth))

	admin := e.Group("/api/v1/admin/comments", RequireAuth(auth), RequireRole(domain.RoleAdmin, domain.RoleEditor))
	admin.GET("", handler.list)
	admin.GET("/:id", handler.get)
	admin.PUT("/:id", handler.update)
	admin.DELETE("/:id", handler.destroy)
	admin.DELETE("/:id/images", handler.destroyImages)
}

// store handles POST /api/v1/tours/{id}/comments. New comments stay private
// until a moderator publishes them.
func (h *CommentHandler) store(c echo.Context) error {
	caller := CurrentCaller(c)
	if caller == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid tour id"))
	}

	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	uploads, closers, err := buildFileUploads(c.Request().MultipartForm, "images")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	defer closeAll(closers)

	comment, err := h.comments.Store(c.Request().Context(), caller, tourID, service.CommentCreateInput{
		Text:   c.FormValue("text"),
		Images: uploads,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, util.Data("comment", toCommentResponse(*comment, caller, h.resolve)))
}

func (h *CommentHandler) list(c echo.Context) error {
	caller := CurrentCaller(c)

	comments, meta, err := h.comments.List(c.Request().Context(), caller, parsePage(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list comments"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"data": toCommentResponses(comments, caller, h.resolve),
		"meta": meta,
	})
}

func (h *CommentHandler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid comment id"))
	}

	caller := CurrentCaller(c)
	comment, err := h.comments.Get(c.Request().Context(), caller, id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("comment", toCommentResponse(*comment, caller, h.resolve)))
}

func (h *CommentHandler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid comment id"))
	}

	var req struct {
		Text     *string `json:"text"`
		IsPublic *bool   `json:"is_public"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if req.Text != nil {
		trimmed := strings.TrimSpace(*req.Text)
		req.Text = &trimmed
	}

	comment, err := h.comments.Update(c.Request().Context(), id, service.CommentUpdateInput{
		Text:     req.Text,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("comment", toCommentResponse(*comment, CurrentCaller(c), h.resolve)))
}

func (h *CommentHandler) destroy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid comment id"))
	}
	if err := h.comments.Destroy(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *CommentHandler) destroyImages(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid comment id"))
	}

	var req struct {
		ImageIDs []uuid.UUID `json:"image_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if len(req.ImageIDs) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, util.Error("image_ids is required"))
	}

	if err := h.comments.DestroyImages(c.Request().Context(), id, req.ImageIDs); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *CommentHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrImageNotFound):
		return c.JSON(http.StatusNotFound, util.Error("image not found"))
	case errors.Is(err, service.ErrCommentNotFound):
		return c.JSON(http.StatusNotFound, util.Error("comment not found"))
	case errors.Is(err, service.ErrTourNotFound):
		return c.JSON(http.StatusNotFound, util.Error("tour not found"))
	case errors.Is(err, service.ErrCommentValidation), errors.Is(err, service.ErrImageValidation):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}
