package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/service"
	"github.com/ArtemDidyk-Dev/travel-api/internal/util"
)

type TravelHandler struct {
	travels *service.TravelService
}

func RegisterTravels(e *echo.Echo, auth *service.AuthService, travels *service.TravelService) {
	handler := &TravelHandler{travels: travels}

	public := e.Group("/api/v1/travels", OptionalAuth(auth))
	public.GET("", handler.list)
	public.GET("/:slug", handler.getBySlug)

	admin := e.Group("/api/v1/admin/travels", RequireAuth(auth), RequireRole(domain.RoleAdmin, domain.RoleEditor))
	admin.GET("", handler.list)
	admin.POST("", handler.create)
	admin.PUT("/:id", handler.update)
	admin.DELETE("/:id", handler.destroy)
}

func (h *TravelHandler) list(c echo.Context) error {
	caller := CurrentCaller(c)

	travels, meta, err := h.travels.List(c.Request().Context(), caller, parsePage(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list travels"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"data": toTravelResponses(travels, caller),
		"meta": meta,
	})
}

func (h *TravelHandler) getBySlug(c echo.Context) error {
	caller := CurrentCaller(c)

	travel, err := h.travels.GetBySlug(c.Request().Context(), caller, c.Param("slug"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("travel", toTravelResponse(*travel, caller)))
}

func (h *TravelHandler) create(c echo.Context) error {
	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		NumberOfDays int    `json:"number_of_days"`
		IsPublic     bool   `json:"is_public"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	travel, err := h.travels.Create(c.Request().Context(), service.TravelCreateInput{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		NumberOfDays: req.NumberOfDays,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, util.Data("travel", toTravelResponse(*travel, CurrentCaller(c))))
}

func (h *TravelHandler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid travel id"))
	}

	var req struct {
		Name         *string `json:"name"`
		Description  *string `json:"description"`
		NumberOfDays *int    `json:"number_of_days"`
		IsPublic     *bool   `json:"is_public"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	travel, err := h.travels.Update(c.Request().Context(), id, service.TravelUpdateInput{
		Name:         req.Name,
		Description:  req.Description,
		NumberOfDays: req.NumberOfDays,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, util.Data("travel", toTravelResponse(*travel, CurrentCaller(c))))
}

func (h *TravelHandler) destroy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid travel id"))
	}
	if err := h.travels.Delete(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *TravelHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTravelNotFound):
		return c.JSON(http.StatusNotFound, util.Error("travel not found"))
	case errors.Is(err, service.ErrTravelValidation):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(err.Error()))
	case errors.Is(err, service.ErrTravelExists):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}

func parsePage(c echo.Context) int {
	raw := strings.TrimSpace(c.QueryParam("page"))
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
