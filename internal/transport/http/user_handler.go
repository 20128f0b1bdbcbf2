package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/service"
	"github.com/ArtemDidyk-Dev/travel-api/internal/util"
)

type UserHandler struct {
	users *service.UserService
}

func RegisterUsers(e *echo.Echo, auth *service.AuthService, users *service.UserService) {
	handler := &UserHandler{users: users}

	admin := e.Group("/api/v1/admin", RequireAuth(auth), RequireRole(domain.RoleAdmin))
	admin.GET("/users", handler.list)
	admin.GET("/users/:id", handler.get)
	admin.PUT("/users/:id/roles", handler.setRoles)
	admin.DELETE("/users/:id", handler.destroy)
	admin.GET("/roles", handler.listRoles)
}

func (h *UserHandler) list(c echo.Context) error {
	users, meta, err := h.users.List(c.Request().Context(), parsePage(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list users"))
	}

	data := make([]UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, toUserResponse(user))
	}
	return c.JSON(http.StatusOK, util.Envelope{"data": data, "meta": meta})
}

func (h *UserHandler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid user id"))
	}

	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("user", toUserResponse(*user)))
}

func (h *UserHandler) setRoles(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid user id"))
	}

	var req struct {
		Roles []string `json:"roles"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	names := make([]domain.RoleName, 0, len(req.Roles))
	for _, raw := range req.Roles {
		names = append(names, domain.RoleName(raw))
	}

	user, err := h.users.SetRoles(c.Request().Context(), id, names)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("user", toUserResponse(*user)))
}

func (h *UserHandler) destroy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid user id"))
	}
	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *UserHandler) listRoles(c echo.Context) error {
	roles, err := h.users.ListRoles(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list roles"))
	}
	return c.JSON(http.StatusOK, util.Data("roles", roles))
}

func (h *UserHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, util.Error("user not found"))
	case errors.Is(err, service.ErrUserValidation):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}
