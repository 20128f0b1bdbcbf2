package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ArtemDidyk-Dev/travel-api/internal/service"
	"github.com/ArtemDidyk-Dev/travel-api/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

type authResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	group := e.Group("/api/v1/auth")
	group.POST("/register", handler.register)
	group.POST("/login", handler.login)
	group.GET("/me", handler.me, RequireAuth(auth))
}

func (h *AuthHandler) register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	user, token, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthValidation):
			return c.JSON(http.StatusUnprocessableEntity, util.Error(err.Error()))
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusUnprocessableEntity, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to register"))
		}
	}

	return c.JSON(http.StatusCreated, authResponse{
		User:      toUserResponse(*user),
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	user, token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error("invalid credentials"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to login"))
	}

	return c.JSON(http.StatusOK, authResponse{
		User:      toUserResponse(*user),
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	})
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, util.Data("user", toUserResponse(*user)))
}
