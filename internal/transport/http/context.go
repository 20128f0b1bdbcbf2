package http

import (
	"github.com/labstack/echo/v4"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

const (
	contextUserKey  = "auth.user"
	contextTokenKey = "auth.token"
)

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok
}

// CurrentCaller resolves the visibility context for the request. Anonymous
// requests yield nil, which every policy check treats as unqualified.
func CurrentCaller(c echo.Context) *domain.Caller {
	user, ok := CurrentUser(c)
	if !ok {
		return nil
	}
	return user.Caller()
}
