package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminOnly rejects non-admin identities. It must run after RequireLogin;
// this is the server-side security boundary for privileged endpoints.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Role(c) != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}
