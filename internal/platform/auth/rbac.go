package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HasRole reports whether the context carries at least one of the given roles.
// Admins count for every role.
func HasRole(ctx context.Context, roles ...string) bool {
	userRoles := RolesFromContext(ctx)
	for _, required := range roles {
		for _, has := range userRoles {
			if has == required || has == "admin" {
				return true
			}
		}
	}
	return false
}

// RequireRole returns middleware that checks if the user has at least one of
// the specified roles. Admins pass every role check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasRole(c.Request().Context(), roles...) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequireSelfOrRole returns middleware that allows the request when the :id
// path parameter matches the authenticated subject, or when the user holds one
// of the given roles. Patients may only touch their own rows; clinical roles
// may touch anyone's.
func RequireSelfOrRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if c.Param("id") != "" && c.Param("id") == UserIDFromContext(ctx) {
				return next(c)
			}
			return RequireRole(roles...)(next)(c)
		}
	}
}
