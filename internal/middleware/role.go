package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hbagde424/employee-management/internal/repository"
)

// RequireRole returns a middleware that enforces that the authenticated
// user currently holds one of the named roles. The check goes to the
// user_roles table rather than trusting the role claim in the token: a role
// assigned or removed after a token was issued takes effect on the next
// request, while the token's embedded claim stays stale until the next
// login. It assumes Authenticate has already run.
func RequireRole(users *repository.UserRepo, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			for _, name := range roles {
				has, err := users.HasRole(ctx, u.ID, name)
				if err != nil {
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role check failed"})
				}
				if has {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
}

// RequirePermission returns a middleware that enforces that one of the
// authenticated user's roles grants the named permission. The lookup is
// transitive through the permission graph (user → roles → permissions).
// It assumes Authenticate has already run.
func RequirePermission(users *repository.UserRepo, permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			has, err := users.HasPermission(ctx, u.ID, permission)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission check failed"})
			}
			if !has {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
