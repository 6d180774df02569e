package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hbagde424/employee-management/internal/model"
	"github.com/hbagde424/employee-management/internal/repository"
	"github.com/hbagde424/employee-management/internal/utils"
)

// Context keys under which Authenticate stores the resolved identity.
const (
	ContextUser   = "user"    // *model.User loaded from the database
	ContextUserID = "user_id" // uint64 subject id from the token
	ContextRole   = "role"    // role claim embedded at issue time
)

// Authenticate returns an Echo middleware that validates a Bearer access
// token and resolves its subject to a live user record. The decision is a
// single evaluation per request: the token must verify (signature, shape,
// expiry), the subject must still exist, and the account must be active.
// An invalid token or a vanished user yields 401; an inactive account
// yields 403. On success the user and the token's role claim are stored in
// the request context for downstream middleware and handlers.
func Authenticate(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			// The token is only half the story: the subject must still
			// exist. A deleted user with an unexpired token is rejected
			// here rather than trusted.
			u, err := users.GetByID(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account inactive"})
			}

			c.Set(ContextUser, &u)
			c.Set(ContextUserID, u.ID)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// CurrentUser extracts the authenticated user stored by Authenticate.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(ContextUser).(*model.User)
	return u, ok
}
