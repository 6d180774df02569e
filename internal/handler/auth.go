package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // sentinel errors like sql.ErrNoRows
	"errors"
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/hbagde424/employee-management/internal/bootstrap"
	"github.com/hbagde424/employee-management/internal/config"
	"github.com/hbagde424/employee-management/internal/middleware"
	"github.com/hbagde424/employee-management/internal/model"
	"github.com/hbagde424/employee-management/internal/queue"
	"github.com/hbagde424/employee-management/internal/repository"
	queue_publisher "github.com/hbagde424/employee-management/internal/service"
	"github.com/hbagde424/employee-management/internal/utils"
)

// AuthHandler bundles dependencies for registration, login and session
// endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Roles *repository.RoleRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, r *repository.RoleRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Roles: r}
}

// ----- DTOs -----

type registerReq struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	FullName        string `json:"full_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type changePasswordReq struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type permissionView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}
type roleView struct {
	ID          uint64           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Permissions []permissionView `json:"permissions"`
}

// userView is the external representation of a user. The password hash is
// never part of it.
type userView struct {
	ID         uint64     `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name"`
	IsActive   bool       `json:"is_active"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	Roles      []roleView `json:"roles"`
}

type loginResp struct {
	User         userView `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
}
type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// userView loads the user's roles and their permissions to build the full
// external representation.
func (h *AuthHandler) userView(ctx context.Context, u model.User) (userView, error) {
	roles, err := h.Users.RolesForUser(ctx, u.ID)
	if err != nil {
		return userView{}, err
	}
	out := userView{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		Roles:      make([]roleView, 0, len(roles)),
	}
	for _, role := range roles {
		rv := roleView{ID: role.ID, Name: role.Name, Description: role.Description, Permissions: []permissionView{}}
		perms, err := h.Roles.PermissionsForRole(ctx, role.ID)
		if err != nil {
			return userView{}, err
		}
		for _, p := range perms {
			rv.Permissions = append(rv.Permissions, permissionView{
				ID: p.ID, Name: p.Name, Description: p.Description, Category: p.Category,
			})
		}
		out.Roles = append(out.Roles, rv)
	}
	return out, nil
}

// roleClaim picks the single role name embedded in issued tokens: the
// lowest-id role, or the default role when the user holds none. The claim
// goes stale when roles change after issue; that staleness lasts until the
// next login and is expected.
func (h *AuthHandler) roleClaim(ctx context.Context, userID uint64) (string, error) {
	roles, err := h.Users.RolesForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(roles) == 0 {
		return bootstrap.DefaultRole, nil
	}
	return roles[0].Name, nil
}

// Register: create the user with the default role and return its view.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be 3-50 characters"})
	}
	if req.FullName == "" || len(req.FullName) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full name required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	if req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The uniqueness constraints on email and username are the authority;
	// a pre-check here would still race with a concurrent writer.
	uid, err := h.Users.Create(ctx, req.Email, req.Username, req.FullName, hash, bootstrap.DefaultRole)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email or username already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	view, err := h.userView(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	// Best effort: registration succeeds even when the broker is down.
	_ = queue_publisher.PublishUserRegistered(ctx, queue.UserRegisteredEvent{
		UserID:       u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FullName:     u.FullName,
		Role:         bootstrap.DefaultRole,
		RegisteredAt: u.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, view)
}

// Login: verify credentials and return the user with a fresh token pair.
// A missing user, a wrong password and an inactive account all collapse to
// the same 401 so the response does not leak which case occurred.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	role, err := h.roleClaim(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
	}
	claims := utils.Claims{UserID: u.ID, Email: u.Email, Role: role}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, claims, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTSecret, claims, h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}

	view, err := h.userView(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	return c.JSON(http.StatusOK, loginResp{
		User:         view,
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    "bearer",
		ExpiresIn:    h.Cfg.AccessTTLMin * 60,
	})
}

// Refresh: verify the refresh token and re-issue an access token carrying
// the same claims. The user is not re-queried; the token is trusted as-is,
// so a deactivated account keeps refreshing until the refresh token
// expires. Tightening that costs a DB round-trip per refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	claims, err := utils.VerifyToken(h.Cfg.JWTSecret, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, claims, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusOK, tokenResp{
		AccessToken: access.Token,
		TokenType:   "bearer",
		ExpiresIn:   h.Cfg.AccessTTLMin * 60,
	})
}

// ChangePassword: verify the old password and replace the hash (protected).
// Outstanding tokens stay valid until natural expiry.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	if req.NewPassword != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fresh, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if !utils.VerifyPassword(fresh.PasswordHash, req.OldPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid old password"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed successfully"})
}

// Me: return the caller's user view (protected).
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	view, err := h.userView(ctx, *u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, view)
}
