package handler // role and permission administration endpoints

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hbagde424/employee-management/internal/repository"
)

// RBACHandler bundles dependencies for the role/permission admin surface.
// All mutating endpoints here sit behind the admin role; the Guard
// middleware enforces that before these handlers run.
type RBACHandler struct {
	Users *repository.UserRepo
	Roles *repository.RoleRepo
	Perms *repository.PermissionRepo
}

func NewRBACHandler(u *repository.UserRepo, r *repository.RoleRepo, p *repository.PermissionRepo) *RBACHandler {
	return &RBACHandler{Users: u, Roles: r, Perms: p}
}

type createRoleReq struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PermissionIDs []uint64 `json:"permission_ids"`
}
type createPermissionReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
type assignRoleReq struct {
	RoleID uint64 `json:"role_id"`
}

// CreateRole creates a role and optionally grants an initial permission set.
func (h *RBACHandler) CreateRole(c echo.Context) error {
	var req createRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 50 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role name must be 1-50 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.Roles.Create(ctx, req.Name, strings.TrimSpace(req.Description))
	if err != nil {
		if errors.Is(err, repository.ErrRoleExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "role already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create role failed"})
	}
	// A missing permission id is skipped silently, mirroring the silent
	// false of the graph assign contract.
	for _, pid := range req.PermissionIDs {
		if _, err := h.Roles.AssignPermission(ctx, role.ID, pid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign permission failed"})
		}
	}

	view := roleView{ID: role.ID, Name: role.Name, Description: role.Description, Permissions: []permissionView{}}
	perms, err := h.Roles.PermissionsForRole(ctx, role.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load permissions failed"})
	}
	for _, p := range perms {
		view.Permissions = append(view.Permissions, permissionView{
			ID: p.ID, Name: p.Name, Description: p.Description, Category: p.Category,
		})
	}
	return c.JSON(http.StatusCreated, view)
}

// ListRoles returns all roles with their permissions.
func (h *RBACHandler) ListRoles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	roles, err := h.Roles.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list roles failed"})
	}
	out := make([]roleView, 0, len(roles))
	for _, role := range roles {
		rv := roleView{ID: role.ID, Name: role.Name, Description: role.Description, Permissions: []permissionView{}}
		perms, err := h.Roles.PermissionsForRole(ctx, role.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load permissions failed"})
		}
		for _, p := range perms {
			rv.Permissions = append(rv.Permissions, permissionView{
				ID: p.ID, Name: p.Name, Description: p.Description, Category: p.Category,
			})
		}
		out = append(out, rv)
	}
	return c.JSON(http.StatusOK, out)
}

// AssignRole attaches a role to a user. A missing user is 404; a missing
// role surfaces as a failed assignment.
func (h *RBACHandler) AssignRole(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req assignRoleReq
	if err := c.Bind(&req); err != nil || req.RoleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	ok, err := h.Users.AssignRole(ctx, userID, req.RoleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign role failed"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to assign role"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role assigned successfully"})
}

// CreatePermission creates a new permission.
func (h *RBACHandler) CreatePermission(c echo.Context) error {
	var req createPermissionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "permission name must be 1-100 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Perms.Create(ctx, req.Name, strings.TrimSpace(req.Description), strings.TrimSpace(req.Category))
	if err != nil {
		if errors.Is(err, repository.ErrPermissionExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "permission already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create permission failed"})
	}
	return c.JSON(http.StatusCreated, permissionView{
		ID: p.ID, Name: p.Name, Description: p.Description, Category: p.Category,
	})
}

// ListPermissions returns all permissions.
func (h *RBACHandler) ListPermissions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	perms, err := h.Perms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list permissions failed"})
	}
	out := make([]permissionView, 0, len(perms))
	for _, p := range perms {
		out = append(out, permissionView{
			ID: p.ID, Name: p.Name, Description: p.Description, Category: p.Category,
		})
	}
	return c.JSON(http.StatusOK, out)
}
