// Package bootstrap seeds the fixed role/permission catalog. Seeding runs
// once at startup before the server accepts traffic, so registration can
// rely on the default role existing. Every step is check-then-insert and
// safe to run on every boot.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/hbagde424/employee-management/internal/model"
	"github.com/hbagde424/employee-management/internal/repository"
)

// DefaultRole is assigned to every newly registered user and used as the
// fallback role claim when a user somehow holds no roles at login.
const DefaultRole = "employee"

// AdminRole guards the role/permission administration endpoints.
const AdminRole = "admin"

type seedPermission struct {
	name        string
	description string
	category    string
}

type seedRole struct {
	name        string
	description string
	permissions []string
}

var permissionCatalog = []seedPermission{
	{"employee:create", "Create employee records", "employee"},
	{"employee:read", "View employee records and statistics", "employee"},
	{"employee:update", "Update employee records", "employee"},
	{"employee:delete", "Delete employee records", "employee"},
	{"user:manage", "Manage user accounts and role assignments", "user"},
	{"role:manage", "Create roles and permissions", "user"},
}

var roleCatalog = []seedRole{
	{AdminRole, "Full administrative access",
		[]string{"employee:create", "employee:read", "employee:update", "employee:delete", "user:manage", "role:manage"}},
	{"manager", "Manage employee records",
		[]string{"employee:create", "employee:read", "employee:update"}},
	{DefaultRole, "Default role for registered users",
		[]string{"employee:read"}},
}

// Seed inserts any missing catalog entries and wires the role→permission
// edges. Existing rows are left untouched, so operator-made changes to
// descriptions or extra roles survive restarts.
func Seed(ctx context.Context, roles *repository.RoleRepo, perms *repository.PermissionRepo) error {
	permIDs := make(map[string]uint64, len(permissionCatalog))
	for _, sp := range permissionCatalog {
		p, err := perms.GetByName(ctx, sp.name)
		if errors.Is(err, repository.ErrPermissionNotFound) {
			p, err = perms.Create(ctx, sp.name, sp.description, sp.category)
			// A concurrent seeder may have won the insert race.
			if errors.Is(err, repository.ErrPermissionExists) {
				p, err = perms.GetByName(ctx, sp.name)
			}
		}
		if err != nil {
			return fmt.Errorf("seed permission %s: %w", sp.name, err)
		}
		permIDs[sp.name] = p.ID
	}

	for _, sr := range roleCatalog {
		role, err := roles.GetByName(ctx, sr.name)
		if errors.Is(err, repository.ErrRoleNotFound) {
			role, err = roles.Create(ctx, sr.name, sr.description)
			if errors.Is(err, repository.ErrRoleExists) {
				role, err = roles.GetByName(ctx, sr.name)
			}
		}
		if err != nil {
			return fmt.Errorf("seed role %s: %w", sr.name, err)
		}
		if err := seedEdges(ctx, roles, role, sr.permissions, permIDs); err != nil {
			return err
		}
	}
	return nil
}

func seedEdges(ctx context.Context, roles *repository.RoleRepo, role model.Role, names []string, permIDs map[string]uint64) error {
	for _, name := range names {
		ok, err := roles.AssignPermission(ctx, role.ID, permIDs[name])
		if err != nil {
			return fmt.Errorf("grant %s to %s: %w", name, role.Name, err)
		}
		if !ok {
			return fmt.Errorf("grant %s to %s: missing endpoint", name, role.Name)
		}
	}
	return nil
}
