// This file defines repository methods for roles and the role_permissions
// join table (the role side of the permission graph). Role names are unique
// at the storage level; the duplicate-key error from MySQL is the final
// arbiter when two writers race on the same name.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hbagde424/employee-management/internal/model"
)

// ErrRoleExists is returned when a role name is already taken.
var ErrRoleExists = errors.New("role already exists")

// ErrRoleNotFound is returned when a role cannot be found.
var ErrRoleNotFound = errors.New("role not found")

type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Create inserts a new role and returns it with the generated id.
func (r *RoleRepo) Create(ctx context.Context, name, description string) (model.Role, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles (name, description) VALUES (?,?)",
		name, nullable(description))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Role{}, ErrRoleExists
		}
		return model.Role{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Role{}, err
	}
	return model.Role{ID: uint64(id), Name: name, Description: description}, nil
}

// GetByName fetches a role by its unique name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, COALESCE(description, '') FROM roles WHERE name=? LIMIT 1",
		name).Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrRoleNotFound
	}
	return role, err
}

// GetByID fetches a role by id.
func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, COALESCE(description, '') FROM roles WHERE id=? LIMIT 1",
		id).Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrRoleNotFound
	}
	return role, err
}

// List returns all roles ordered by id.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, COALESCE(description, '') FROM roles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignPermission adds a role→permission edge. It returns true when the
// edge exists after the call (a repeated call is not an error) and false
// when either the role or the permission is missing. Removing a permission
// from a shared role silently affects every user holding that role; that
// fan-out is the accepted cost of never granting permissions to users
// directly.
func (r *RoleRepo) AssignPermission(ctx context.Context, roleID, permissionID uint64) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM roles WHERE id=?", roleID).Scan(&n); err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM permissions WHERE id=?", permissionID).Scan(&n); err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM role_permissions WHERE role_id=? AND permission_id=?",
		roleID, permissionID).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO role_permissions (role_id, permission_id) VALUES (?,?)",
		roleID, permissionID); err != nil {
		return false, err
	}
	return true, nil
}

// RemovePermission deletes a role→permission edge. It returns true only
// when an edge was actually removed.
func (r *RoleRepo) RemovePermission(ctx context.Context, roleID, permissionID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM role_permissions WHERE role_id=? AND permission_id=?",
		roleID, permissionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PermissionsForRole returns the permissions granted by a role, ordered by id.
func (r *RoleRepo) PermissionsForRole(ctx context.Context, roleID uint64) ([]model.Permission, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.name, COALESCE(p.description, ''), COALESCE(p.category, '')
		 FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = ?
		 ORDER BY p.id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Permission
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// nullable maps an empty string to NULL so optional text columns stay NULL
// instead of storing empty strings.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
