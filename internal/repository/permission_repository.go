package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hbagde424/employee-management/internal/model"
)

// ErrPermissionExists is returned when a permission name is already taken.
var ErrPermissionExists = errors.New("permission already exists")

// ErrPermissionNotFound is returned when a permission cannot be found.
var ErrPermissionNotFound = errors.New("permission not found")

// PermissionRepo encapsulates queries on the permissions table. Permissions
// are leaf entities: they are granted to roles, never directly to users.
type PermissionRepo struct{ DB *sql.DB }

func NewPermissionRepo(db *sql.DB) *PermissionRepo { return &PermissionRepo{DB: db} }

// Create inserts a new permission and returns it with the generated id.
func (r *PermissionRepo) Create(ctx context.Context, name, description, category string) (model.Permission, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO permissions (name, description, category) VALUES (?,?,?)",
		name, nullable(description), nullable(category))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Permission{}, ErrPermissionExists
		}
		return model.Permission{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Permission{}, err
	}
	return model.Permission{ID: uint64(id), Name: name, Description: description, Category: category}, nil
}

// GetByName fetches a permission by its unique name.
func (r *PermissionRepo) GetByName(ctx context.Context, name string) (model.Permission, error) {
	var p model.Permission
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, COALESCE(description, ''), COALESCE(category, '') FROM permissions WHERE name=? LIMIT 1",
		name).Scan(&p.ID, &p.Name, &p.Description, &p.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Permission{}, ErrPermissionNotFound
	}
	return p, err
}

// List returns all permissions ordered by id.
func (r *PermissionRepo) List(ctx context.Context) ([]model.Permission, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, COALESCE(description, ''), COALESCE(category, '') FROM permissions ORDER BY id")
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
