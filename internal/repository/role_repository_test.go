package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoleRepo(t *testing.T) (*RoleRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRoleRepo(db), mock
}

func TestRoleRepoCreate(t *testing.T) {
	repo, mock := newRoleRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roles (name, description) VALUES (?,?)")).
		WithArgs("manager", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))

	role, err := repo.Create(context.Background(), "manager", "Manages employees")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), role.ID)
	assert.Equal(t, "manager", role.Name)
	assert.Equal(t, "Manages employees", role.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepoCreateDuplicate(t *testing.T) {
	repo, mock := newRoleRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roles")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'manager' for key 'roles.name'"))

	_, err := repo.Create(context.Background(), "manager", "")
	require.ErrorIs(t, err, ErrRoleExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepoGetByNameMissing(t *testing.T) {
	repo, mock := newRoleRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, COALESCE(description, '') FROM roles WHERE name=? LIMIT 1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}))

	_, err := repo.GetByName(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrRoleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepoList(t *testing.T) {
	repo, mock := newRoleRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "description"}).
		AddRow(uint64(1), "admin", "Full administrative access").
		AddRow(uint64(2), "manager", "").
		AddRow(uint64(3), "employee", "")
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, COALESCE(description, '') FROM roles ORDER BY id")).
		WillReturnRows(rows)

	roles, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, "admin", roles[0].Name)
	assert.Equal(t, "employee", roles[2].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepoAssignPermission(t *testing.T) {
	repo, mock := newRoleRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM roles WHERE id=?")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM permissions WHERE id=?")).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM role_permissions WHERE role_id=? AND permission_id=?")).
		WithArgs(uint64(2), uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO role_permissions (role_id, permission_id) VALUES (?,?)")).
		WithArgs(uint64(2), uint64(4)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ok, err := repo.AssignPermission(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepoAssignPermissionRepeat(t *testing.T) {
	repo, mock := newRoleRepo(t)

	// A repeated grant succeeds without inserting a second edge.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM roles WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM permissions WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM role_permissions WHERE role_id=? AND permission_id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.AssignPermission(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepoAssignPermissionMissingEndpoint(t *testing.T) {
	repo, mock := newRoleRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM roles WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := repo.AssignPermission(context.Background(), 99, 4)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepoRemovePermission(t *testing.T) {
	repo, mock := newRoleRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM role_permissions WHERE role_id=? AND permission_id=?")).
		WithArgs(uint64(2), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.RemovePermission(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepoPermissionsForRole(t *testing.T) {
	repo, mock := newRoleRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "category"}).
		AddRow(uint64(1), "employee:create", "", "employee").
		AddRow(uint64(2), "employee:read", "", "employee")
	mock.ExpectQuery("SELECT p.id, p.name, COALESCE\\(p.description, ''\\)").
		WithArgs(uint64(2)).
		WillReturnRows(rows)

	perms, err := repo.PermissionsForRole(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.Equal(t, "employee:create", perms[0].Name)
	assert.Equal(t, "employee", perms[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepoCreateAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewPermissionRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO permissions (name, description, category) VALUES (?,?,?)")).
		WithArgs("employee:read", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))

	p, err := repo.Create(context.Background(), "employee:read", "Read employee records", "employee")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), p.ID)
	assert.Equal(t, "employee", p.Category)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, COALESCE(description, ''), COALESCE(category, '') FROM permissions ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "category"}).
			AddRow(uint64(5), "employee:read", "Read employee records", "employee"))

	perms, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "employee:read", perms[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepoCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewPermissionRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO permissions")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'employee:read' for key 'permissions.name'"))

	_, err = repo.Create(context.Background(), "employee:read", "", "")
	require.ErrorIs(t, err, ErrPermissionExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
