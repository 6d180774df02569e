package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

const userSelect = "SELECT id,email,username,full_name,password_hash,is_active,is_verified,created_at,updated_at FROM users"

func userRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "username", "full_name", "password_hash",
		"is_active", "is_verified", "created_at", "updated_at",
	}).AddRow(uint64(1), "alice@example.com", "alice", "Alice Doe", "$2a$10$hash",
		true, false, now, now)
}

func TestUserRepoCreate(t *testing.T) {
	repo, mock := newUserRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO users (email, username, full_name, password_hash) VALUES (?,?,?,?)")).
		WithArgs("alice@example.com", "alice", "Alice Doe", "$2a$10$hash").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM roles WHERE name=? LIMIT 1")).
		WithArgs("employee").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(3)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles (user_id, role_id) VALUES (?,?)")).
		WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// Email is normalized before the insert.
	uid, err := repo.Create(ctx, "  Alice@Example.COM ", "alice", "Alice Doe", "$2a$10$hash", "employee")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateDuplicate(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice@example.com' for key 'users.email'"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), "alice@example.com", "alice", "Alice Doe", "h", "employee")
	require.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateRollsBackOnMissingRole(t *testing.T) {
	repo, mock := newUserRepo(t)

	// No partial user is left behind when the default role is absent.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM roles WHERE name=? LIMIT 1")).
		WithArgs("employee").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), "alice@example.com", "alice", "Alice Doe", "h", "employee")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByEmailNormalizes(t *testing.T) {
	repo, mock := newUserRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(userSelect + " WHERE email=? LIMIT 1")).
		WithArgs("alice@example.com").
		WillReturnRows(userRows(now))

	u, err := repo.GetByEmail(context.Background(), "  ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByIDMissing(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(userSelect + " WHERE id=? LIMIT 1")).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoAssignRole(t *testing.T) {
	repo, mock := newUserRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE id=?")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM roles WHERE id=?")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM user_roles WHERE user_id=? AND role_id=?")).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles (user_id, role_id) VALUES (?,?)")).
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ok, err := repo.AssignRole(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoAssignRoleIdempotent(t *testing.T) {
	repo, mock := newUserRepo(t)

	// An existing edge is reported as success without a second insert.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM roles WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM user_roles WHERE user_id=? AND role_id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.AssignRole(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoAssignRoleMissingUser(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := repo.AssignRole(context.Background(), 99, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoRemoveRole(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_roles WHERE user_id=? AND role_id=?")).
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.RemoveRole(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_roles WHERE user_id=? AND role_id=?")).
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = repo.RemoveRole(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoRolesForUserOrdered(t *testing.T) {
	repo, mock := newUserRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "description"}).
		AddRow(uint64(1), "admin", "Full administrative access").
		AddRow(uint64(3), "employee", "")
	mock.ExpectQuery("SELECT r.id, r.name, COALESCE\\(r.description, ''\\)").
		WithArgs(uint64(5)).
		WillReturnRows(rows)

	roles, err := repo.RolesForUser(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	// Lowest role id first: this ordering feeds the token's role claim.
	assert.Equal(t, "admin", roles[0].Name)
	assert.Equal(t, "employee", roles[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoHasRole(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)\\s+FROM user_roles ur\\s+JOIN roles r").
		WithArgs(uint64(5), "admin").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	has, err := repo.HasRole(context.Background(), 5, "admin")
	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoHasPermission(t *testing.T) {
	repo, mock := newUserRepo(t)

	// The permission lookup is transitive: user -> roles -> permissions.
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)\\s+FROM user_roles ur\\s+JOIN role_permissions rp").
		WithArgs(uint64(5), "employee:read").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	has, err := repo.HasPermission(context.Background(), 5, "employee:read")
	require.NoError(t, err)
	assert.True(t, has)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)\\s+FROM user_roles ur\\s+JOIN role_permissions rp").
		WithArgs(uint64(5), "employee:delete").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	has, err = repo.HasPermission(context.Background(), 5, "employee:delete")
	require.NoError(t, err)
	assert.False(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}
