package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hbagde424/employee-management/internal/model"
)

// UserRepo encapsulates all database queries on the users table and the
// user_roles join table (the user side of the permission graph).
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,username,full_name,password_hash,is_active,is_verified,created_at,updated_at"

// Create inserts a user and attaches the default role inside a single
// transaction so that a failure on either step leaves no partial record
// behind. The email is normalized to lower case. Duplicate email or
// username collisions surface as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, username, fullName, passwordHash, defaultRole string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, username, full_name, password_hash) VALUES (?,?,?,?)",
		email, username, fullName, passwordHash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			err = ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// The default role is seeded at startup; a missing row here means the
	// bootstrap step did not run and the registration must not go through.
	var roleID uint64
	if err = tx.QueryRowContext(ctx,
		"SELECT id FROM roles WHERE name=? LIMIT 1", defaultRole).Scan(&roleID); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role_id) VALUES (?,?)", uint64(id), roleID); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.PasswordHash,
		&u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UpdatePassword replaces the stored password hash. Outstanding tokens are
// not invalidated; they remain valid until natural expiry.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		passwordHash, id)
	return err
}

// AssignRole adds a user→role edge. It returns true when the edge exists
// after the call (including when it was already present) and false when
// either endpoint is missing. Concurrent assigns on the same edge are
// tolerated as last write wins.
func (r *UserRepo) AssignRole(ctx context.Context, userID, roleID uint64) (bool, error) {
	ok, err := r.edgeEndpointsExist(ctx, userID, roleID)
	if err != nil || !ok {
		return false, err
	}
	var n int
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_roles WHERE user_id=? AND role_id=?", userID, roleID).Scan(&n)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role_id) VALUES (?,?)", userID, roleID)
	if err != nil {
		return false, err
	}
	return true, nil
}

// RemoveRole deletes a user→role edge. It returns true only when an edge
// was actually removed.
func (r *UserRepo) RemoveRole(ctx context.Context, userID, roleID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_id=? AND role_id=?", userID, roleID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepo) edgeEndpointsExist(ctx context.Context, userID, roleID uint64) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE id=?", userID).Scan(&n); err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM roles WHERE id=?", roleID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// RolesForUser returns the user's roles ordered by role id. The ordering is
// load-bearing: the lowest-id role becomes the single role claim embedded in
// issued tokens, so it must be stable across logins.
func (r *UserRepo) RolesForUser(ctx context.Context, userID uint64) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.name, COALESCE(r.description, '')
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?
		 ORDER BY r.id`, userID)
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

// HasRole reports whether the user holds the named role.
func (r *UserRepo) HasRole(ctx context.Context, userID uint64, name string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = ? AND r.name = ?`, userID, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasPermission reports whether any of the user's roles grants the named
// permission. The lookup is transitive (user → roles → permissions); there
// is no direct user↔permission edge in the schema.
func (r *UserRepo) HasPermission(ctx context.Context, userID uint64, name string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM user_roles ur
		 JOIN role_permissions rp ON rp.role_id = ur.role_id
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE ur.user_id = ? AND p.name = ?`, userID, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
