package model

import "time"

// User represents an application user record as stored in the `users` table.
// Each field corresponds to a column in the database. The password hash is
// never serialized into API responses; handlers define separate response
// types with appropriate JSON tags.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	Username     – unique short handle.
//	FullName     – display name.
//	PasswordHash – bcrypt hashed password.
//	IsActive     – whether the account is active. Inactive users cannot log
//	               in and are rejected by the authentication middleware.
//	IsVerified   – whether the email address has been verified.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Username     string    // users.username
	FullName     string    // users.full_name
	PasswordHash string    // users.password_hash
	IsActive     bool      // users.is_active
	IsVerified   bool      // users.is_verified
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Role represents a row in the `roles` table. Roles group permissions and
// are attached to users through the `user_roles` join table. Role names are
// unique and treated as immutable once referenced by issued tokens.
//
// Fields:
//
//	ID          – numeric identifier of the role.
//	Name        – unique role name (e.g. "admin", "manager", "employee").
//	Description – optional human-readable description.
type Role struct {
	ID          uint64 // roles.id
	Name        string // roles.name
	Description string // roles.description (empty when NULL)
}

// Permission represents a row in the `permissions` table. Permissions are
// granted to roles through the `role_permissions` join table and never
// directly to users, so access changes propagate by re-assigning roles.
//
// Fields:
//
//	ID          – numeric identifier of the permission.
//	Name        – unique permission name (e.g. "employee:create").
//	Description – optional human-readable description.
//	Category    – free-form grouping label ("employee", "user") used for
//	              display and admin organization only.
type Permission struct {
	ID          uint64 // permissions.id
	Name        string // permissions.name
	Description string // permissions.description (empty when NULL)
	Category    string // permissions.category (empty when NULL)
}
