// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published when a new user account is created. It
// contains enough information for downstream consumers (welcome email,
// analytics, audit) without querying the primary database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	RegisteredAt string `json:"registered_at"`
}
