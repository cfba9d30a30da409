package model

import "time"

// User represents an application user record as stored in the
// `users` table.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	Name         – display name.
//	Phone        – optional E.164 phone number for SMS notices.
//	PasswordHash – bcrypt hashed password.
//	Role         – ADMIN or USER.
//	IsActive     – whether the account is active.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `db:"id"`            // users.id
	Email        string    `db:"email"`         // users.email
	Name         string    `db:"name"`          // users.name
	Phone        *string   `db:"phone"`         // users.phone (nullable)
	PasswordHash string    `db:"password_hash"` // users.password_hash
	Role         string    `db:"role"`          // users.role
	IsActive     bool      `db:"is_active"`     // users.is_active
	CreatedAt    time.Time `db:"created_at"`    // users.created_at
	UpdatedAt    time.Time `db:"updated_at"`    // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     `db:"id"`         // refresh_tokens.id
	UserID    uint64     `db:"user_id"`    // refresh_tokens.user_id
	TokenHash string     `db:"token_hash"` // refresh_tokens.token_hash
	ExpiresAt time.Time  `db:"expires_at"` // refresh_tokens.expires_at
	RevokedAt *time.Time `db:"revoked_at"` // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  `db:"created_at"` // refresh_tokens.created_at
}
