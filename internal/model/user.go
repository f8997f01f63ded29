package model

import "time"

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column in the database. The json
// tags are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// PasswordHash is empty for accounts created through an OAuth provider
// that never set a password. OAuthProvider/OAuthID identify the external
// account for such users and are empty for password accounts.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique email address (stored lowercased).
//  PasswordHash  – bcrypt hashed password ("" for OAuth-only accounts).
//  Name          – display name shown in the UI.
//  AvatarURL     – public URL of the uploaded avatar, if any.
//  OAuthProvider – external identity provider name (e.g. "google").
//  OAuthID       – subject identifier at the external provider.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // users.id
	Email         string    // users.email
	PasswordHash  string    // users.password_hash (nullable in SQL)
	Name          string    // users.name
	AvatarURL     string    // users.avatar_url (nullable in SQL)
	OAuthProvider string    // users.oauth_provider (nullable in SQL)
	OAuthID       string    // users.oauth_id (nullable in SQL)
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user. The plain token is never stored; only
// its SHA-256 hash. The table allows several rows per user, but the
// session layer deletes all prior rows before inserting a new one, so at
// most one non-revoked row exists per user at rest.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value (column refresh_token).
//  ExpiresAt – expiration timestamp of the token.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
//  Revoked   – whether the token has been explicitly revoked.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.refresh_token
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
	UpdatedAt time.Time // refresh_tokens.updated_at
	Revoked   bool      // refresh_tokens.revoked
}

// PasswordReset models an entry in the `password_resets` table. A row is
// created when a user requests a password reset; only the SHA-256 hash of
// the mailed token is stored. Rows are single use: Used flips to true the
// moment the token is redeemed.
type PasswordReset struct {
	ID        uint64    // password_resets.id
	UserID    uint64    // password_resets.user_id
	TokenHash string    // password_resets.token_hash
	ExpiresAt time.Time // password_resets.expires_at
	Used      bool      // password_resets.used
	CreatedAt time.Time // password_resets.created_at
}
