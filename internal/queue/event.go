// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers them.
package queue

// PasswordResetRequestedEvent is published when a user asks for a
// password reset. It carries everything the mail consumer needs to
// compose the message without querying the primary database. ResetToken
// is the plaintext single-use token; only its hash is stored server-side.
type PasswordResetRequestedEvent struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	ResetToken  string `json:"reset_token"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}
