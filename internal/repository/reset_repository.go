package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rezmor/todo-rest-api/internal/model"
)

// ResetRepo persists single-use password-reset tokens (hashed).
type ResetRepo struct{ DB *sql.DB }

func NewResetRepo(db *sql.DB) *ResetRepo { return &ResetRepo{DB: db} }

// Create inserts a reset-token hash row for the user.
func (r *ResetRepo) Create(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_resets (user_id, token_hash, expires_at) VALUES ($1,$2,$3)",
		userID, tokenHash, exp)
	return err
}

// FindActiveByHash returns the unused, unexpired row matching the hash.
// Returns sql.ErrNoRows when the token is unknown, used or expired.
func (r *ResetRepo) FindActiveByHash(ctx context.Context, tokenHash string) (model.PasswordReset, error) {
	var p model.PasswordReset
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, used, created_at
		 FROM password_resets
		 WHERE token_hash=$1 AND used=false AND expires_at > now() LIMIT 1`,
		tokenHash).Scan(&p.ID, &p.UserID, &p.TokenHash, &p.ExpiresAt, &p.Used, &p.CreatedAt)
	return p, err
}

// MarkUsed flips the used flag so the token cannot be redeemed twice.
func (r *ResetRepo) MarkUsed(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE password_resets SET used=true WHERE id=$1", id)
	return err
}
