package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rezmor/todo-rest-api/internal/model"
)

// TokenRepo persists refresh-token hashes (single 'refresh_token' column).
// Uniqueness per user is not enforced here; the session layer deletes all
// prior rows before inserting a new one.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store appends one refresh-token hash row for the user.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, refresh_token, expires_at, updated_at) VALUES ($1,$2,$3,now())",
		userID, tokenHash, exp)
	return err
}

// FindActiveByUser returns the user's single non-revoked row. The filter
// is revoked=false only; expires_at is stored but not checked on this
// path, so expiry is bounded by the delete-all on the next login. Returns
// sql.ErrNoRows when the user has no active row.
func (r *TokenRepo) FindActiveByUser(ctx context.Context, userID uint64) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, refresh_token, expires_at, created_at, updated_at, revoked
		 FROM refresh_tokens WHERE user_id=$1 AND revoked=false LIMIT 1`,
		userID).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt, &t.Revoked)
	return t, err
}

// DeleteByUser hard-deletes all refresh-token rows for the user. Deleting
// when no rows exist is not an error.
func (r *TokenRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=$1", userID)
	return err
}
