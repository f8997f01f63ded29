package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rezmor/todo-rest-api/internal/model"
	"github.com/rezmor/todo-rest-api/internal/utils"
)

// UserStore is the slice of the user repository the auth core needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByOAuth(ctx context.Context, provider, oauthID string) (model.User, error)
	CreateOAuth(ctx context.Context, email, name, avatarURL, provider, oauthID string) (uint64, error)
}

// Verifier checks an email/password pair against the stored bcrypt hash.
// It is read-only: no lockouts, no attempt counters.
type Verifier struct {
	users UserStore
}

func NewVerifier(users UserStore) *Verifier { return &Verifier{users: users} }

// Verify returns the user's id when the password matches. Unknown emails
// yield ErrNotFound; a wrong password (or an OAuth-only account with no
// password hash) yields ErrUnauthorized. Other database errors propagate
// untouched.
func (v *Verifier) Verify(ctx context.Context, email, password string) (uint64, error) {
	u, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if u.PasswordHash == "" || !utils.VerifyPassword(u.PasswordHash, password) {
		return 0, ErrUnauthorized
	}
	return u.ID, nil
}
