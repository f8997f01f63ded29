package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rezmor/todo-rest-api/internal/model"
	"github.com/rezmor/todo-rest-api/internal/utils"
)

// UserRepo reads and writes rows in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, COALESCE(password_hash,''), name, COALESCE(avatar_url,''),
	COALESCE(oauth_provider,''), COALESCE(oauth_id,''), created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.AvatarURL,
		&u.OAuthProvider, &u.OAuthID, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a password-based user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, name string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var id uint64
	err = r.DB.QueryRowContext(ctx,
		"INSERT INTO users (email, password_hash, name) VALUES ($1,$2,$3) RETURNING id",
		email, hash, name).Scan(&id)
	if err != nil {
		// 23505 is Postgres unique_violation; users.email is the only
		// unique constraint this insert can hit.
		if strings.Contains(err.Error(), "23505") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	return id, nil
}

// CreateOAuth inserts a user provisioned from an external identity
// provider. Such accounts start without a password hash.
func (r *UserRepo) CreateOAuth(ctx context.Context, email, name, avatarURL, provider, oauthID string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, name, avatar_url, oauth_provider, oauth_id)
		 VALUES ($1,$2,NULLIF($3,''),$4,$5) RETURNING id`,
		email, name, avatarURL, provider, oauthID).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "23505") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=$1 LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=$1 LIMIT 1", id))
}

// GetByOAuth fetches a user by external provider identity.
func (r *UserRepo) GetByOAuth(ctx context.Context, provider, oauthID string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE oauth_provider=$1 AND oauth_id=$2 LIMIT 1",
		provider, oauthID))
}

// UpdateAvatar records the public URL of an uploaded avatar.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id uint64, avatarURL string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar_url=$1, updated_at=now() WHERE id=$2", avatarURL, id)
	return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=$1, updated_at=now() WHERE id=$2", hash, id)
	return err
}
