package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rezmor/todo-rest-api/internal/model"
)

// RefreshTokenStore persists hashed refresh tokens. The store does not
// enforce one-row-per-user; Session does, by deleting before inserting.
type RefreshTokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	FindActiveByUser(ctx context.Context, userID uint64) (model.RefreshToken, error)
	DeleteByUser(ctx context.Context, userID uint64) error
}

// ListProvisioner creates the default list for a freshly provisioned
// OAuth account.
type ListProvisioner interface {
	Create(ctx context.Context, ownerID uint64, title string) (model.List, error)
}

// TokenPair is the transient result of a successful login: two signed
// strings handed to the transport layer for cookie delivery. It is never
// persisted; only the refresh token's hash reaches the database.
type TokenPair struct {
	Access  Token
	Refresh Token
}

// Profile is the fixed-shape record adapted from an external OAuth
// provider's payload before it reaches the session layer.
type Profile struct {
	Provider    string
	ProviderID  string
	Email       string
	DisplayName string
	AvatarURL   string
}

// DefaultListTitle names the list provisioned for every new account.
const DefaultListTitle = "My Tasks"

// Session composes the verifier, issuer and token store into the login,
// rotation and refresh flows.
type Session struct {
	verifier *Verifier
	issuer   *Issuer
	tokens   RefreshTokenStore
	users    UserStore
	lists    ListProvisioner
}

func NewSession(v *Verifier, i *Issuer, t RefreshTokenStore, u UserStore, l ListProvisioner) *Session {
	return &Session{verifier: v, issuer: i, tokens: t, users: u, lists: l}
}

// Login verifies credentials and issues a fresh token pair, replacing any
// prior refresh token of the user.
func (s *Session) Login(ctx context.Context, email, password string) (TokenPair, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return TokenPair{}, ErrBadRequest
	}
	userID, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return TokenPair{}, err
	}
	return s.GetTokens(ctx, userID)
}

// GetTokens is the rotation primitive shared by login, OAuth login and
// registration auto-login. It deletes every stored refresh token for the
// user, issues a new pair and persists the new refresh token's hash.
//
// The delete and insert are two sequential statements, not a transaction.
// A crash in between leaves the user with zero valid refresh tokens,
// which fails toward a forced re-login rather than an extra live session.
func (s *Session) GetTokens(ctx context.Context, userID uint64) (TokenPair, error) {
	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return TokenPair{}, err
	}
	access, err := s.issuer.IssueAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issuer.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, err
	}
	if access.Value == "" || refresh.Value == "" {
		return TokenPair{}, ErrInternal
	}
	if err := s.tokens.Store(ctx, userID, HashToken(refresh.Value), refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access
// token only. The stored refresh-token row is left untouched: the
// long-lived token rotates on full login, not here. ErrNotFound when the
// user has no active row, ErrBadRequest when the bearer token does not
// match the stored hash.
func (s *Session) RefreshAccessToken(ctx context.Context, bearer string, userID uint64) (Token, error) {
	rec, err := s.tokens.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Token{}, ErrNotFound
		}
		return Token{}, err
	}
	if !tokenMatches(bearer, rec.TokenHash) {
		return Token{}, ErrBadRequest
	}
	access, err := s.issuer.IssueAccess(userID)
	if err != nil {
		return Token{}, err
	}
	return access, nil
}

// OAuthLogin signs in a user identified by an external provider profile,
// creating the account (and its default list) on first sight, then issues
// tokens exactly like a password login.
func (s *Session) OAuthLogin(ctx context.Context, p Profile) (TokenPair, error) {
	if p.Provider == "" || p.ProviderID == "" {
		return TokenPair{}, ErrBadRequest
	}
	u, err := s.users.GetByOAuth(ctx, p.Provider, p.ProviderID)
	switch {
	case err == nil:
		return s.GetTokens(ctx, u.ID)
	case errors.Is(err, sql.ErrNoRows):
		// first sign-in: provision the account
	default:
		return TokenPair{}, err
	}

	name := deriveName(p.DisplayName, p.Email)
	userID, err := s.users.CreateOAuth(ctx, p.Email, name, p.AvatarURL, p.Provider, p.ProviderID)
	if err != nil {
		return TokenPair{}, err
	}
	if _, err := s.lists.Create(ctx, userID, DefaultListTitle); err != nil {
		return TokenPair{}, err
	}
	return s.GetTokens(ctx, userID)
}

// Logout deletes all refresh tokens of the user, ending the session on
// every device.
func (s *Session) Logout(ctx context.Context, userID uint64) error {
	return s.tokens.DeleteByUser(ctx, userID)
}

// deriveName collapses a provider display name into a usable account
// name, falling back to the email's local part.
func deriveName(display, email string) string {
	name := strings.Join(strings.Fields(display), " ")
	if name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
