package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/rezmor/todo-rest-api/internal/auth"
	"github.com/rezmor/todo-rest-api/internal/config"
	"github.com/rezmor/todo-rest-api/internal/model"
)

// memTokenStore is a minimal in-memory auth.RefreshTokenStore for
// exercising the transport layer without a database.
type memTokenStore struct {
	rows []model.RefreshToken
}

func (m *memTokenStore) Store(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	m.rows = append(m.rows, model.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: exp})
	return nil
}

func (m *memTokenStore) FindActiveByUser(_ context.Context, userID uint64) (model.RefreshToken, error) {
	for _, r := range m.rows {
		if r.UserID == userID && !r.Revoked {
			return r, nil
		}
	}
	return model.RefreshToken{}, sql.ErrNoRows
}

func (m *memTokenStore) DeleteByUser(_ context.Context, userID uint64) error {
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	return nil
}

type memUserStore struct{}

func (memUserStore) GetByEmail(context.Context, string) (model.User, error) {
	return model.User{}, sql.ErrNoRows
}
func (memUserStore) GetByOAuth(context.Context, string, string) (model.User, error) {
	return model.User{}, sql.ErrNoRows
}
func (memUserStore) CreateOAuth(context.Context, string, string, string, string, string) (uint64, error) {
	return 1, nil
}

type memListStore struct{}

func (memListStore) Create(_ context.Context, ownerID uint64, title string) (model.List, error) {
	return model.List{ID: 1, OwnerID: ownerID, Title: title}, nil
}

func newTestAuthHandler() (*AuthHandler, *auth.Session) {
	issuer := auth.NewIssuer(auth.IssuerConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	users := memUserStore{}
	session := auth.NewSession(auth.NewVerifier(users), issuer, &memTokenStore{}, users, memListStore{})
	h := &AuthHandler{Cfg: config.Config{}, Session: session, Issuer: issuer}
	return h, session
}

func doRefresh(t *testing.T, h *AuthHandler, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h.Refresh(e.NewContext(req, rec)))
	return rec
}

func TestRefreshWithoutCookie(t *testing.T) {
	h, _ := newTestAuthHandler()

	rec := doRefresh(t, h, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshHappyPathSetsAccessCookie(t *testing.T) {
	h, session := newTestAuthHandler()

	pair, err := session.GetTokens(context.Background(), 7)
	require.NoError(t, err)

	rec := doRefresh(t, h, &http.Cookie{Name: "refresh_token", Value: pair.Refresh.Value})
	require.Equal(t, http.StatusOK, rec.Code)

	var found bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "access_token" {
			found = true
			require.NotEmpty(t, ck.Value)
			require.True(t, ck.HttpOnly)
			require.Equal(t, http.SameSiteStrictMode, ck.SameSite)
		}
	}
	require.True(t, found, "expected an access_token cookie")
}

func TestRefreshGarbageCookie(t *testing.T) {
	h, _ := newTestAuthHandler()

	rec := doRefresh(t, h, &http.Cookie{Name: "refresh_token", Value: "not-a-jwt"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshValidTokenNoStoredRow(t *testing.T) {
	h, session := newTestAuthHandler()

	pair, err := session.GetTokens(context.Background(), 7)
	require.NoError(t, err)
	require.NoError(t, session.Logout(context.Background(), 7))

	rec := doRefresh(t, h, &http.Cookie{Name: "refresh_token", Value: pair.Refresh.Value})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
