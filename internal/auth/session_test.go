package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rezmor/todo-rest-api/internal/model"
	"github.com/rezmor/todo-rest-api/internal/utils"
)

// ---- in-memory fakes ----

type fakeTokenStore struct {
	rows   []model.RefreshToken
	nextID uint64
}

func (f *fakeTokenStore) Store(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.nextID++
	f.rows = append(f.rows, model.RefreshToken{
		ID: f.nextID, UserID: userID, TokenHash: tokenHash, ExpiresAt: exp,
	})
	return nil
}

func (f *fakeTokenStore) FindActiveByUser(_ context.Context, userID uint64) (model.RefreshToken, error) {
	for _, r := range f.rows {
		if r.UserID == userID && !r.Revoked {
			return r, nil
		}
	}
	return model.RefreshToken{}, sql.ErrNoRows
}

func (f *fakeTokenStore) DeleteByUser(_ context.Context, userID uint64) error {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeTokenStore) countFor(userID uint64) int {
	n := 0
	for _, r := range f.rows {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

type fakeUserStore struct {
	users  []model.User
	nextID uint64
}

func (f *fakeUserStore) add(u model.User) model.User {
	f.nextID++
	u.ID = f.nextID
	f.users = append(f.users, u)
	return u
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) GetByOAuth(_ context.Context, provider, oauthID string) (model.User, error) {
	for _, u := range f.users {
		if u.OAuthProvider == provider && u.OAuthID == oauthID {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) CreateOAuth(_ context.Context, email, name, avatarURL, provider, oauthID string) (uint64, error) {
	u := f.add(model.User{
		Email: email, Name: name, AvatarURL: avatarURL,
		OAuthProvider: provider, OAuthID: oauthID,
	})
	return u.ID, nil
}

type fakeListStore struct {
	created []model.List
}

func (f *fakeListStore) Create(_ context.Context, ownerID uint64, title string) (model.List, error) {
	l := model.List{ID: uint64(len(f.created) + 1), OwnerID: ownerID, Title: title}
	f.created = append(f.created, l)
	return l, nil
}

// ---- fixture ----

type fixture struct {
	users   *fakeUserStore
	tokens  *fakeTokenStore
	lists   *fakeListStore
	session *Session
	clock   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := &fakeUserStore{}
	tokens := &fakeTokenStore{}
	lists := &fakeListStore{}

	issuer := NewIssuer(IssuerConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	// Deterministic, advanceable clock so consecutive issuances never
	// collide on the same iat second.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	return &fixture{
		users:   users,
		tokens:  tokens,
		lists:   lists,
		session: NewSession(NewVerifier(users), issuer, tokens, users, lists),
		clock:   &now,
	}
}

func (f *fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func (f *fixture) addPasswordUser(t *testing.T, email, password string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	return f.users.add(model.User{Email: email, PasswordHash: hash})
}

// ---- tests ----

func TestLoginIssuesPairAndSingleRow(t *testing.T) {
	f := newFixture(t)
	alice := f.addPasswordUser(t, "alice@example.com", "Password123")

	pair, err := f.session.Login(context.Background(), "alice@example.com", "Password123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access.Value)
	require.NotEmpty(t, pair.Refresh.Value)
	require.NotEqual(t, pair.Access.Value, pair.Refresh.Value)

	// exactly one stored row, and its hash matches the issued token
	require.Equal(t, 1, f.tokens.countFor(alice.ID))
	rec, err := f.tokens.FindActiveByUser(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Equal(t, HashToken(pair.Refresh.Value), rec.TokenHash)
}

func TestLoginMissingFields(t *testing.T) {
	f := newFixture(t)
	f.addPasswordUser(t, "alice@example.com", "Password123")

	_, err := f.session.Login(context.Background(), "", "Password123")
	require.ErrorIs(t, err, ErrBadRequest)
	_, err = f.session.Login(context.Background(), "alice@example.com", "")
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.addPasswordUser(t, "alice@example.com", "Password123")

	_, err := f.session.Login(context.Background(), "alice@example.com", "nope")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.Login(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetTokensRotationInvariant(t *testing.T) {
	f := newFixture(t)
	alice := f.addPasswordUser(t, "alice@example.com", "Password123")

	var last TokenPair
	for i := 0; i < 3; i++ {
		f.advance(time.Second)
		pair, err := f.session.GetTokens(context.Background(), alice.ID)
		require.NoError(t, err)
		last = pair
		require.Equal(t, 1, f.tokens.countFor(alice.ID))
	}
	rec, err := f.tokens.FindActiveByUser(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Equal(t, HashToken(last.Refresh.Value), rec.TokenHash)
}

func TestRefreshReturnsNewAccessOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.addPasswordUser(t, "alice@example.com", "Password123")

	pair, err := f.session.Login(context.Background(), "alice@example.com", "Password123")
	require.NoError(t, err)

	before, err := f.tokens.FindActiveByUser(context.Background(), alice.ID)
	require.NoError(t, err)

	f.advance(time.Second)
	access, err := f.session.RefreshAccessToken(context.Background(), pair.Refresh.Value, alice.ID)
	require.NoError(t, err)
	require.NotEmpty(t, access.Value)
	require.NotEqual(t, pair.Access.Value, access.Value)

	// the stored refresh row is untouched: same hash, same row count
	after, err := f.tokens.FindActiveByUser(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Equal(t, before.TokenHash, after.TokenHash)
	require.Equal(t, 1, f.tokens.countFor(alice.ID))
}

func TestRefreshTamperedToken(t *testing.T) {
	f := newFixture(t)
	alice := f.addPasswordUser(t, "alice@example.com", "Password123")

	pair, err := f.session.Login(context.Background(), "alice@example.com", "Password123")
	require.NoError(t, err)

	_, err = f.session.RefreshAccessToken(context.Background(), pair.Refresh.Value+"x", alice.ID)
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestRefreshWithoutPriorLogin(t *testing.T) {
	f := newFixture(t)
	bob := f.addPasswordUser(t, "bob@example.com", "Password123")

	_, err := f.session.RefreshAccessToken(context.Background(), "anything", bob.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSecondLoginInvalidatesFirstRefreshToken(t *testing.T) {
	f := newFixture(t)
	alice := f.addPasswordUser(t, "alice@example.com", "Password123")

	first, err := f.session.Login(context.Background(), "alice@example.com", "Password123")
	require.NoError(t, err)

	f.advance(time.Second)
	_, err = f.session.Login(context.Background(), "alice@example.com", "Password123")
	require.NoError(t, err)

	_, err = f.session.RefreshAccessToken(context.Background(), first.Refresh.Value, alice.ID)
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestDeleteByUserIdempotent(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.tokens.DeleteByUser(context.Background(), 42))
	require.Equal(t, 0, f.tokens.countFor(42))
}

func TestOAuthLoginFirstSightProvisionsAccount(t *testing.T) {
	f := newFixture(t)

	pair, err := f.session.OAuthLogin(context.Background(), Profile{
		Provider:    "google",
		ProviderID:  "sub-123",
		Email:       "carol@example.com",
		DisplayName: "  Carol   Danvers ",
		AvatarURL:   "https://img.example.com/carol.png",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access.Value)
	require.NotEmpty(t, pair.Refresh.Value)

	u, err := f.users.GetByOAuth(context.Background(), "google", "sub-123")
	require.NoError(t, err)
	require.Equal(t, "Carol Danvers", u.Name)
	require.Equal(t, 1, f.tokens.countFor(u.ID))

	// default list provisioned exactly once
	require.Len(t, f.lists.created, 1)
	require.Equal(t, u.ID, f.lists.created[0].OwnerID)
	require.Equal(t, DefaultListTitle, f.lists.created[0].Title)
}

func TestOAuthLoginExistingAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.OAuthLogin(context.Background(), Profile{
		Provider: "google", ProviderID: "sub-123", Email: "carol@example.com",
	})
	require.NoError(t, err)
	f.advance(time.Second)
	_, err = f.session.OAuthLogin(context.Background(), Profile{
		Provider: "google", ProviderID: "sub-123", Email: "carol@example.com",
	})
	require.NoError(t, err)

	require.Len(t, f.users.users, 1)
	require.Len(t, f.lists.created, 1)
	require.Equal(t, 1, f.tokens.countFor(f.users.users[0].ID))
}

func TestOAuthLoginMissingProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.OAuthLogin(context.Background(), Profile{Email: "x@example.com"})
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestLogoutDeletesAllRows(t *testing.T) {
	f := newFixture(t)
	alice := f.addPasswordUser(t, "alice@example.com", "Password123")

	_, err := f.session.Login(context.Background(), "alice@example.com", "Password123")
	require.NoError(t, err)
	require.NoError(t, f.session.Logout(context.Background(), alice.ID))
	require.Equal(t, 0, f.tokens.countFor(alice.ID))

	_, err = f.session.RefreshAccessToken(context.Background(), "anything", alice.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeriveName(t *testing.T) {
	require.Equal(t, "Jane Doe", deriveName("Jane Doe", "jane@example.com"))
	require.Equal(t, "jane", deriveName("", "jane@example.com"))
	require.Equal(t, "Jane", deriveName("  Jane  ", ""))
}
