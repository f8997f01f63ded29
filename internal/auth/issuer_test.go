package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testIssuer() *Issuer {
	return NewIssuer(IssuerConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

func parseSub(t *testing.T, raw, secret string) uint64 {
	t.Helper()
	tok, err := jwt.Parse(raw, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)
	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	sub, ok := claims["sub"].(float64)
	require.True(t, ok)
	return uint64(sub)
}

func TestIssueAccessCarriesSubjectAndExpiry(t *testing.T) {
	i := testIssuer()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	i.now = func() time.Time { return now }

	tok, err := i.IssueAccess(7)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	require.Equal(t, now.Add(time.Hour), tok.Exp)
	require.Equal(t, uint64(7), parseSub(t, tok.Value, "access-secret"))
}

func TestIssueRefreshUsesOwnSecret(t *testing.T) {
	i := testIssuer()

	tok, err := i.IssueRefresh(7)
	require.NoError(t, err)

	// verifies with the refresh secret, not with the access secret
	require.Equal(t, uint64(7), parseSub(t, tok.Value, "refresh-secret"))
	_, err = jwt.Parse(tok.Value, func(tk *jwt.Token) (interface{}, error) {
		return []byte("access-secret"), nil
	})
	require.Error(t, err)
}

func TestIssuedTokensDifferAcrossTime(t *testing.T) {
	i := testIssuer()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	i.now = func() time.Time { return now }

	first, err := i.IssueRefresh(7)
	require.NoError(t, err)
	now = now.Add(time.Second)
	second, err := i.IssueRefresh(7)
	require.NoError(t, err)
	require.NotEqual(t, first.Value, second.Value)
}

func TestRefreshSubject(t *testing.T) {
	i := testIssuer()

	tok, err := i.IssueRefresh(42)
	require.NoError(t, err)

	sub, err := i.RefreshSubject(tok.Value)
	require.NoError(t, err)
	require.Equal(t, uint64(42), sub)
}

func TestRefreshSubjectRejectsAccessToken(t *testing.T) {
	i := testIssuer()

	tok, err := i.IssueAccess(42)
	require.NoError(t, err)

	_, err = i.RefreshSubject(tok.Value)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshSubjectRejectsGarbage(t *testing.T) {
	i := testIssuer()

	_, err := i.RefreshSubject("not-a-jwt")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestHashTokenComparison(t *testing.T) {
	h := HashToken("bearer-value")
	require.Len(t, h, 64)
	require.True(t, tokenMatches("bearer-value", h))
	require.False(t, tokenMatches("bearer-valu", h))
	require.False(t, tokenMatches("", h))
}
