package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token bundles a signed JWT string with its expiration time.
type Token struct {
	Value string    // the serialized JWT
	Exp   time.Time // UTC expiration time
}

// IssuerConfig carries the two independent signing secrets and lifetimes
// for the issuer. Access and refresh tokens are signed with distinct
// secrets so rotating one invalidates only that kind of token.
type IssuerConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Issuer mints HS256 JWTs carrying the user id as subject. It is a plain
// value constructed from config at startup; there is no package-level
// state.
type Issuer struct {
	cfg IssuerConfig
	now func() time.Time
}

// NewIssuer builds an Issuer from config. The clock defaults to time.Now
// and is swappable in tests.
func NewIssuer(cfg IssuerConfig) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

// IssueAccess signs a short-lived access token for the user. Access
// tokens are never persisted; their validity is purely signature+expiry.
func (i *Issuer) IssueAccess(userID uint64) (Token, error) {
	return i.sign(userID, i.cfg.AccessSecret, i.cfg.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token for the user with the
// refresh secret.
func (i *Issuer) IssueRefresh(userID uint64) (Token, error) {
	return i.sign(userID, i.cfg.RefreshSecret, i.cfg.RefreshTTL)
}

func (i *Issuer) sign(userID uint64, secret string, ttl time.Duration) (Token, error) {
	nowUTC := i.now().UTC()
	exp := nowUTC.Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": nowUTC.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	if signed == "" {
		return Token{}, ErrInternal
	}
	return Token{Value: signed, Exp: exp}, nil
}

// RefreshSubject parses a refresh token with the refresh secret and
// returns the user id it was issued for. Transport code uses this to
// recover the user behind a refresh cookie before the stored hash is
// checked.
func (i *Issuer) RefreshSubject(raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return []byte(i.cfg.RefreshSecret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrUnauthorized
	}
	// JWT numeric values decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrUnauthorized
	}
	return uint64(sub), nil
}
