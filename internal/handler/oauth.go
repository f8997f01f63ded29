package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/rezmor/todo-rest-api/internal/auth"
	"github.com/rezmor/todo-rest-api/internal/config"
)

const stateCookie = "oauth_state"

// OAuthHandler implements Google sign-in. The authorization code is
// exchanged server-side and the ID token verified against Google's JWKS
// before the claims are adapted into the fixed-shape profile the session
// layer accepts.
type OAuthHandler struct {
	Cfg      config.Config
	Session  *auth.Session
	Auth     *AuthHandler // reused for cookie delivery
	provider *oidc.Provider
	oauth    oauth2.Config
}

// NewOAuthHandler performs OIDC discovery for Google. It returns nil
// (no handler, routes not registered) when the client id is not
// configured, so the rest of the API works without OAuth credentials.
func NewOAuthHandler(ctx context.Context, cfg config.Config, s *auth.Session, a *AuthHandler) (*OAuthHandler, error) {
	if cfg.GoogleClientID == "" {
		return nil, nil
	}
	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, err
	}
	return &OAuthHandler{
		Cfg:      cfg,
		Session:  s,
		Auth:     a,
		provider: provider,
		oauth: oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// GoogleLogin redirects the browser to Google's consent page with a
// random state bound to a short-lived cookie.
func (h *OAuthHandler) GoogleLogin(c echo.Context) error {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "state generation failed"})
	}
	state := hex.EncodeToString(buf)

	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode, // must survive the cross-site redirect back
	})
	return c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

// GoogleCallback finishes the flow: state check, code exchange, ID-token
// verification, then a normal session login for the adapted profile.
func (h *OAuthHandler) GoogleCallback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if errParam := c.QueryParam("error"); errParam != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "authorization failed: " + errParam})
	}
	if state == "" || code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing code or state"})
	}
	ck, err := c.Cookie(stateCookie)
	if err != nil || ck.Value != state {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tok, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token exchange failed"})
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no id token in response"})
	}
	idToken, err := h.provider.Verifier(&oidc.Config{ClientID: h.oauth.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "id token verification failed"})
	}

	var claims struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "claim extraction failed"})
	}

	pair, err := h.Session.OAuthLogin(ctx, auth.Profile{
		Provider:    "google",
		ProviderID:  claims.Sub,
		Email:       claims.Email,
		DisplayName: claims.Name,
		AvatarURL:   claims.Picture,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "oauth login failed"})
	}
	h.Auth.setAuthCookies(c, pair)

	return c.JSON(http.StatusOK, echo.Map{
		"access":  tokenPart{Token: pair.Access.Value, Expires: pair.Access.Exp},
		"refresh": tokenPart{Token: pair.Refresh.Value, Expires: pair.Refresh.Exp},
	})
}
