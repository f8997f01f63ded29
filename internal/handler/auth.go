package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rezmor/todo-rest-api/internal/auth"
	"github.com/rezmor/todo-rest-api/internal/config"
	"github.com/rezmor/todo-rest-api/internal/repository"
)

// AuthHandler bundles dependencies for auth endpoints. The session layer
// owns all token logic; this handler only binds requests, maps error
// kinds to HTTP statuses and moves tokens in and out of cookies.
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Lists   *repository.ListRepo
	Session *auth.Session
	Issuer  *auth.Issuer
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, l *repository.ListRepo, s *auth.Session, i *auth.Issuer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Lists: l, Session: s, Issuer: i}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID     uint64 `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar_url,omitempty"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// ----- cookies -----

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

func (h *AuthHandler) setAuthCookies(c echo.Context, pair auth.TokenPair) {
	c.SetCookie(authCookie(accessCookie, pair.Access.Value, pair.Access.Exp, h.Cfg.CookieSecure))
	c.SetCookie(authCookie(refreshCookie, pair.Refresh.Value, pair.Refresh.Exp, h.Cfg.CookieSecure))
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	gone := time.Unix(0, 0)
	c.SetCookie(authCookie(accessCookie, "", gone, h.Cfg.CookieSecure))
	c.SetCookie(authCookie(refreshCookie, "", gone, h.Cfg.CookieSecure))
}

func authCookie(name, value string, exp time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Register: create user, provision the default list, and log in
// immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, strings.TrimSpace(req.Name), h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	if _, err := h.Lists.Create(ctx, uid, auth.DefaultListTitle); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "provision list failed"})
	}

	pair, err := h.Session.GetTokens(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	h.setAuthCookies(c, pair)

	return c.JSON(http.StatusCreated, authResp{
		User:    userPart{ID: uid, Email: req.Email, Name: strings.TrimSpace(req.Name)},
		Access:  tokenPart{Token: pair.Access.Value, Expires: pair.Access.Exp},
		Refresh: tokenPart{Token: pair.Refresh.Value, Expires: pair.Refresh.Exp},
	})
}

// Login: verify credentials and return a fresh pair, replacing any prior
// session of the user.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Session.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrBadRequest):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
		case errors.Is(err, auth.ErrNotFound), errors.Is(err, auth.ErrUnauthorized):
			// same body for both so login does not leak which emails exist
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
	}
	h.setAuthCookies(c, pair)

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Name: u.Name, Avatar: u.AvatarURL},
		Access:  tokenPart{Token: pair.Access.Value, Expires: pair.Access.Exp},
		Refresh: tokenPart{Token: pair.Refresh.Value, Expires: pair.Refresh.Exp},
	})
}

// Refresh: exchange the refresh-token cookie for a new access token. The
// refresh token itself is not rotated here; it only rotates on full
// login.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := ""
	if ck, err := c.Cookie(refreshCookie); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		// fallback for non-browser clients
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.Bind(&body)
		raw = strings.TrimSpace(body.RefreshToken)
	}
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	userID, err := h.Issuer.RefreshSubject(raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	access, err := h.Session.RefreshAccessToken(ctx, raw, userID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			// no active session; authentication required rather than 404
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		case errors.Is(err, auth.ErrBadRequest):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid refresh"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
		}
	}

	c.SetCookie(authCookie(accessCookie, access.Value, access.Exp, h.Cfg.CookieSecure))
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Value, Expires: access.Exp},
	})
}

// Logout: delete all refresh tokens for the current user and clear both
// cookies (protected).
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Session.Logout(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	h.clearAuthCookies(c)
	return c.NoContent(http.StatusNoContent)
}

// Me: return the authenticated user's profile (protected).
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Name: u.Name, Avatar: u.AvatarURL})
}
