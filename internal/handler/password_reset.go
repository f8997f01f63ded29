package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/rezmor/todo-rest-api/internal/auth"
	"github.com/rezmor/todo-rest-api/internal/config"
	"github.com/rezmor/todo-rest-api/internal/queue"
	"github.com/rezmor/todo-rest-api/internal/repository"
	queue_publisher "github.com/rezmor/todo-rest-api/internal/service"
)

const resetTokenTTL = 30 * time.Minute

// ResetHandler implements the password-reset flow. The raw token travels
// only by email; the database sees its SHA-256 hash. A successful reset
// also deletes the user's refresh tokens so every open session has to log
// in again with the new password.
type ResetHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Resets *repository.ResetRepo
	Tokens *repository.TokenRepo
}

func NewResetHandler(cfg config.Config, u *repository.UserRepo, r *repository.ResetRepo, t *repository.TokenRepo) *ResetHandler {
	return &ResetHandler{Cfg: cfg, Users: u, Resets: r, Tokens: t}
}

type resetRequestReq struct {
	Email string `json:"email"`
}

type resetConfirmReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Request creates a reset token and queues the email. The response is
// 202 whether or not the email exists, so the endpoint cannot be used to
// probe which addresses are registered.
func (h *ResetHandler) Request(c echo.Context) error {
	var req resetRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusAccepted, echo.Map{"status": "accepted"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	token := uuid.NewString()
	exp := time.Now().UTC().Add(resetTokenTTL)
	if err := h.Resets.Create(ctx, u.ID, auth.HashToken(token), exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reset failed"})
	}

	// Mail delivery is best-effort and must not block the response; the
	// consumer picks the event up from the durable queue.
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		ev := queue.PasswordResetRequestedEvent{
			UserID:      u.ID,
			Email:       u.Email,
			Name:        u.Name,
			ResetToken:  token,
			ExpiresAt:   exp.Format(time.RFC3339),
			RequestedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := queue_publisher.PublishPasswordResetRequested(pubCtx, ev); err != nil {
			log.Error().Err(err).Uint64("user_id", u.ID).Msg("password reset event publish failed")
		}
	}()

	return c.JSON(http.StatusAccepted, echo.Map{"status": "accepted"})
}

// Confirm redeems a reset token and sets the new password.
func (h *ResetHandler) Confirm(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Resets.FindActiveByHash(ctx, auth.HashToken(req.Token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Users.UpdatePassword(ctx, rec.UserID, req.Password, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	if err := h.Resets.MarkUsed(ctx, rec.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update reset failed"})
	}
	// force re-login everywhere
	if err := h.Tokens.DeleteByUser(ctx, rec.UserID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke sessions failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
