package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rezmor/todo-rest-api/internal/repository"
	"github.com/rezmor/todo-rest-api/internal/storage"
)

// AvatarHandler lets a user attach a profile picture. Uploads go straight
// to object storage via a presigned PUT URL; the API only hands out the
// URL and records the result.
type AvatarHandler struct {
	Users *repository.UserRepo
	Store *storage.AvatarStore
}

func NewAvatarHandler(u *repository.UserRepo, s *storage.AvatarStore) *AvatarHandler {
	return &AvatarHandler{Users: u, Store: s}
}

type presignReq struct {
	ContentType string `json:"content_type"`
}

type confirmReq struct {
	Key string `json:"key"`
}

// Presign returns a presigned upload URL for a new avatar object.
func (h *AvatarHandler) Presign(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !h.Store.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "avatar storage not configured"})
	}
	var req presignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content_type must be an image type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	key, uploadURL, publicURL, err := h.Store.PresignUpload(ctx, uid, req.ContentType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "presign failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"key":        key,
		"upload_url": uploadURL,
		"public_url": publicURL,
	})
}

// Confirm records a finished upload as the user's avatar.
func (h *AvatarHandler) Confirm(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !h.Store.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "avatar storage not configured"})
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Key) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "key required"})
	}
	if !h.Store.OwnsKey(uid, req.Key) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "key does not belong to you"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	url := h.Store.PublicURL(req.Key)
	if err := h.Users.UpdateAvatar(ctx, uid, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save avatar failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar_url": url})
}
