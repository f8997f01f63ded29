package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rezmor/todo-rest-api/internal/model"
	"github.com/rezmor/todo-rest-api/internal/repository"
)

// ListHandler implements CRUD for to-do lists. Every operation is scoped
// to the authenticated owner; a list id belonging to another user behaves
// exactly like a missing id.
type ListHandler struct {
	Lists *repository.ListRepo
}

func NewListHandler(l *repository.ListRepo) *ListHandler { return &ListHandler{Lists: l} }

type listReq struct {
	Title string `json:"title"`
}

type listResp struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toListResp(l model.List) listResp {
	return listResp{ID: l.ID, Title: l.Title, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}

// Create adds a list for the current user.
func (h *ListHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req listReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Lists.Create(ctx, uid, req.Title)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create list failed"})
	}
	return c.JSON(http.StatusCreated, toListResp(l))
}

// GetAll returns one page of the current user's lists.
func (h *ListHandler) GetAll(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lists, total, err := h.Lists.ListByOwner(ctx, uid, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]listResp, 0, len(lists))
	for _, l := range lists {
		out = append(out, toListResp(l))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"lists": out,
		"meta":  pageMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// Get returns a single list owned by the current user.
func (h *ListHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Lists.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "list not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toListResp(l))
}

// Update renames a list owned by the current user.
func (h *ListHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req listReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Lists.UpdateTitle(ctx, id, uid, req.Title); err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "list not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a list and, via cascade, all its tasks.
func (h *ListHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Lists.DeleteByIDAndOwner(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "list not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
