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

// TaskHandler implements CRUD for tasks inside a list. Ownership flows
// through the parent list: creating into a list requires owning it, and
// task-by-id operations join against lists.owner_id in the repository.
type TaskHandler struct {
	Lists *repository.ListRepo
	Tasks *repository.TaskRepo
}

func NewTaskHandler(l *repository.ListRepo, t *repository.TaskRepo) *TaskHandler {
	return &TaskHandler{Lists: l, Tasks: t}
}

type taskReq struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Done        *bool      `json:"done"`
	DueAt       *time.Time `json:"due_at"`
}

type taskResp struct {
	ID          uint64     `json:"id"`
	ListID      uint64     `json:"list_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Done        bool       `json:"done"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTaskResp(t model.Task) taskResp {
	return taskResp{
		ID: t.ID, ListID: t.ListID, Title: t.Title, Description: t.Description,
		Done: t.Done, DueAt: t.DueAt, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

// Create adds a task to one of the current user's lists.
func (h *TaskHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid list id"})
	}
	var req taskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// confirm the list belongs to the caller before inserting into it
	if _, err := h.Lists.GetByIDAndOwner(ctx, listID, uid); err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "list not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	t, err := h.Tasks.Create(ctx, listID, req.Title, strings.TrimSpace(req.Description), req.DueAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create task failed"})
	}
	return c.JSON(http.StatusCreated, toTaskResp(t))
}

// GetByList returns one page of a list's tasks.
func (h *TaskHandler) GetByList(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid list id"})
	}
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Lists.GetByIDAndOwner(ctx, listID, uid); err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "list not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	tasks, total, err := h.Tasks.ListByList(ctx, listID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]taskResp, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tasks": out,
		"meta":  pageMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// Update rewrites a task. Fields omitted from the body keep their stored
// values; `done` and `due_at` are pointers so false/null are expressible.
func (h *TaskHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req taskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cur, err := h.Tasks.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	title := cur.Title
	if strings.TrimSpace(req.Title) != "" {
		title = strings.TrimSpace(req.Title)
	}
	description := cur.Description
	if req.Description != "" {
		description = strings.TrimSpace(req.Description)
	}
	done := cur.Done
	if req.Done != nil {
		done = *req.Done
	}
	dueAt := cur.DueAt
	if req.DueAt != nil {
		dueAt = req.DueAt
	}

	if err := h.Tasks.Update(ctx, id, uid, title, description, done, dueAt); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a task.
func (h *TaskHandler) Delete(c echo.Context) error {
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

	if err := h.Tasks.DeleteByIDAndOwner(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
