package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rezmor/todo-rest-api/internal/model"
)

// ErrTaskNotFound is returned when a task lookup fails.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepo provides access to the 'tasks' table. Ownership is enforced by
// joining through the parent list's owner_id, so a task id alone never
// grants access to another user's data.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

const taskColumns = "t.id, t.list_id, t.title, t.description, t.done, t.due_at, t.created_at, t.updated_at"

// Create inserts a task into a list and returns it with generated fields.
func (r *TaskRepo) Create(ctx context.Context, listID uint64, title, description string, dueAt *time.Time) (model.Task, error) {
	var t model.Task
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO tasks (list_id, title, description, due_at) VALUES ($1,$2,$3,$4)
		 RETURNING id, list_id, title, description, done, due_at, created_at, updated_at`,
		listID, title, description, dueAt).
		Scan(&t.ID, &t.ListID, &t.Title, &t.Description, &t.Done, &t.DueAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// GetByIDAndOwner retrieves a task only when its parent list belongs to
// the given owner. Returns ErrTaskNotFound otherwise.
func (r *TaskRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Task, error) {
	var t model.Task
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks t
		 JOIN lists l ON l.id = t.list_id
		 WHERE t.id=$1 AND l.owner_id=$2`,
		id, ownerID).
		Scan(&t.ID, &t.ListID, &t.Title, &t.Description, &t.Done, &t.DueAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrTaskNotFound
		}
		return model.Task{}, err
	}
	return t, nil
}

// ListByList returns one page of a list's tasks plus the total count.
func (r *TaskRepo) ListByList(ctx context.Context, listID uint64, limit, offset int) ([]model.Task, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE list_id=$1", listID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.list_id=$1 ORDER BY t.id LIMIT $2 OFFSET $3`,
		listID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.ListID, &t.Title, &t.Description, &t.Done, &t.DueAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update rewrites a task's mutable fields when its parent list belongs to
// the owner. Returns ErrTaskNotFound when no row matched.
func (r *TaskRepo) Update(ctx context.Context, id, ownerID uint64, title, description string, done bool, dueAt *time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tasks SET title=$1, description=$2, done=$3, due_at=$4, updated_at=now()
		 WHERE id=$5 AND list_id IN (SELECT id FROM lists WHERE owner_id=$6)`,
		title, description, done, dueAt, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes a task when its parent list belongs to the
// owner. Returns ErrTaskNotFound when no row matched.
func (r *TaskRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM tasks WHERE id=$1
		 AND list_id IN (SELECT id FROM lists WHERE owner_id=$2)`,
		id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}
