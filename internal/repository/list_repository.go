package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rezmor/todo-rest-api/internal/model"
)

// ErrListNotFound is returned when a list lookup fails.
var ErrListNotFound = errors.New("list not found")

// ListRepo provides access to the 'lists' table.
type ListRepo struct{ DB *sql.DB }

func NewListRepo(db *sql.DB) *ListRepo { return &ListRepo{DB: db} }

const listColumns = "id, owner_id, title, created_at, updated_at"

// Create inserts a list and returns it with generated fields populated.
func (r *ListRepo) Create(ctx context.Context, ownerID uint64, title string) (model.List, error) {
	var l model.List
	err := r.DB.QueryRowContext(ctx,
		"INSERT INTO lists (owner_id, title) VALUES ($1,$2) RETURNING "+listColumns,
		ownerID, title).Scan(&l.ID, &l.OwnerID, &l.Title, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// GetByIDAndOwner retrieves a list only if it belongs to the given owner.
// Used to enforce resource ownership; returns ErrListNotFound otherwise.
func (r *ListRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.List, error) {
	var l model.List
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+listColumns+" FROM lists WHERE id=$1 AND owner_id=$2",
		id, ownerID).Scan(&l.ID, &l.OwnerID, &l.Title, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.List{}, ErrListNotFound
		}
		return model.List{}, err
	}
	return l, nil
}

// ListByOwner returns one page of the owner's lists plus the total count.
func (r *ListRepo) ListByOwner(ctx context.Context, ownerID uint64, limit, offset int) ([]model.List, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lists WHERE owner_id=$1", ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+listColumns+" FROM lists WHERE owner_id=$1 ORDER BY id LIMIT $2 OFFSET $3",
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.List
	for rows.Next() {
		var l model.List
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Title, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateTitle renames a list if it belongs to the owner. Returns
// ErrListNotFound when no row matched.
func (r *ListRepo) UpdateTitle(ctx context.Context, id, ownerID uint64, title string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE lists SET title=$1, updated_at=now() WHERE id=$2 AND owner_id=$3",
		title, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrListNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes a list (and, via cascade, its tasks) if it
// belongs to the owner. Returns ErrListNotFound when no row matched.
func (r *ListRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM lists WHERE id=$1 AND owner_id=$2", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrListNotFound
	}
	return nil
}
