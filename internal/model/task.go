package model

import "time"

// Task represents a row in the `tasks` table. Tasks always live inside a
// list; ownership checks go through the parent list's owner_id.
//
// Fields:
//  ID          – primary key identifier of the task.
//  ListID      – list the task belongs to.
//  Title       – short title of the task.
//  Description – free-form description (may be empty).
//  Done        – completion flag.
//  DueAt       – optional due date (nil when the task has none).
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Task struct {
	ID          uint64     // tasks.id
	ListID      uint64     // tasks.list_id
	Title       string     // tasks.title
	Description string     // tasks.description
	Done        bool       // tasks.done
	DueAt       *time.Time // tasks.due_at (nullable)
	CreatedAt   time.Time  // tasks.created_at
	UpdatedAt   time.Time  // tasks.updated_at
}
