package model

import "time"

// List represents a row in the `lists` table. Every list belongs to
// exactly one user; tasks reference their list and are cascade-deleted
// with it. A default list is provisioned at registration and at first
// OAuth sign-in so a fresh account is never empty.
//
// Fields:
//  ID        – primary key identifier of the list.
//  OwnerID   – user that owns the list.
//  Title     – display title of the list.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type List struct {
	ID        uint64    // lists.id
	OwnerID   uint64    // lists.owner_id
	Title     string    // lists.title
	CreatedAt time.Time // lists.created_at
	UpdatedAt time.Time // lists.updated_at
}
