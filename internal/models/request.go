package models

import "time"

// ItemRequest is a user's ask for an item nobody has listed yet.
type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequesterID int64     `json:"-"`
	Created     time.Time `json:"created"`
}
