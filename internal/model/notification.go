package model

import "time"

// Notification is a message addressed to a user, produced from reservation
// and payment events.
type Notification struct {
	ID        uint64    `db:"id" json:"id"`                // notifications.id
	UserID    uint64    `db:"user_id" json:"userId"`       // notifications.user_id
	Message   string    `db:"message" json:"message"`      // notifications.message
	IsRead    bool      `db:"is_read" json:"isRead"`       // notifications.is_read
	CreatedAt time.Time `db:"created_at" json:"createdAt"` // notifications.created_at
}
