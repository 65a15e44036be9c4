package models

import "time"

// Notification is a durable, fire-and-forget notice created when a message
// could not be delivered live.
type Notification struct {
	ID                int       `db:"id" json:"id"`
	SenderID          int       `db:"sender_id" json:"sender_id"`
	RecipientID       int       `db:"recipient_id" json:"recipient_id"`
	Message           string    `db:"message" json:"message"`
	IsSystemGenerated bool      `db:"is_system_generated" json:"is_system_generated"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Preference controls whether a recipient wants in-app notifications for
// messages from a specific sender. Absent preference means notify.
type Preference struct {
	RecipientID int  `db:"recipient_id" json:"recipient_id"`
	SenderID    int  `db:"sender_id" json:"sender_id"`
	Notify      bool `db:"notify" json:"notify"`
}
