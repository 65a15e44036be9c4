package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// NotificationRepository stores fallback notifications for users who did not
// receive a message live.
type NotificationRepository interface {
	Create(ctx context.Context, senderID int, recipientID int, text string, systemGenerated bool) (models.Notification, error)
	ListForUser(ctx context.Context, recipientID int) ([]models.Notification, error)
}

// NotificationRepo is a sqlx-backed repository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create stores a notification.
func (r *NotificationRepo) Create(ctx context.Context, senderID int, recipientID int, text string, systemGenerated bool) (models.Notification, error) {
	var n models.Notification
	err := r.db.QueryRowxContext(ctx, `INSERT INTO notifications (sender_id, recipient_id, message, is_system_generated) VALUES ($1, $2, $3, $4) RETURNING id, sender_id, recipient_id, message, is_system_generated, created_at`, senderID, recipientID, text, systemGenerated).
		Scan(&n.ID, &n.SenderID, &n.RecipientID, &n.Message, &n.IsSystemGenerated, &n.CreatedAt)
	return n, err
}

// ListForUser returns a user's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, recipientID int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.SelectContext(ctx, &list, `SELECT id, sender_id, recipient_id, message, is_system_generated, created_at FROM notifications WHERE recipient_id=$1 ORDER BY created_at DESC`, recipientID)
	return list, err
}
