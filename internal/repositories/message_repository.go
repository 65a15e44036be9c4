package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines the durable message store operations the core needs.
type MessageRepository interface {
	Create(ctx context.Context, senderID int, receiverID int, content string) (models.Message, error)
	SetStatus(ctx context.Context, messageID int, status models.MessageStatus) (models.Message, error)
	BulkMarkRead(ctx context.Context, senderID int, receiverID int) (int64, error)
	ListConversation(ctx context.Context, userID int, contactID int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create stores a new message in the pending state.
func (r *MessageRepo) Create(ctx context.Context, senderID int, receiverID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender_id, receiver_id, content, status) VALUES ($1, $2, $3, 'pending') RETURNING id, sender_id, receiver_id, content, status, created_at`, senderID, receiverID, content).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Status, &msg.CreatedAt)
	return msg, err
}

// SetStatus advances a message to the given status.
func (r *MessageRepo) SetStatus(ctx context.Context, messageID int, status models.MessageStatus) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `UPDATE messages SET status=$2 WHERE id=$1 RETURNING id, sender_id, receiver_id, content, status, created_at`, messageID, status).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Status, &msg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// BulkMarkRead marks every not-yet-read message from sender to receiver as
// read and reports how many rows changed. Calling it again for the same pair
// updates zero rows.
func (r *MessageRepo) BulkMarkRead(ctx context.Context, senderID int, receiverID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET status='read' WHERE sender_id=$1 AND receiver_id=$2 AND status <> 'read'`, senderID, receiverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListConversation returns the messages exchanged between two users, oldest first.
func (r *MessageRepo) ListConversation(ctx context.Context, userID int, contactID int) ([]models.Message, error) {
	query := `SELECT id, sender_id, receiver_id, content, status, created_at
        FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userID, contactID)
	return msgs, err
}
