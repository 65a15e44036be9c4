package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// PreferenceRepository answers whether a recipient wants in-app notifications
// for messages from a specific sender.
type PreferenceRepository interface {
	Interest(ctx context.Context, recipientID int, senderID int) (bool, error)
	Set(ctx context.Context, recipientID int, senderID int, notify bool) error
}

// PreferenceRepo is a sqlx-backed repository.
type PreferenceRepo struct {
	db *sqlx.DB
}

// NewPreferenceRepo constructs PreferenceRepo.
func NewPreferenceRepo(db *sqlx.DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

// Interest reports whether the recipient wants notifications about the sender.
// No stored preference means notifications stay on; muting is explicit.
func (r *PreferenceRepo) Interest(ctx context.Context, recipientID int, senderID int) (bool, error) {
	var pref models.Preference
	err := r.db.GetContext(ctx, &pref, `SELECT recipient_id, sender_id, notify FROM notification_preferences WHERE recipient_id=$1 AND sender_id=$2`, recipientID, senderID)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return pref.Notify, nil
}

// Set upserts the recipient's preference for the sender.
func (r *PreferenceRepo) Set(ctx context.Context, recipientID int, senderID int, notify bool) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO notification_preferences (recipient_id, sender_id, notify) VALUES ($1, $2, $3)
        ON CONFLICT (recipient_id, sender_id) DO UPDATE SET notify=EXCLUDED.notify`, recipientID, senderID, notify)
	return err
}
