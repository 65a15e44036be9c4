package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ProfileRepository resolves user display names for human-readable
// notification text.
type ProfileRepository interface {
	DisplayName(ctx context.Context, userID int) (string, error)
}

// ProfileRepo is a sqlx-backed repository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// DisplayName returns the user's display name, or a generic label when the
// user has no profile row.
func (r *ProfileRepo) DisplayName(ctx context.Context, userID int) (string, error) {
	var name string
	err := r.db.GetContext(ctx, &name, `SELECT display_name FROM profiles WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Sprintf("User %d", userID), nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}
