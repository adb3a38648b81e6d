package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/database"
)

// Repository is the PostgreSQL session Store.
type Repository struct {
	db database.DB
}

// NewRepository creates a session repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a new session.
func (r *Repository) Insert(ctx context.Context, s *Session) error {
	const q = `INSERT INTO auth_sessions (id, user_id, role, expires_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, q, s.ID, s.UserID, string(s.Role), s.ExpiresAt)
	return err
}

// Get returns a session by id.
func (r *Repository) Get(ctx context.Context, id string) (*Session, error) {
	const q = `SELECT id, user_id, role, expires_at FROM auth_sessions WHERE id = $1`
	var s Session
	var role string
	err := r.db.QueryRow(ctx, q, id).Scan(&s.ID, &s.UserID, &role, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	s.Role = models.Role(role)
	return &s, nil
}

// UpdateExpiry moves a session's expiry.
func (r *Repository) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	const q = `UPDATE auth_sessions SET expires_at = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, q, expiresAt, id)
	return err
}

// Delete removes a session.
func (r *Repository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM auth_sessions WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

// DeleteByUser removes all sessions of a user.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	const q = `DELETE FROM auth_sessions WHERE user_id = $1`
	_, err := r.db.Exec(ctx, q, userID)
	return err
}

// DeleteExpired removes sessions that expired before now.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM auth_sessions WHERE expires_at <= $1`
	tag, err := r.db.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
