package feedback

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/database"
)

// Repository handles feedback persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a feedback repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts feedback for a registration. ErrAlreadySubmitted if the registration already has one.
func (r *Repository) Create(ctx context.Context, registrationID uuid.UUID, rating int, comments string) (*models.Feedback, error) {
	const q = `INSERT INTO feedback (registration_id, rating, comments)
		VALUES ($1, $2, $3)
		ON CONFLICT (registration_id) DO NOTHING
		RETURNING id, registration_id, feedback_date, rating, comments`
	var f models.Feedback
	err := r.db.QueryRow(ctx, q, registrationID, rating, comments).
		Scan(&f.ID, &f.RegistrationID, &f.FeedbackDate, &f.Rating, &f.Comments)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}
	return &f, nil
}

// GetByRegistration returns the feedback left for a registration.
func (r *Repository) GetByRegistration(ctx context.Context, registrationID uuid.UUID) (*models.Feedback, error) {
	const q = `SELECT id, registration_id, feedback_date, rating, comments FROM feedback WHERE registration_id = $1`
	var f models.Feedback
	err := r.db.QueryRow(ctx, q, registrationID).Scan(&f.ID, &f.RegistrationID, &f.FeedbackDate, &f.Rating, &f.Comments)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}
