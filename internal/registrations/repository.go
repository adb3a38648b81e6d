package registrations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/database"
)

// Repository handles registration persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a registrations repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

const registrationColumns = `id, participant_id, event_id, registration_date, type, attendance_status`

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(&reg.ID, &reg.ParticipantID, &reg.EventID, &reg.RegistrationDate, &reg.Type, &reg.AttendanceStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

// Create inserts a registration (unique per participant+event). created is false when the
// participant was already registered; the existing row is returned. An unknown event is ErrNotFound.
func (r *Repository) Create(ctx context.Context, participantID, eventID uuid.UUID) (reg *models.Registration, created bool, err error) {
	const q = `INSERT INTO registrations (participant_id, event_id, type)
		VALUES ($1, $2, $3)
		ON CONFLICT (participant_id, event_id) DO NOTHING
		RETURNING ` + registrationColumns
	reg, err = scanRegistration(r.db.QueryRow(ctx, q, participantID, eventID, models.RegistrationTypeStandard))
	switch {
	case err == nil:
		return reg, true, nil
	case errors.Is(err, models.ErrNotFound):
		reg, err = r.Get(ctx, participantID, eventID)
		return reg, false, err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return nil, false, models.ErrNotFound
	}
	return nil, false, err
}

// Delete removes the participant's registration for an event. ErrNotRegistered if none existed.
func (r *Repository) Delete(ctx context.Context, participantID, eventID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM registrations WHERE participant_id = $1 AND event_id = $2`, participantID, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotRegistered
	}
	return nil
}

// Get returns the participant's registration for an event.
func (r *Repository) Get(ctx context.Context, participantID, eventID uuid.UUID) (*models.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE participant_id = $1 AND event_id = $2`
	return scanRegistration(r.db.QueryRow(ctx, q, participantID, eventID))
}

// GetByID returns a registration by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	return scanRegistration(r.db.QueryRow(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
}

// MarkAttended sets attendance_status to Attended and returns the updated row.
func (r *Repository) MarkAttended(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	q := `UPDATE registrations SET attendance_status = $1 WHERE id = $2 RETURNING ` + registrationColumns
	return scanRegistration(r.db.QueryRow(ctx, q, models.AttendanceAttended, id))
}

// ListByParticipant returns a participant's registrations, newest first.
func (r *Repository) ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]models.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE participant_id = $1 ORDER BY registration_date DESC`
	rows, err := r.db.Query(ctx, q, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *reg)
	}
	return list, rows.Err()
}
