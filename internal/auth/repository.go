package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/database"
)

// ProfileInput holds the fields every role profile is created with.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
}

// Repository handles user and role profile persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates an auth repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, password_hash, participant_id, organiser_id, speaker_id, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.ParticipantID, &u.OrganiserID, &u.SpeakerID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user by email, case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRow(ctx, q, email))
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, q, id))
}

// CreateWithProfile inserts the role profile and the user pointing at it in one transaction.
func (r *Repository) CreateWithProfile(ctx context.Context, email, passwordHash string, role models.Role, in ProfileInput) (*models.User, error) {
	var u *models.User
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		profileID, err := insertProfile(ctx, tx, role, in)
		if err != nil {
			return err
		}
		q := fmt.Sprintf(`INSERT INTO users (email, password_hash, %s) VALUES ($1, $2, $3) RETURNING `+userColumns, roleColumn(role))
		u, err = scanUser(tx.QueryRow(ctx, q, email, passwordHash, profileID))
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	return u, err
}

// AttachRole creates a role profile and links it to an existing user in one transaction.
// It fails with ErrRoleExists if the user already holds the role.
func (r *Repository) AttachRole(ctx context.Context, userID uuid.UUID, role models.Role, in ProfileInput) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		profileID, err := insertProfile(ctx, tx, role, in)
		if err != nil {
			return err
		}
		col := roleColumn(role)
		q := fmt.Sprintf(`UPDATE users SET %s = $1 WHERE id = $2 AND %s IS NULL`, col, col)
		tag, err := tx.Exec(ctx, q, profileID, userID)
		if err != nil {
			return fmt.Errorf("link role: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRoleExists
		}
		return nil
	})
}

func roleColumn(role models.Role) string {
	switch role {
	case models.RoleOrganiser:
		return "organiser_id"
	case models.RoleSpeaker:
		return "speaker_id"
	}
	return "participant_id"
}

func insertProfile(ctx context.Context, tx pgx.Tx, role models.Role, in ProfileInput) (uuid.UUID, error) {
	var q string
	args := []any{in.FirstName, in.LastName, in.Email}
	switch role {
	case models.RoleParticipant:
		q = `INSERT INTO participants (first_name, last_name, email, type) VALUES ($1, $2, $3, $4) RETURNING id`
		args = append(args, models.DefaultParticipantType)
	case models.RoleOrganiser:
		q = `INSERT INTO organisers (first_name, last_name, email, role) VALUES ($1, $2, $3, $4) RETURNING id`
		args = append(args, models.DefaultOrganiserRole)
	case models.RoleSpeaker:
		q = `INSERT INTO speakers (first_name, last_name, email) VALUES ($1, $2, $3) RETURNING id`
	default:
		return uuid.Nil, fmt.Errorf("unknown role %q", role)
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, q, args...).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("insert %s profile: %w", role, err)
	}
	return id, nil
}

// LoadUserData returns the user with every role profile it links.
func (r *Repository) LoadUserData(ctx context.Context, userID uuid.UUID) (*models.UserData, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	data := &models.UserData{ID: u.ID, Email: u.Email}
	if u.ParticipantID != nil {
		if data.Participant, err = r.getParticipant(ctx, *u.ParticipantID); err != nil {
			return nil, err
		}
	}
	if u.OrganiserID != nil {
		if data.Organiser, err = r.getOrganiser(ctx, *u.OrganiserID); err != nil {
			return nil, err
		}
	}
	if u.SpeakerID != nil {
		if data.Speaker, err = r.getSpeaker(ctx, *u.SpeakerID); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (r *Repository) getParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	const q = `SELECT id, first_name, last_name, email, type,
		COALESCE(street,''), COALESCE(city,''), COALESCE(state,''), COALESCE(postal_code,''),
		COALESCE((SELECT array_agg(phone_number ORDER BY phone_number) FROM participant_phones WHERE participant_id = p.id), '{}')
		FROM participants p WHERE id = $1`
	var p models.Participant
	err := r.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Type,
		&p.Street, &p.City, &p.State, &p.PostalCode, &p.Phones)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("load participant: %w", err)
	}
	return &p, nil
}

func (r *Repository) getOrganiser(ctx context.Context, id uuid.UUID) (*models.Organiser, error) {
	const q = `SELECT id, first_name, last_name, email, role, COALESCE(department,'') FROM organisers WHERE id = $1`
	var o models.Organiser
	err := r.db.QueryRow(ctx, q, id).Scan(&o.ID, &o.FirstName, &o.LastName, &o.Email, &o.Role, &o.Department)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("load organiser: %w", err)
	}
	return &o, nil
}

func (r *Repository) getSpeaker(ctx context.Context, id uuid.UUID) (*models.Speaker, error) {
	const q = `SELECT id, first_name, last_name, email, COALESCE(bio,'') FROM speakers WHERE id = $1`
	var s models.Speaker
	err := r.db.QueryRow(ctx, q, id).Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Bio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("load speaker: %w", err)
	}
	return &s, nil
}
