package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/database"
)

var (
	// ErrUnknownSpeaker is returned when a session references a speaker that does not exist.
	ErrUnknownSpeaker = errors.New("unknown speaker")
	// ErrSessionNotInEvent is returned when a sync references a session of another event.
	ErrSessionNotInEvent = errors.New("session does not belong to event")
)

// NewSessionPrefix marks client-side ids of sessions that do not exist yet.
const NewSessionPrefix = "new-"

// SessionInput is a session to create or update.
type SessionInput struct {
	ID         string // empty or NewSessionPrefix... for new sessions
	Topic      string
	Building   string
	RoomNo     string
	Start      time.Time
	End        time.Time
	SpeakerIDs []uuid.UUID
}

// IsNew reports whether the input describes a session that does not exist yet.
func (s SessionInput) IsNew() bool {
	return s.ID == "" || strings.HasPrefix(s.ID, NewSessionPrefix)
}

// EventFields are the editable scalar fields of an event.
type EventFields struct {
	Title       string
	Date        time.Time
	Time        string // HH:MM
	Budget      decimal.Decimal
	Description string
}

// NewEvent is everything created together with an event.
type NewEvent struct {
	EventFields
	Agenda   []string
	Sessions []SessionInput
}

// SpeakerOption is one entry of the speaker picker.
type SpeakerOption struct {
	ID   uuid.UUID `json:"speaker_id"`
	Name string    `json:"name"`
}

// Repository handles event, session and agenda persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates an event repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

const eventColumns = `id, title, event_date, event_time::text, budget::text, description, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	var clock, budget string
	if err := row.Scan(&e.ID, &e.Title, &e.Date, &clock, &budget, &e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Time = models.ShortClock(clock)
	b, err := decimal.NewFromString(budget)
	if err != nil {
		return nil, fmt.Errorf("parse budget %q: %w", budget, err)
	}
	e.Budget = b
	return &e, nil
}

// Create inserts the event with its sessions, speaker assignments, agenda, dashboard row and
// organiser link in one transaction.
func (r *Repository) Create(ctx context.Context, organiserID uuid.UUID, in NewEvent) (*models.Event, error) {
	var created *models.Event
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		q := `INSERT INTO events (title, event_date, event_time, budget, description)
			VALUES ($1, $2, $3::time, $4::numeric, $5)
			RETURNING ` + eventColumns
		e, err := scanEvent(tx.QueryRow(ctx, q, in.Title, in.Date, in.Time, in.Budget.String(), in.Description))
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		for i, item := range in.Agenda {
			if _, err := tx.Exec(ctx, `INSERT INTO event_agenda (event_id, position, item) VALUES ($1, $2, $3)`, e.ID, i+1, item); err != nil {
				return fmt.Errorf("insert agenda item: %w", err)
			}
		}
		e.Agenda = in.Agenda
		for _, s := range in.Sessions {
			id, err := insertSession(ctx, tx, e.ID, s)
			if err != nil {
				return err
			}
			if err := assignSpeakers(ctx, tx, e.ID, id, s.SpeakerIDs); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `INSERT INTO dashboards (event_id) VALUES ($1)`, e.ID); err != nil {
			return fmt.Errorf("insert dashboard: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO organiser_for_event (organiser_id, event_id) VALUES ($1, $2)`, organiserID, e.ID); err != nil {
			return fmt.Errorf("link organiser: %w", err)
		}
		created = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func insertSession(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, s SessionInput) (uuid.UUID, error) {
	const q = `INSERT INTO event_sessions (event_id, topic, building, room_no, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id uuid.UUID
	if err := tx.QueryRow(ctx, q, eventID, s.Topic, s.Building, s.RoomNo, s.Start, s.End).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

func assignSpeakers(ctx context.Context, tx pgx.Tx, eventID, sessionID uuid.UUID, speakerIDs []uuid.UUID) error {
	const q = `INSERT INTO speaker_for_session (speaker_id, session_id, event_id) VALUES ($1, $2, $3)
		ON CONFLICT (speaker_id, session_id) DO NOTHING`
	for _, sp := range speakerIDs {
		if _, err := tx.Exec(ctx, q, sp, sessionID, eventID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return ErrUnknownSpeaker
			}
			return fmt.Errorf("assign speaker: %w", err)
		}
	}
	return nil
}

// Get returns an event with its agenda and sessions.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if e.Agenda, err = r.agenda(ctx, id); err != nil {
		return nil, err
	}
	if e.Sessions, err = r.ListSessions(ctx, id); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *Repository) agenda(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT item FROM event_agenda WHERE event_id = $1 ORDER BY position`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var item string
		if err := rows.Scan(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListSessions returns an event's sessions ordered by start time, each with its speakers.
func (r *Repository) ListSessions(ctx context.Context, eventID uuid.UUID) ([]models.EventSession, error) {
	const q = `SELECT id, event_id, topic, building, room_no, start_time, end_time
		FROM event_sessions WHERE event_id = $1 ORDER BY start_time ASC`
	rows, err := r.db.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	sessions := []models.EventSession{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var s models.EventSession
		if err := rows.Scan(&s.ID, &s.EventID, &s.Topic, &s.Building, &s.RoomNo, &s.StartTime, &s.EndTime); err != nil {
			rows.Close()
			return nil, err
		}
		s.Speakers = []models.SpeakerRef{}
		index[s.ID] = len(sessions)
		sessions = append(sessions, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	const sq = `SELECT sfs.session_id, s.id, s.first_name, s.last_name
		FROM speaker_for_session sfs
		JOIN speakers s ON s.id = sfs.speaker_id
		WHERE sfs.event_id = $1
		ORDER BY s.first_name, s.last_name`
	srows, err := r.db.Query(ctx, sq, eventID)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var sessionID uuid.UUID
		var sp models.SpeakerRef
		if err := srows.Scan(&sessionID, &sp.ID, &sp.FirstName, &sp.LastName); err != nil {
			return nil, err
		}
		if i, ok := index[sessionID]; ok {
			sessions[i].Speakers = append(sessions[i].Speakers, sp)
		}
	}
	return sessions, srows.Err()
}

// List returns events matching filter without sessions or agenda.
func (r *Repository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	var where, order string
	switch filter {
	case models.FilterUpcoming:
		where = ` WHERE (event_date = CURRENT_DATE AND event_time > LOCALTIME) OR event_date > CURRENT_DATE`
		order = ` ORDER BY event_date ASC, event_time ASC`
	case models.FilterCompleted:
		where = ` WHERE event_date < CURRENT_DATE OR (event_date = CURRENT_DATE AND event_time <= LOCALTIME)`
		order = ` ORDER BY event_date DESC, event_time DESC`
	default:
		order = ` ORDER BY event_date ASC, event_time ASC`
	}
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM events`+where+order)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// Update replaces an event's scalar fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, f EventFields) error {
	const q = `UPDATE events SET title = $1, description = $2, event_date = $3, event_time = $4::time,
		budget = $5::numeric, updated_at = NOW() WHERE id = $6`
	tag, err := r.db.Exec(ctx, q, f.Title, f.Description, f.Date, f.Time, f.Budget.String(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SyncSessions makes the event's sessions match in: new sessions are created, listed ones are
// updated with their speaker assignment replaced, and sessions not listed are deleted.
func (r *Repository) SyncSessions(ctx context.Context, eventID uuid.UUID, in []SessionInput) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id FROM event_sessions WHERE event_id = $1`, eventID)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		existing := map[uuid.UUID]bool{}
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			existing[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		keep := []uuid.UUID{}
		ids := make([]uuid.UUID, len(in))
		for i, s := range in {
			if s.IsNew() {
				continue
			}
			id, err := uuid.Parse(s.ID)
			if err != nil || !existing[id] {
				return ErrSessionNotInEvent
			}
			ids[i] = id
			keep = append(keep, id)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM event_sessions WHERE event_id = $1 AND NOT (id = ANY($2))`, eventID, keep); err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}

		const uq = `UPDATE event_sessions SET topic = $1, building = $2, room_no = $3, start_time = $4, end_time = $5
			WHERE id = $6 AND event_id = $7`
		for i, s := range in {
			id := ids[i]
			if s.IsNew() {
				if id, err = insertSession(ctx, tx, eventID, s); err != nil {
					return err
				}
			} else {
				if _, err := tx.Exec(ctx, uq, s.Topic, s.Building, s.RoomNo, s.Start, s.End, id, eventID); err != nil {
					return fmt.Errorf("update session: %w", err)
				}
				if _, err := tx.Exec(ctx, `DELETE FROM speaker_for_session WHERE session_id = $1 AND event_id = $2`, id, eventID); err != nil {
					return fmt.Errorf("clear speakers: %w", err)
				}
			}
			if err := assignSpeakers(ctx, tx, eventID, id, s.SpeakerIDs); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `UPDATE events SET updated_at = NOW() WHERE id = $1`, eventID); err != nil {
			return fmt.Errorf("touch event: %w", err)
		}
		return nil
	})
}

// Exists reports whether an event exists.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// IsOrganiser reports whether organiserID organises the event.
func (r *Repository) IsOrganiser(ctx context.Context, eventID, organiserID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM organiser_for_event WHERE event_id = $1 AND organiser_id = $2)`
	var ok bool
	err := r.db.QueryRow(ctx, q, eventID, organiserID).Scan(&ok)
	return ok, err
}

// ListOrganizers returns the organisers of an event.
func (r *Repository) ListOrganizers(ctx context.Context, eventID uuid.UUID) ([]models.OrganiserRef, error) {
	const q = `SELECT o.id, o.first_name, o.last_name
		FROM organiser_for_event ofe
		JOIN organisers o ON o.id = ofe.organiser_id
		WHERE ofe.event_id = $1
		ORDER BY o.first_name, o.last_name`
	rows, err := r.db.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.OrganiserRef{}
	for rows.Next() {
		var o models.OrganiserRef
		if err := rows.Scan(&o.OrganiserID, &o.FirstName, &o.LastName); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// ListSpeakers returns every speaker as "first last", ordered by name.
func (r *Repository) ListSpeakers(ctx context.Context) ([]SpeakerOption, error) {
	const q = `SELECT id, TRIM(CONCAT(first_name, ' ', COALESCE(last_name, ''))) FROM speakers ORDER BY first_name, last_name`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []SpeakerOption{}
	for rows.Next() {
		var s SpeakerOption
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// SpeakerSessions returns the sessions assigned to a speaker, soonest first.
func (r *Repository) SpeakerSessions(ctx context.Context, speakerID uuid.UUID) ([]models.SpeakerSession, error) {
	const q = `SELECT es.id, es.event_id, es.topic, es.building, es.room_no, es.start_time, es.end_time, e.title, e.event_date
		FROM speaker_for_session sfs
		JOIN event_sessions es ON es.id = sfs.session_id
		JOIN events e ON e.id = es.event_id
		WHERE sfs.speaker_id = $1
		ORDER BY es.start_time ASC`
	rows, err := r.db.Query(ctx, q, speakerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.SpeakerSession{}
	for rows.Next() {
		var s models.SpeakerSession
		if err := rows.Scan(&s.ID, &s.EventID, &s.Topic, &s.Building, &s.RoomNo, &s.StartTime, &s.EndTime, &s.EventTitle, &s.EventDate); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
