package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/database"
)

// Demographic categories stored per dashboard.
const (
	CategoryType = "participant_type"
	CategoryCity = "city"
	UnknownValue = "Unknown"
)

var demographicColumns = map[string]string{
	CategoryType: "p.type",
	CategoryCity: "p.city",
}

// Repository computes event aggregates and maintains dashboard snapshots.
type Repository struct {
	db database.DB
}

// NewRepository creates a dashboard repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// liveMetrics are derived from registration and feedback rows for the event bound to $1.
const liveMetrics = `(SELECT COUNT(DISTINCT r.participant_id) FROM registrations r WHERE r.event_id = %[1]s),
	(SELECT COUNT(*) FROM registrations r WHERE r.event_id = %[1]s AND r.attendance_status = 'Attended'),
	(SELECT AVG(f.rating)::float8 FROM feedback f JOIN registrations r ON r.id = f.registration_id WHERE r.event_id = %[1]s)`

// ListSummaries returns one row per event with live metrics and stored demographics,
// ordered by event date and time.
func (r *Repository) ListSummaries(ctx context.Context) ([]models.DashboardSummary, error) {
	q := `SELECT d.id, e.id, e.title, e.event_date, e.event_time::text, ` + fmt.Sprintf(liveMetrics, "e.id") + `
		FROM dashboards d
		JOIN events e ON e.id = d.event_id
		ORDER BY e.event_date ASC, e.event_time ASC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	list := []models.DashboardSummary{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var s models.DashboardSummary
		var clock string
		if err := rows.Scan(&s.DashboardID, &s.EventID, &s.Title, &s.Date, &clock,
			&s.TotalRegistrants, &s.AttendedCount, &s.AverageRating); err != nil {
			rows.Close()
			return nil, err
		}
		s.Time = models.ShortClock(clock)
		s.Demographics = []models.Demographic{}
		index[s.DashboardID] = len(list)
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	drows, err := r.db.Query(ctx, `SELECT dashboard_id, category, value, count FROM demographic_data ORDER BY category, count DESC, value`)
	if err != nil {
		return nil, err
	}
	defer drows.Close()
	for drows.Next() {
		var dashboardID uuid.UUID
		var d models.Demographic
		if err := drows.Scan(&dashboardID, &d.Category, &d.Value, &d.Count); err != nil {
			return nil, err
		}
		if i, ok := index[dashboardID]; ok {
			list[i].Demographics = append(list[i].Demographics, d)
		}
	}
	return list, drows.Err()
}

// Locate returns the event behind a dashboard and its last refresh time.
func (r *Repository) Locate(ctx context.Context, dashboardID uuid.UUID) (eventID uuid.UUID, refreshedAt *time.Time, err error) {
	err = r.db.QueryRow(ctx, `SELECT event_id, refreshed_at FROM dashboards WHERE id = $1`, dashboardID).Scan(&eventID, &refreshedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil, models.ErrNotFound
	}
	return eventID, refreshedAt, err
}

// DashboardID returns the dashboard of an event.
func (r *Repository) DashboardID(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM dashboards WHERE event_id = $1`, eventID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, models.ErrNotFound
	}
	return id, err
}

// LiveMetrics derives an event's metrics from its registration and feedback rows.
func (r *Repository) LiveMetrics(ctx context.Context, eventID uuid.UUID) (models.Metrics, error) {
	var m models.Metrics
	err := r.db.QueryRow(ctx, `SELECT `+fmt.Sprintf(liveMetrics, "$1"), eventID).
		Scan(&m.TotalRegistrants, &m.AttendedCount, &m.AverageRating)
	return m, err
}

// Demographics returns the stored breakdown of a dashboard.
func (r *Repository) Demographics(ctx context.Context, dashboardID uuid.UUID) ([]models.Demographic, error) {
	const q = `SELECT category, value, count FROM demographic_data WHERE dashboard_id = $1 ORDER BY category, count DESC, value`
	rows, err := r.db.Query(ctx, q, dashboardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Demographic{}
	for rows.Next() {
		var d models.Demographic
		if err := rows.Scan(&d.Category, &d.Value, &d.Count); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ListParticipants returns an event's registrants, newest registration first.
func (r *Repository) ListParticipants(ctx context.Context, eventID uuid.UUID) ([]models.ParticipantRow, error) {
	const q = `SELECT r.id, p.id, p.first_name, p.last_name, p.email,
			COALESCE((SELECT ph.phone_number FROM participant_phones ph WHERE ph.participant_id = p.id ORDER BY ph.phone_number LIMIT 1), ''),
			p.type, r.type, r.registration_date, r.attendance_status
		FROM registrations r
		JOIN participants p ON p.id = r.participant_id
		WHERE r.event_id = $1
		ORDER BY r.registration_date DESC`
	rows, err := r.db.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.ParticipantRow{}
	for rows.Next() {
		var p models.ParticipantRow
		if err := rows.Scan(&p.RegistrationID, &p.ParticipantID, &p.FirstName, &p.LastName, &p.Email,
			&p.Phone, &p.Type, &p.RegistrationType, &p.RegistrationDate, &p.AttendanceStatus); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListFeedback returns an event's feedback with participant details, newest first.
func (r *Repository) ListFeedback(ctx context.Context, eventID uuid.UUID) ([]models.FeedbackRow, error) {
	const q = `SELECT f.id, f.rating, f.comments, f.feedback_date, p.first_name, p.last_name, p.email
		FROM feedback f
		JOIN registrations r ON r.id = f.registration_id
		JOIN participants p ON p.id = r.participant_id
		WHERE r.event_id = $1
		ORDER BY f.feedback_date DESC`
	rows, err := r.db.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.FeedbackRow{}
	for rows.Next() {
		var f models.FeedbackRow
		if err := rows.Scan(&f.ID, &f.Rating, &f.Comments, &f.FeedbackDate, &f.FirstName, &f.LastName, &f.Email); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// Refresh recomputes an event's stored snapshot (counts, average rating and demographics by
// participant type and city) in one transaction.
func (r *Repository) Refresh(ctx context.Context, eventID uuid.UUID) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		q := `UPDATE dashboards d SET total_registrants = m.total, attended_count = m.attended,
				average_rating = m.avg, refreshed_at = NOW()
			FROM (SELECT ` + fmt.Sprintf(liveMetrics, "$1") + `) AS m(total, attended, avg)
			WHERE d.event_id = $1
			RETURNING d.id, d.total_registrants, d.attended_count, d.average_rating`
		var dashboardID uuid.UUID
		err := tx.QueryRow(ctx, q, eventID).Scan(&dashboardID, &snap.TotalRegistrants, &snap.AttendedCount, &snap.AverageRating)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrNotFound
			}
			return fmt.Errorf("update dashboard: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM demographic_data WHERE dashboard_id = $1`, dashboardID); err != nil {
			return fmt.Errorf("clear demographics: %w", err)
		}
		snap.Demographics = []models.Demographic{}
		for _, category := range []string{CategoryType, CategoryCity} {
			dq := `INSERT INTO demographic_data (dashboard_id, category, value, count)
				SELECT $1, $3, COALESCE(NULLIF(` + demographicColumns[category] + `, ''), $4), COUNT(*)
				FROM registrations r
				JOIN participants p ON p.id = r.participant_id
				WHERE r.event_id = $2
				GROUP BY 3
				RETURNING category, value, count`
			rows, err := tx.Query(ctx, dq, dashboardID, eventID, category, UnknownValue)
			if err != nil {
				return fmt.Errorf("insert demographics: %w", err)
			}
			for rows.Next() {
				var d models.Demographic
				if err := rows.Scan(&d.Category, &d.Value, &d.Count); err != nil {
					rows.Close()
					return err
				}
				snap.Demographics = append(snap.Demographics, d)
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// EventIDs returns every event that has a dashboard.
func (r *Repository) EventIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT event_id FROM dashboards`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
