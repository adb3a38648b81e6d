package models

import (
	"time"

	"github.com/google/uuid"
)

// Metrics are the aggregate numbers shown for an event.
type Metrics struct {
	TotalRegistrants int      `json:"total_registrants"`
	AttendedCount    int      `json:"attended_count"`
	AverageRating    *float64 `json:"average_rating"`
}

// AttendanceRate is attended/registrants as a percentage, 0 when nobody registered.
func (m Metrics) AttendanceRate() float64 {
	if m.TotalRegistrants == 0 {
		return 0
	}
	return float64(m.AttendedCount) * 100 / float64(m.TotalRegistrants)
}

// Demographic is one bucket of the stored demographic breakdown.
type Demographic struct {
	Category string `json:"category"`
	Value    string `json:"value"`
	Count    int    `json:"count"`
}

// DashboardSummary is one row of the organiser dashboard list.
type DashboardSummary struct {
	DashboardID  uuid.UUID     `json:"dashboard_id"`
	EventID      uuid.UUID     `json:"event_id"`
	Title        string        `json:"title"`
	Date         time.Time     `json:"date"`
	Time         string        `json:"time"`
	Metrics                    // live
	Demographics []Demographic `json:"demographics"`
}

// DashboardDetail is the full organiser view of one event.
type DashboardDetail struct {
	DashboardID    uuid.UUID     `json:"dashboard_id"`
	Event          Event         `json:"event"`
	Metrics        Metrics       `json:"metrics"`
	AttendanceRate float64       `json:"attendance_rate"`
	Demographics   []Demographic `json:"demographics"`
	RefreshedAt    *time.Time    `json:"refreshed_at,omitempty"`
}

// Snapshot is the stored, periodically refreshed copy of an event's metrics.
type Snapshot struct {
	Metrics
	Demographics []Demographic
}

// ParticipantRow is one registrant as listed on the dashboard.
type ParticipantRow struct {
	RegistrationID   uuid.UUID `json:"registration_id"`
	ParticipantID    uuid.UUID `json:"participant_id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Type             string    `json:"type"`
	RegistrationType string    `json:"registration_type"`
	RegistrationDate time.Time `json:"registration_date"`
	AttendanceStatus string    `json:"attendance_status"`
}

// FeedbackRow is one feedback entry as listed on the dashboard.
type FeedbackRow struct {
	ID           uuid.UUID `json:"id"`
	Rating       int       `json:"rating"`
	Comments     string    `json:"comments"`
	FeedbackDate time.Time `json:"feedback_date"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
}
