package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus values.
const (
	AttendanceAbsent   = "Absent"
	AttendanceAttended = "Attended"
)

// RegistrationTypeStandard is the type assigned to self-service registrations.
const RegistrationTypeStandard = "Standard"

// Registration links a participant to an event.
type Registration struct {
	ID               uuid.UUID `json:"id"`
	ParticipantID    uuid.UUID `json:"participant_id"`
	EventID          uuid.UUID `json:"event_id"`
	RegistrationDate time.Time `json:"registration_date"`
	Type             string    `json:"type"`
	AttendanceStatus string    `json:"attendance_status"`
}

// Attended reports whether attendance was recorded.
func (r *Registration) Attended() bool {
	return r.AttendanceStatus == AttendanceAttended
}

// Feedback is a participant's rating of an attended event.
type Feedback struct {
	ID             uuid.UUID `json:"id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	FeedbackDate   time.Time `json:"feedback_date"`
	Rating         int       `json:"rating"`
	Comments       string    `json:"comments"`
}
