package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventFilter selects events relative to now.
type EventFilter string

const (
	FilterUpcoming  EventFilter = "upcoming"
	FilterCompleted EventFilter = "completed"
	FilterAll       EventFilter = "all"
)

// ParseEventFilter maps a query value to a filter, defaulting to upcoming.
func ParseEventFilter(s string) EventFilter {
	switch EventFilter(strings.ToLower(s)) {
	case FilterCompleted:
		return FilterCompleted
	case FilterAll:
		return FilterAll
	}
	return FilterUpcoming
}

// Event is an organised event with its agenda and sessions.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Date        time.Time       `json:"date"`
	Time        string          `json:"time"` // HH:MM
	Budget      decimal.Decimal `json:"budget"`
	Description string          `json:"description"`
	Agenda      []string        `json:"agenda"`
	Sessions    []EventSession  `json:"sessions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DateString formats the event date as YYYY-MM-DD.
func (e *Event) DateString() string {
	return e.Date.Format(time.DateOnly)
}

// StartsAt combines the event date and time in loc.
func (e *Event) StartsAt(loc *time.Location) time.Time {
	return CombineDateTime(e.Date, e.Time, loc)
}

// CombineDateTime joins a calendar date with an HH:MM wall-clock time in loc.
// An unparsable clock value yields midnight.
func CombineDateTime(date time.Time, clock string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	hh, mm := 0, 0
	if t, err := time.Parse("15:04", clock); err == nil {
		hh, mm = t.Hour(), t.Minute()
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hh, mm, 0, 0, loc)
}

// ShortClock trims a Postgres TIME text value (HH:MM:SS[.ffffff]) to HH:MM.
func ShortClock(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// SpeakerRef is the speaker projection shown on sessions.
type SpeakerRef struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// Name returns "first last".
func (s SpeakerRef) Name() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// EventSession is one session of an event.
type EventSession struct {
	ID        uuid.UUID    `json:"id"`
	EventID   uuid.UUID    `json:"event_id"`
	Topic     string       `json:"topic"`
	Building  string       `json:"building"`
	RoomNo    string       `json:"room_no"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Speakers  []SpeakerRef `json:"speakers"`
}

// Location returns "building - room".
func (s EventSession) Location() string {
	return s.Building + " - " + s.RoomNo
}

// SpeakerNames joins assigned speaker names, or "TBA" when none is assigned.
func (s EventSession) SpeakerNames() string {
	if len(s.Speakers) == 0 {
		return "TBA"
	}
	names := make([]string, 0, len(s.Speakers))
	for _, sp := range s.Speakers {
		names = append(names, sp.Name())
	}
	return strings.Join(names, ", ")
}

// OrganiserRef is the organiser projection returned for an event.
type OrganiserRef struct {
	OrganiserID uuid.UUID `json:"organiser_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
}

// SpeakerSession is a session assigned to a speaker, with its event.
type SpeakerSession struct {
	EventSession
	EventTitle string    `json:"event_title"`
	EventDate  time.Time `json:"event_date"`
}
