package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is one of the three user roles a session can be opened as.
type Role string

const (
	RoleParticipant Role = "Participant"
	RoleOrganiser   Role = "Organiser"
	RoleSpeaker     Role = "Speaker"
)

// Roles lists every role in display order.
var Roles = []Role{RoleParticipant, RoleOrganiser, RoleSpeaker}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleParticipant, RoleOrganiser, RoleSpeaker:
		return true
	}
	return false
}

// Defaults applied to new role profiles.
const (
	DefaultParticipantType = "Student"
	DefaultOrganiserRole   = "General"
)

// User is the identity row; each role FK is set when the user holds that role.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	ParticipantID *uuid.UUID `json:"participant_id,omitempty"`
	OrganiserID   *uuid.UUID `json:"organiser_id,omitempty"`
	SpeakerID     *uuid.UUID `json:"speaker_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HasRole reports whether the user row links a profile for role.
func (u *User) HasRole(role Role) bool {
	switch role {
	case RoleParticipant:
		return u.ParticipantID != nil
	case RoleOrganiser:
		return u.OrganiserID != nil
	case RoleSpeaker:
		return u.SpeakerID != nil
	}
	return false
}

// Participant is the attendee profile.
type Participant struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Type       string    `json:"type"`
	Street     string    `json:"street,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	Phones     []string  `json:"phones,omitempty"`
}

// Organiser is the event organiser profile.
type Organiser struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
}

// Speaker is the session speaker profile.
type Speaker struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio,omitempty"`
}

// UserData is a user enriched with every role profile it holds.
type UserData struct {
	ID          uuid.UUID    `json:"id"`
	Email       string       `json:"email"`
	Participant *Participant `json:"participant,omitempty"`
	Organiser   *Organiser   `json:"organiser,omitempty"`
	Speaker     *Speaker     `json:"speaker,omitempty"`
}

// HasRole reports whether the profile for role was loaded.
func (u *UserData) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	switch role {
	case RoleParticipant:
		return u.Participant != nil
	case RoleOrganiser:
		return u.Organiser != nil
	case RoleSpeaker:
		return u.Speaker != nil
	}
	return false
}

// DisplayName returns the first name of the first profile found, falling back to the email.
func (u *UserData) DisplayName() string {
	switch {
	case u.Participant != nil:
		return u.Participant.FirstName
	case u.Organiser != nil:
		return u.Organiser.FirstName
	case u.Speaker != nil:
		return u.Speaker.FirstName
	}
	return u.Email
}
