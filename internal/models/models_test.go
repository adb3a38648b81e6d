package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid())
	}
	assert.False(t, Role("Admin").Valid())
	assert.False(t, Role("participant").Valid())
}

func TestUserHasRole(t *testing.T) {
	id := uuid.New()
	u := &User{OrganiserID: &id}
	assert.True(t, u.HasRole(RoleOrganiser))
	assert.False(t, u.HasRole(RoleParticipant))

	d := &UserData{Speaker: &Speaker{FirstName: "Ada"}}
	assert.True(t, d.HasRole(RoleSpeaker))
	assert.False(t, d.HasRole(RoleOrganiser))
	assert.Equal(t, "Ada", d.DisplayName())

	var nilData *UserData
	assert.False(t, nilData.HasRole(RoleSpeaker))
}

func TestParseEventFilter(t *testing.T) {
	assert.Equal(t, FilterUpcoming, ParseEventFilter(""))
	assert.Equal(t, FilterCompleted, ParseEventFilter("Completed"))
	assert.Equal(t, FilterAll, ParseEventFilter("all"))
	assert.Equal(t, FilterUpcoming, ParseEventFilter("bogus"))
}

func TestCombineDateTime(t *testing.T) {
	date := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	got := CombineDateTime(date, "14:30", time.UTC)
	assert.Equal(t, time.Date(2026, 11, 3, 14, 30, 0, 0, time.UTC), got)
	assert.Equal(t, date, CombineDateTime(date, "bad", time.UTC))
	assert.Equal(t, "09:05", ShortClock("09:05:00"))
}

func TestSessionPresentation(t *testing.T) {
	s := EventSession{Building: "Main", RoomNo: "101"}
	assert.Equal(t, "Main - 101", s.Location())
	assert.Equal(t, "TBA", s.SpeakerNames())

	s.Speakers = []SpeakerRef{{FirstName: "Ada", LastName: "Lovelace"}, {FirstName: "Alan", LastName: "Turing"}}
	assert.Equal(t, "Ada Lovelace, Alan Turing", s.SpeakerNames())
}

func TestAttendanceRate(t *testing.T) {
	assert.Equal(t, 0.0, Metrics{}.AttendanceRate())
	assert.Equal(t, 50.0, Metrics{TotalRegistrants: 4, AttendedCount: 2}.AttendanceRate())
}
