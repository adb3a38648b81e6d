package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/event-master/backend/internal/models"
)

var eventRowColumns = []string{"id", "title", "event_date", "event_time", "budget", "description", "created_at", "updated_at"}

func TestRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	eventID, sessionID, speakerID, organiserID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	date := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO events").
		WithArgs("Go Meetup", date, "10:00", "150", "talks").
		WillReturnRows(pgxmock.NewRows(eventRowColumns).
			AddRow(eventID, "Go Meetup", date, "10:00:00", "150.00", "talks", now, now))
	mock.ExpectExec("INSERT INTO event_agenda").WithArgs(eventID, 1, "Welcome").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("INSERT INTO event_sessions").
		WithArgs(eventID, "Keynote", "A", "101", start, start.Add(time.Hour)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(sessionID))
	mock.ExpectExec("INSERT INTO speaker_for_session").WithArgs(speakerID, sessionID, eventID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO dashboards").WithArgs(eventID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO organiser_for_event").WithArgs(organiserID, eventID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	e, err := repo.Create(context.Background(), organiserID, NewEvent{
		EventFields: EventFields{Title: "Go Meetup", Date: date, Time: "10:00", Budget: decimal.NewFromInt(150), Description: "talks"},
		Agenda:      []string{"Welcome"},
		Sessions:    []SessionInput{{Topic: "Keynote", Building: "A", RoomNo: "101", Start: start, End: start.Add(time.Hour), SpeakerIDs: []uuid.UUID{speakerID}}},
	})
	require.NoError(t, err)
	assert.Equal(t, eventID, e.ID)
	assert.Equal(t, "10:00", e.Time)
	assert.True(t, decimal.NewFromInt(150).Equal(e.Budget))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_UnknownSpeakerRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	eventID, sessionID, ghostSpeaker := uuid.New(), uuid.New(), uuid.New()
	date := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO events").
		WithArgs("Go Meetup", date, "10:00", "0", "").
		WillReturnRows(pgxmock.NewRows(eventRowColumns).
			AddRow(eventID, "Go Meetup", date, "10:00:00", "0", "", now, now))
	mock.ExpectQuery("INSERT INTO event_sessions").
		WithArgs(eventID, "Keynote", "", "", now, now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(sessionID))
	mock.ExpectExec("INSERT INTO speaker_for_session").WithArgs(ghostSpeaker, sessionID, eventID).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	_, err = repo.Create(context.Background(), uuid.New(), NewEvent{
		EventFields: EventFields{Title: "Go Meetup", Date: date, Time: "10:00"},
		Sessions:    []SessionInput{{Topic: "Keynote", Start: now, End: now, SpeakerIDs: []uuid.UUID{ghostSpeaker}}},
	})
	assert.ErrorIs(t, err, ErrUnknownSpeaker)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	eventID, sessionID, speakerID := uuid.New(), uuid.New(), uuid.New()
	date := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery("FROM events WHERE id").WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows(eventRowColumns).
			AddRow(eventID, "Go Meetup", date, "09:30:00", "99.95", "talks", now, now))
	mock.ExpectQuery("SELECT item FROM event_agenda").WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"item"}).AddRow("Welcome").AddRow("Talks"))
	mock.ExpectQuery("FROM event_sessions WHERE event_id").WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "event_id", "topic", "building", "room_no", "start_time", "end_time"}).
			AddRow(sessionID, eventID, "Keynote", "A", "101", start, start.Add(time.Hour)))
	mock.ExpectQuery("FROM speaker_for_session sfs").WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"session_id", "id", "first_name", "last_name"}).
			AddRow(sessionID, speakerID, "Ada", "Lovelace"))

	e, err := repo.Get(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, "09:30", e.Time)
	assert.Equal(t, "99.95", e.Budget.String())
	assert.Equal(t, []string{"Welcome", "Talks"}, e.Agenda)
	require.Len(t, e.Sessions, 1)
	assert.Equal(t, "Ada Lovelace", e.Sessions[0].SpeakerNames())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGet_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	id := uuid.New()
	mock.ExpectQuery("FROM events WHERE id").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err = repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRepositoryList_Upcoming(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	now := time.Now()
	mock.ExpectQuery(`event_time > LOCALTIME\) OR event_date > CURRENT_DATE ORDER BY event_date ASC`).
		WillReturnRows(pgxmock.NewRows(eventRowColumns).
			AddRow(uuid.New(), "A", now, "08:00:00", "0", "", now, now).
			AddRow(uuid.New(), "B", now, "20:00:00", "10", "", now, now))

	list, err := repo.List(context.Background(), models.FilterUpcoming)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "20:00", list[1].Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	eventID := uuid.New()
	mock.ExpectExec("UPDATE events SET title").
		WithArgs("x", "", time.Time{}, "10:00", "0", eventID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Update(context.Background(), eventID, EventFields{Title: "x", Time: "10:00"})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySyncSessions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	eventID, keptID, newID, speakerID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM event_sessions WHERE event_id").WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(keptID).AddRow(uuid.New()))
	mock.ExpectExec("DELETE FROM event_sessions WHERE event_id").WithArgs(eventID, []uuid.UUID{keptID}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("UPDATE event_sessions SET topic").
		WithArgs("Keynote", "A", "101", start, start.Add(time.Hour), keptID, eventID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM speaker_for_session").WithArgs(keptID, eventID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO speaker_for_session").WithArgs(speakerID, keptID, eventID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("INSERT INTO event_sessions").
		WithArgs(eventID, "Panel", "", "", start, start).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(newID))
	mock.ExpectExec(`UPDATE events SET updated_at`).WithArgs(eventID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = repo.SyncSessions(context.Background(), eventID, []SessionInput{
		{ID: keptID.String(), Topic: "Keynote", Building: "A", RoomNo: "101", Start: start, End: start.Add(time.Hour), SpeakerIDs: []uuid.UUID{speakerID}},
		{ID: "new-1", Topic: "Panel", Start: start, End: start},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySyncSessions_ForeignSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	eventID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM event_sessions WHERE event_id").WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err = repo.SyncSessions(context.Background(), eventID, []SessionInput{{ID: uuid.NewString(), Topic: "x"}})
	assert.ErrorIs(t, err, ErrSessionNotInEvent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryIsOrganiser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	eventID, organiserID := uuid.New(), uuid.New()
	mock.ExpectQuery("FROM organiser_for_event WHERE event_id").WithArgs(eventID, organiserID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsOrganiser(context.Background(), eventID, organiserID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepositoryListSpeakers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	id := uuid.New()
	mock.ExpectQuery("FROM speakers ORDER BY first_name").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(id, "Ada Lovelace"))

	list, err := repo.ListSpeakers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []SpeakerOption{{ID: id, Name: "Ada Lovelace"}}, list)
}

func TestRepositoryListOrganizers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	eventID, orgID := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT o\.id, o\.first_name, o\.last_name\s+FROM organiser_for_event ofe` +
		`.*WHERE ofe\.event_id = \$1\s+ORDER BY o\.first_name, o\.last_name`).
		WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "first_name", "last_name"}).AddRow(orgID, "Olga", "Org"))

	list, err := NewRepository(mock).ListOrganizers(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.OrganiserRef{OrganiserID: orgID, FirstName: "Olga", LastName: "Org"}, list[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySpeakerSessions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	speakerID, sessionID, eventID := uuid.New(), uuid.New(), uuid.New()
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	date := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT es\.id, es\.event_id, es\.topic, es\.building, es\.room_no, es\.start_time, es\.end_time, e\.title, e\.event_date` +
		`.*WHERE sfs\.speaker_id = \$1\s+ORDER BY es\.start_time ASC`).
		WithArgs(speakerID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "event_id", "topic", "building", "room_no", "start_time", "end_time", "title", "event_date",
		}).AddRow(sessionID, eventID, "Keynote", "A", "101", start, start.Add(time.Hour), "Go Meetup", date))

	list, err := NewRepository(mock).SpeakerSessions(context.Background(), speakerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sessionID, list[0].ID)
	assert.Equal(t, "Go Meetup", list[0].EventTitle)
	assert.Equal(t, "A - 101", list[0].Location())
	assert.NoError(t, mock.ExpectationsWereMet())
}
