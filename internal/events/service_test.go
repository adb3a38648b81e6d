package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/queue"
)

type fakeStore struct {
	events     map[uuid.UUID]*models.Event
	organisers map[uuid.UUID][]uuid.UUID
	speakers   []SpeakerOption
	synced     []SessionInput
	syncErr    error
	createErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: map[uuid.UUID]*models.Event{}, organisers: map[uuid.UUID][]uuid.UUID{}}
}

func (f *fakeStore) Create(_ context.Context, organiserID uuid.UUID, in NewEvent) (*models.Event, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	e := &models.Event{
		ID:          uuid.New(),
		Title:       in.Title,
		Date:        in.Date,
		Time:        in.Time,
		Budget:      in.Budget,
		Description: in.Description,
		Agenda:      in.Agenda,
		Sessions:    []models.EventSession{},
	}
	f.events[e.ID] = e
	f.organisers[e.ID] = []uuid.UUID{organiserID}
	return e, nil
}

func (f *fakeStore) Get(_ context.Context, id uuid.UUID) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) List(_ context.Context, _ models.EventFilter) ([]models.Event, error) {
	list := []models.Event{}
	for _, e := range f.events {
		list = append(list, *e)
	}
	return list, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, fields EventFields) error {
	e, ok := f.events[id]
	if !ok {
		return models.ErrNotFound
	}
	e.Title, e.Date, e.Time, e.Budget, e.Description = fields.Title, fields.Date, fields.Time, fields.Budget, fields.Description
	return nil
}

func (f *fakeStore) SyncSessions(_ context.Context, eventID uuid.UUID, in []SessionInput) error {
	if f.syncErr != nil {
		return f.syncErr
	}
	f.synced = in
	e := f.events[eventID]
	e.Sessions = []models.EventSession{}
	for _, s := range in {
		e.Sessions = append(e.Sessions, models.EventSession{ID: uuid.New(), EventID: eventID, Topic: s.Topic, Building: s.Building, RoomNo: s.RoomNo, StartTime: s.Start, EndTime: s.End})
	}
	return nil
}

func (f *fakeStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.events[id]
	return ok, nil
}

func (f *fakeStore) IsOrganiser(_ context.Context, eventID, organiserID uuid.UUID) (bool, error) {
	for _, id := range f.organisers[eventID] {
		if id == organiserID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListOrganizers(_ context.Context, eventID uuid.UUID) ([]models.OrganiserRef, error) {
	list := []models.OrganiserRef{}
	for _, id := range f.organisers[eventID] {
		list = append(list, models.OrganiserRef{OrganiserID: id, FirstName: "Olga"})
	}
	return list, nil
}

func (f *fakeStore) ListSpeakers(context.Context) ([]SpeakerOption, error) {
	return f.speakers, nil
}

func (f *fakeStore) SpeakerSessions(context.Context, uuid.UUID) ([]models.SpeakerSession, error) {
	return []models.SpeakerSession{}, nil
}

type fakeRefresher struct {
	payloads []queue.DashboardRefreshPayload
	err      error
}

func (f *fakeRefresher) EnqueueDashboardRefresh(_ context.Context, p queue.DashboardRefreshPayload) error {
	f.payloads = append(f.payloads, p)
	return f.err
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(store Store, refresher Refresher) *Service {
	s := NewService(store, refresher, time.UTC, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func validEvent() NewEvent {
	return NewEvent{
		EventFields: EventFields{
			Title:  "Go Meetup",
			Date:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			Time:   "18:30",
			Budget: decimal.NewFromInt(250),
		},
		Agenda: []string{" Welcome ", "Talks"},
	}
}

func assertValidation(t *testing.T, err error, msg string) {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, msg, verr.MessageID)
}

func TestServiceCreate(t *testing.T) {
	store, refresher := newFakeStore(), &fakeRefresher{}
	svc := newTestService(store, refresher)
	organiserID := uuid.New()

	e, err := svc.Create(context.Background(), organiserID, validEvent())
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome", "Talks"}, e.Agenda)
	ok, _ := store.IsOrganiser(context.Background(), e.ID, organiserID)
	assert.True(t, ok)
	require.Len(t, refresher.payloads, 1)
	assert.Equal(t, queue.DashboardRefreshPayload{EventID: e.ID, Reason: queue.ReasonCreated}, refresher.payloads[0])
}

func TestServiceCreate_EnqueueFailureIsNotFatal(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeRefresher{err: errors.New("redis down")})
	_, err := svc.Create(context.Background(), uuid.New(), validEvent())
	assert.NoError(t, err)
}

func TestServiceCreate_Validation(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)
	ctx := context.Background()

	in := validEvent()
	in.Budget = decimal.NewFromInt(-1)
	_, err := svc.Create(ctx, uuid.New(), in)
	assertValidation(t, err, i18n.MsgNegativeBudget)

	in = validEvent()
	in.Date = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	in.Time = "11:59"
	_, err = svc.Create(ctx, uuid.New(), in)
	assertValidation(t, err, i18n.MsgEventInPast)

	in = validEvent()
	in.Agenda = []string{"ok", "   "}
	_, err = svc.Create(ctx, uuid.New(), in)
	assertValidation(t, err, i18n.MsgEmptyAgendaItem)

	in = validEvent()
	in.Title = "  "
	_, err = svc.Create(ctx, uuid.New(), in)
	assertValidation(t, err, i18n.MsgInvalidForm)

	in = validEvent()
	in.Time = "25:00"
	_, err = svc.Create(ctx, uuid.New(), in)
	assertValidation(t, err, i18n.MsgInvalidForm)

	in = validEvent()
	start := time.Date(2026, 4, 1, 19, 0, 0, 0, time.UTC)
	in.Sessions = []SessionInput{{Topic: "Keynote", Start: start, End: start.Add(-time.Minute)}}
	_, err = svc.Create(ctx, uuid.New(), in)
	assertValidation(t, err, i18n.MsgInvalidSession)
}

func TestServiceCreate_UnknownSpeaker(t *testing.T) {
	store := newFakeStore()
	store.createErr = ErrUnknownSpeaker
	svc := newTestService(store, nil)

	_, err := svc.Create(context.Background(), uuid.New(), validEvent())
	assertValidation(t, err, i18n.MsgUnknownSpeaker)
}

func TestServiceUpdate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	e, err := svc.Create(context.Background(), uuid.New(), validEvent())
	require.NoError(t, err)

	fields := EventFields{Title: "Renamed", Date: e.Date, Time: e.Time, Budget: e.Budget}
	updated, err := svc.Update(context.Background(), e.ID, fields)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	_, err = svc.Update(context.Background(), uuid.New(), fields)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestServiceSyncSessions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	e, err := svc.Create(context.Background(), uuid.New(), validEvent())
	require.NoError(t, err)

	start := time.Date(2026, 4, 1, 19, 0, 0, 0, time.UTC)
	sessions, err := svc.SyncSessions(context.Background(), e.ID, []SessionInput{
		{ID: "new-1", Topic: "Keynote", Building: "A", RoomNo: "101", Start: start, End: start.Add(time.Hour)},
	})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "A - 101", sessions[0].Location())

	store.syncErr = ErrSessionNotInEvent
	_, err = svc.SyncSessions(context.Background(), e.ID, []SessionInput{{ID: uuid.NewString(), Topic: "X", Start: start, End: start}})
	assertValidation(t, err, i18n.MsgInvalidSession)
}

func TestParseSessionTime(t *testing.T) {
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	got, err := ParseSessionTime("09:15", day, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 9, 15, 0, 0, time.UTC), got)

	got, err = ParseSessionTime("2026-04-02T10:00:00Z", day, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC), got)

	_, err = ParseSessionTime("soon", day, time.UTC)
	assert.Error(t, err)
}

func TestSplitLocation(t *testing.T) {
	b, r := SplitLocation("Main Hall - 2B")
	assert.Equal(t, "Main Hall", b)
	assert.Equal(t, "2B", r)

	b, r = SplitLocation("Annex")
	assert.Equal(t, "Annex", b)
	assert.Equal(t, "", r)
}
