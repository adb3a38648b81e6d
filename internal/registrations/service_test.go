package registrations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/metrics"
	"github.com/event-master/backend/pkg/queue"
)

type key struct{ participant, event uuid.UUID }

type fakeStore struct {
	events map[uuid.UUID]bool
	rows   map[key]*models.Registration
}

func newFakeStore(events ...uuid.UUID) *fakeStore {
	f := &fakeStore{events: map[uuid.UUID]bool{}, rows: map[key]*models.Registration{}}
	for _, id := range events {
		f.events[id] = true
	}
	return f
}

func (f *fakeStore) Create(_ context.Context, participantID, eventID uuid.UUID) (*models.Registration, bool, error) {
	if !f.events[eventID] {
		return nil, false, models.ErrNotFound
	}
	k := key{participantID, eventID}
	if reg, ok := f.rows[k]; ok {
		return reg, false, nil
	}
	reg := &models.Registration{
		ID:               uuid.New(),
		ParticipantID:    participantID,
		EventID:          eventID,
		RegistrationDate: time.Now(),
		Type:             models.RegistrationTypeStandard,
		AttendanceStatus: models.AttendanceAbsent,
	}
	f.rows[k] = reg
	return reg, true, nil
}

func (f *fakeStore) Delete(_ context.Context, participantID, eventID uuid.UUID) error {
	k := key{participantID, eventID}
	if _, ok := f.rows[k]; !ok {
		return ErrNotRegistered
	}
	delete(f.rows, k)
	return nil
}

func (f *fakeStore) Get(_ context.Context, participantID, eventID uuid.UUID) (*models.Registration, error) {
	if reg, ok := f.rows[key{participantID, eventID}]; ok {
		return reg, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	for _, reg := range f.rows {
		if reg.ID == id {
			return reg, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) MarkAttended(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reg.AttendanceStatus = models.AttendanceAttended
	return reg, nil
}

func (f *fakeStore) ListByParticipant(_ context.Context, participantID uuid.UUID) ([]models.Registration, error) {
	list := []models.Registration{}
	for k, reg := range f.rows {
		if k.participant == participantID {
			list = append(list, *reg)
		}
	}
	return list, nil
}

type fakeOrganisers map[uuid.UUID]uuid.UUID // event -> organiser

func (f fakeOrganisers) IsOrganiser(_ context.Context, eventID, organiserID uuid.UUID) (bool, error) {
	return f[eventID] == organiserID, nil
}

type fakeRefresher struct {
	payloads []queue.DashboardRefreshPayload
}

func (f *fakeRefresher) EnqueueDashboardRefresh(_ context.Context, p queue.DashboardRefreshPayload) error {
	f.payloads = append(f.payloads, p)
	return nil
}

func TestServiceRegister_Idempotent(t *testing.T) {
	eventID, participant := uuid.New(), uuid.New()
	store := newFakeStore(eventID)
	svc := NewService(store, fakeOrganisers{}, NewTickets("s", 1), nil, nil)
	dupBefore := testutil.ToFloat64(metrics.Registrations.WithLabelValues(ActionRegister, metrics.StatusDuplicate))

	first, created, err := svc.Register(context.Background(), participant, eventID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Register(context.Background(), participant, eventID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.rows, 1)
	assert.Equal(t, dupBefore+1, testutil.ToFloat64(metrics.Registrations.WithLabelValues(ActionRegister, metrics.StatusDuplicate)))
}

func TestServiceRegister_UnknownEvent(t *testing.T) {
	svc := NewService(newFakeStore(), fakeOrganisers{}, NewTickets("s", 1), nil, nil)
	_, _, err := svc.Register(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestServiceUnregister(t *testing.T) {
	eventID, participant := uuid.New(), uuid.New()
	svc := NewService(newFakeStore(eventID), fakeOrganisers{}, NewTickets("s", 1), nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Unregister(ctx, participant, eventID))
	_, _, err := svc.Register(ctx, participant, eventID)
	require.NoError(t, err)
	require.NoError(t, svc.Unregister(ctx, participant, eventID))
	require.NoError(t, svc.Unregister(ctx, participant, eventID))

	reg, err := svc.Lookup(ctx, participant, eventID)
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestServiceCheckin(t *testing.T) {
	eventID, participant, organiser := uuid.New(), uuid.New(), uuid.New()
	refresher := &fakeRefresher{}
	svc := NewService(newFakeStore(eventID), fakeOrganisers{eventID: organiser}, NewTickets("s", 1), refresher, nil)
	ctx := context.Background()

	_, _, err := svc.Ticket(ctx, participant, eventID)
	assert.ErrorIs(t, err, ErrNotRegistered)

	_, _, err = svc.Register(ctx, participant, eventID)
	require.NoError(t, err)
	token, _, err := svc.Ticket(ctx, participant, eventID)
	require.NoError(t, err)

	_, err = svc.Checkin(ctx, uuid.New(), token)
	assert.ErrorIs(t, err, ErrNotOrganiser)

	reg, err := svc.Checkin(ctx, organiser, token)
	require.NoError(t, err)
	assert.True(t, reg.Attended())
	assert.Equal(t, []queue.DashboardRefreshPayload{{EventID: eventID, Reason: queue.ReasonAttendance}}, refresher.payloads)

	// checking in twice does not enqueue another refresh
	_, err = svc.Checkin(ctx, organiser, token)
	require.NoError(t, err)
	assert.Len(t, refresher.payloads, 1)

	_, err = svc.Checkin(ctx, organiser, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestServiceMarkAttended(t *testing.T) {
	eventID, participant, organiser := uuid.New(), uuid.New(), uuid.New()
	svc := NewService(newFakeStore(eventID), fakeOrganisers{eventID: organiser}, NewTickets("s", 1), nil, nil)
	ctx := context.Background()

	reg, _, err := svc.Register(ctx, participant, eventID)
	require.NoError(t, err)

	_, err = svc.MarkAttended(ctx, organiser, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	updated, err := svc.MarkAttended(ctx, organiser, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceAttended, updated.AttendanceStatus)
}
