package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/queue"
)

// ValidationError is a rejected event or session input; MessageID is an i18n message id.
type ValidationError struct {
	MessageID string
	Field     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.MessageID)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, MessageID: msg}
}

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, organiserID uuid.UUID, in NewEvent) (*models.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	Update(ctx context.Context, id uuid.UUID, f EventFields) error
	SyncSessions(ctx context.Context, eventID uuid.UUID, in []SessionInput) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	IsOrganiser(ctx context.Context, eventID, organiserID uuid.UUID) (bool, error)
	ListOrganizers(ctx context.Context, eventID uuid.UUID) ([]models.OrganiserRef, error)
	ListSpeakers(ctx context.Context) ([]SpeakerOption, error)
	SpeakerSessions(ctx context.Context, speakerID uuid.UUID) ([]models.SpeakerSession, error)
}

// Refresher schedules a dashboard snapshot refresh.
type Refresher interface {
	EnqueueDashboardRefresh(ctx context.Context, payload queue.DashboardRefreshPayload) error
}

// Service validates and applies event changes.
type Service struct {
	store     Store
	refresher Refresher
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates an event service. Event dates and times are wall-clock values in loc.
func NewService(store Store, refresher Refresher, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, refresher: refresher, loc: loc, now: time.Now, logger: logger}
}

// Store exposes the underlying store for read-only queries.
func (s *Service) Store() Store { return s.store }

// Create validates and stores a new event organised by organiserID.
func (s *Service) Create(ctx context.Context, organiserID uuid.UUID, in NewEvent) (*models.Event, error) {
	if err := s.validateFields(in.EventFields); err != nil {
		return nil, err
	}
	if !models.CombineDateTime(in.Date, in.Time, s.loc).After(s.now()) {
		return nil, invalid("date", i18n.MsgEventInPast)
	}
	agenda := make([]string, 0, len(in.Agenda))
	for _, item := range in.Agenda {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, invalid("agenda", i18n.MsgEmptyAgendaItem)
		}
		agenda = append(agenda, item)
	}
	in.Agenda = agenda
	if err := validateSessions(in.Sessions); err != nil {
		return nil, err
	}

	e, err := s.store.Create(ctx, organiserID, in)
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.logger.Info("event created", zap.String("event_id", e.ID.String()), zap.String("organiser_id", organiserID.String()))
	s.refresh(ctx, e.ID, queue.ReasonCreated)
	return e, nil
}

// Update validates and replaces an event's scalar fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, f EventFields) (*models.Event, error) {
	if err := s.validateFields(f); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, f); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// SyncSessions validates and applies a full session list for an event.
func (s *Service) SyncSessions(ctx context.Context, eventID uuid.UUID, in []SessionInput) ([]models.EventSession, error) {
	if err := validateSessions(in); err != nil {
		return nil, err
	}
	if err := s.store.SyncSessions(ctx, eventID, in); err != nil {
		return nil, mapStoreError(err)
	}
	e, err := s.store.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return e.Sessions, nil
}

func (s *Service) validateFields(f EventFields) error {
	if strings.TrimSpace(f.Title) == "" {
		return invalid("title", i18n.MsgInvalidForm)
	}
	if f.Budget.IsNegative() {
		return invalid("budget", i18n.MsgNegativeBudget)
	}
	if _, err := time.Parse("15:04", f.Time); err != nil {
		return invalid("time", i18n.MsgInvalidForm)
	}
	return nil
}

func validateSessions(in []SessionInput) error {
	for _, s := range in {
		if strings.TrimSpace(s.Topic) == "" || s.Start.IsZero() || s.End.IsZero() || s.End.Before(s.Start) {
			return invalid("sessions", i18n.MsgInvalidSession)
		}
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownSpeaker):
		return invalid("speaker_id", i18n.MsgUnknownSpeaker)
	case errors.Is(err, ErrSessionNotInEvent):
		return invalid("session_id", i18n.MsgInvalidSession)
	}
	return err
}

func (s *Service) refresh(ctx context.Context, eventID uuid.UUID, reason string) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.EnqueueDashboardRefresh(ctx, queue.DashboardRefreshPayload{EventID: eventID, Reason: reason}); err != nil {
		s.logger.Warn("enqueue dashboard refresh failed", zap.Error(err), zap.String("event_id", eventID.String()))
	}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(s))
}

// ParseSessionTime accepts RFC3339 or an HH:MM clock on the event date in loc.
func ParseSessionTime(s string, eventDate time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return time.Time{}, fmt.Errorf("invalid session time %q", s)
	}
	return models.CombineDateTime(eventDate, s, loc), nil
}

// SplitLocation splits "building - room" into its parts.
func SplitLocation(location string) (building, room string) {
	building, room, _ = strings.Cut(location, " - ")
	return strings.TrimSpace(building), strings.TrimSpace(room)
}
