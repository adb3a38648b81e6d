package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/metrics"
	"github.com/event-master/backend/pkg/queue"
)

var (
	// ErrNotRegistered is returned when the participant holds no registration for the event.
	ErrNotRegistered = errors.New("not registered for event")
	// ErrNotAttended is returned when an action requires recorded attendance.
	ErrNotAttended = errors.New("registration has not attended")
	// ErrNotOrganiser is returned when the caller does not organise the registration's event.
	ErrNotOrganiser = errors.New("not an organiser of the event")
)

// Registration actions used as metric labels.
const (
	ActionRegister   = "register"
	ActionUnregister = "unregister"
	ActionAttend     = "attend"
	ActionCheckin    = "checkin"
)

// Store is the registration persistence the service needs.
type Store interface {
	Create(ctx context.Context, participantID, eventID uuid.UUID) (*models.Registration, bool, error)
	Delete(ctx context.Context, participantID, eventID uuid.UUID) error
	Get(ctx context.Context, participantID, eventID uuid.UUID) (*models.Registration, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	MarkAttended(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]models.Registration, error)
}

// EventChecker answers organiser membership for events.
type EventChecker interface {
	IsOrganiser(ctx context.Context, eventID, organiserID uuid.UUID) (bool, error)
}

// Refresher schedules a dashboard snapshot refresh.
type Refresher interface {
	EnqueueDashboardRefresh(ctx context.Context, payload queue.DashboardRefreshPayload) error
}

// Service applies registration and attendance rules.
type Service struct {
	store     Store
	events    EventChecker
	tickets   *Tickets
	refresher Refresher
	logger    *zap.Logger
}

// NewService creates a registration service.
func NewService(store Store, events EventChecker, tickets *Tickets, refresher Refresher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, tickets: tickets, refresher: refresher, logger: logger}
}

// Register registers a participant for an event. A repeat registration returns the existing
// row with created false.
func (s *Service) Register(ctx context.Context, participantID, eventID uuid.UUID) (*models.Registration, bool, error) {
	reg, created, err := s.store.Create(ctx, participantID, eventID)
	switch {
	case err != nil && errors.Is(err, models.ErrNotFound):
		metrics.Registrations.WithLabelValues(ActionRegister, metrics.StatusRejected).Inc()
		return nil, false, err
	case err != nil:
		metrics.Registrations.WithLabelValues(ActionRegister, metrics.StatusError).Inc()
		return nil, false, fmt.Errorf("create registration: %w", err)
	case !created:
		metrics.Registrations.WithLabelValues(ActionRegister, metrics.StatusDuplicate).Inc()
	default:
		metrics.Registrations.WithLabelValues(ActionRegister, metrics.StatusOK).Inc()
		s.logger.Info("participant registered", zap.String("event_id", eventID.String()), zap.String("participant_id", participantID.String()))
	}
	return reg, created, nil
}

// Unregister removes a participant's registration. Unregistering twice is not an error.
func (s *Service) Unregister(ctx context.Context, participantID, eventID uuid.UUID) error {
	if err := s.store.Delete(ctx, participantID, eventID); err != nil {
		if errors.Is(err, ErrNotRegistered) {
			metrics.Registrations.WithLabelValues(ActionUnregister, metrics.StatusRejected).Inc()
			return nil
		}
		metrics.Registrations.WithLabelValues(ActionUnregister, metrics.StatusError).Inc()
		return fmt.Errorf("delete registration: %w", err)
	}
	metrics.Registrations.WithLabelValues(ActionUnregister, metrics.StatusOK).Inc()
	return nil
}

// Lookup returns the participant's registration for an event, or nil when there is none.
func (s *Service) Lookup(ctx context.Context, participantID, eventID uuid.UUID) (*models.Registration, error) {
	reg, err := s.store.Get(ctx, participantID, eventID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return reg, err
}

// Mine lists the participant's registrations, newest first.
func (s *Service) Mine(ctx context.Context, participantID uuid.UUID) ([]models.Registration, error) {
	return s.store.ListByParticipant(ctx, participantID)
}

// Ticket issues a check-in token for the participant's registration.
func (s *Service) Ticket(ctx context.Context, participantID, eventID uuid.UUID) (string, time.Time, error) {
	reg, err := s.Lookup(ctx, participantID, eventID)
	if err != nil {
		return "", time.Time{}, err
	}
	if reg == nil {
		return "", time.Time{}, ErrNotRegistered
	}
	return s.tickets.Issue(reg.ID, reg.EventID)
}

// Checkin validates a check-in token presented to an organiser and records attendance.
func (s *Service) Checkin(ctx context.Context, organiserID uuid.UUID, token string) (*models.Registration, error) {
	claims, err := s.tickets.Parse(token)
	if err != nil {
		metrics.Registrations.WithLabelValues(ActionCheckin, metrics.StatusRejected).Inc()
		return nil, err
	}
	reg, err := s.load(ctx, claims.RegistrationID, ActionCheckin)
	if err != nil {
		return nil, err
	}
	if reg.EventID != claims.EventID {
		metrics.Registrations.WithLabelValues(ActionCheckin, metrics.StatusRejected).Inc()
		return nil, ErrInvalidToken
	}
	return s.attend(ctx, organiserID, reg, ActionCheckin)
}

// MarkAttended records attendance for a registration of an event the caller organises.
func (s *Service) MarkAttended(ctx context.Context, organiserID, registrationID uuid.UUID) (*models.Registration, error) {
	reg, err := s.load(ctx, registrationID, ActionAttend)
	if err != nil {
		return nil, err
	}
	return s.attend(ctx, organiserID, reg, ActionAttend)
}

func (s *Service) load(ctx context.Context, registrationID uuid.UUID, action string) (*models.Registration, error) {
	reg, err := s.store.GetByID(ctx, registrationID)
	if err != nil && errors.Is(err, models.ErrNotFound) {
		metrics.Registrations.WithLabelValues(action, metrics.StatusRejected).Inc()
	}
	return reg, err
}

func (s *Service) attend(ctx context.Context, organiserID uuid.UUID, reg *models.Registration, action string) (*models.Registration, error) {
	ok, err := s.events.IsOrganiser(ctx, reg.EventID, organiserID)
	if err != nil {
		return nil, fmt.Errorf("check organiser: %w", err)
	}
	if !ok {
		metrics.Registrations.WithLabelValues(action, metrics.StatusRejected).Inc()
		return nil, ErrNotOrganiser
	}
	if reg.Attended() {
		metrics.Registrations.WithLabelValues(action, metrics.StatusDuplicate).Inc()
		return reg, nil
	}
	updated, err := s.store.MarkAttended(ctx, reg.ID)
	if err != nil {
		metrics.Registrations.WithLabelValues(action, metrics.StatusError).Inc()
		return nil, fmt.Errorf("mark attended: %w", err)
	}
	metrics.Registrations.WithLabelValues(action, metrics.StatusOK).Inc()
	s.refresh(ctx, updated.EventID, queue.ReasonAttendance)
	return updated, nil
}

func (s *Service) refresh(ctx context.Context, eventID uuid.UUID, reason string) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.EnqueueDashboardRefresh(ctx, queue.DashboardRefreshPayload{EventID: eventID, Reason: reason}); err != nil {
		s.logger.Warn("enqueue dashboard refresh failed", zap.Error(err), zap.String("event_id", eventID.String()))
	}
}
