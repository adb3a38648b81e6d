package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/internal/registrations"
	"github.com/event-master/backend/pkg/metrics"
	"github.com/event-master/backend/pkg/queue"
)

var (
	// ErrAlreadySubmitted is returned for a second submission on the same registration.
	ErrAlreadySubmitted = errors.New("feedback already submitted")
	// ErrInvalidRating is returned for ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Store is the feedback persistence the service needs.
type Store interface {
	Create(ctx context.Context, registrationID uuid.UUID, rating int, comments string) (*models.Feedback, error)
	GetByRegistration(ctx context.Context, registrationID uuid.UUID) (*models.Feedback, error)
}

// RegistrationGetter loads registrations by id.
type RegistrationGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
}

// Service accepts feedback from participants who attended.
type Service struct {
	store         Store
	registrations RegistrationGetter
	refresher     registrations.Refresher
	logger        *zap.Logger
}

// NewService creates a feedback service.
func NewService(store Store, regs RegistrationGetter, refresher registrations.Refresher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, registrations: regs, refresher: refresher, logger: logger}
}

// Submit stores feedback for a registration owned by participantID. The registration must be
// marked Attended and may receive feedback only once.
func (s *Service) Submit(ctx context.Context, participantID, registrationID uuid.UUID, rating int, comments string) (*models.Feedback, error) {
	if rating < MinRating || rating > MaxRating {
		metrics.Feedback.WithLabelValues(metrics.StatusRejected).Inc()
		return nil, ErrInvalidRating
	}
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.ParticipantID != participantID {
		metrics.Feedback.WithLabelValues(metrics.StatusRejected).Inc()
		return nil, models.ErrNotFound
	}
	if !reg.Attended() {
		metrics.Feedback.WithLabelValues(metrics.StatusRejected).Inc()
		return nil, registrations.ErrNotAttended
	}
	f, err := s.store.Create(ctx, registrationID, rating, strings.TrimSpace(comments))
	if err != nil {
		if errors.Is(err, ErrAlreadySubmitted) {
			metrics.Feedback.WithLabelValues(metrics.StatusDuplicate).Inc()
			return nil, err
		}
		metrics.Feedback.WithLabelValues(metrics.StatusError).Inc()
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	metrics.Feedback.WithLabelValues(metrics.StatusOK).Inc()
	if s.refresher != nil {
		p := queue.DashboardRefreshPayload{EventID: reg.EventID, Reason: queue.ReasonFeedback}
		if err := s.refresher.EnqueueDashboardRefresh(ctx, p); err != nil {
			s.logger.Warn("enqueue dashboard refresh failed", zap.Error(err), zap.String("event_id", reg.EventID.String()))
		}
	}
	return f, nil
}

// ForRegistration returns the feedback left on a registration, or nil when there is none.
func (s *Service) ForRegistration(ctx context.Context, registrationID uuid.UUID) (*models.Feedback, error) {
	f, err := s.store.GetByRegistration(ctx, registrationID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return f, err
}
