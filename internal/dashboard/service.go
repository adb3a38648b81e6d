package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/models"
)

// Store is the aggregate persistence the service needs.
type Store interface {
	ListSummaries(ctx context.Context) ([]models.DashboardSummary, error)
	Locate(ctx context.Context, dashboardID uuid.UUID) (uuid.UUID, *time.Time, error)
	DashboardID(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error)
	LiveMetrics(ctx context.Context, eventID uuid.UUID) (models.Metrics, error)
	Demographics(ctx context.Context, dashboardID uuid.UUID) ([]models.Demographic, error)
	ListParticipants(ctx context.Context, eventID uuid.UUID) ([]models.ParticipantRow, error)
	ListFeedback(ctx context.Context, eventID uuid.UUID) ([]models.FeedbackRow, error)
	Refresh(ctx context.Context, eventID uuid.UUID) (*models.Snapshot, error)
	EventIDs(ctx context.Context) ([]uuid.UUID, error)
}

// EventLoader loads an event with its sessions.
type EventLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Service assembles organiser dashboards.
type Service struct {
	store  Store
	events EventLoader
	logger *zap.Logger
}

// NewService creates a dashboard service.
func NewService(store Store, events EventLoader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, logger: logger}
}

// ListSummaries returns one summary per event.
func (s *Service) ListSummaries(ctx context.Context) ([]models.DashboardSummary, error) {
	return s.store.ListSummaries(ctx)
}

// GetDetail returns the full dashboard: event with sessions, live metrics, attendance rate
// and the stored demographics.
func (s *Service) GetDetail(ctx context.Context, dashboardID uuid.UUID) (*models.DashboardDetail, error) {
	eventID, refreshedAt, err := s.store.Locate(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	e, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	m, err := s.store.LiveMetrics(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("live metrics: %w", err)
	}
	demographics, err := s.store.Demographics(ctx, dashboardID)
	if err != nil {
		return nil, fmt.Errorf("demographics: %w", err)
	}
	return &models.DashboardDetail{
		DashboardID:    dashboardID,
		Event:          *e,
		Metrics:        m,
		AttendanceRate: m.AttendanceRate(),
		Demographics:   demographics,
		RefreshedAt:    refreshedAt,
	}, nil
}

// Participants lists the registrants behind a dashboard.
func (s *Service) Participants(ctx context.Context, dashboardID uuid.UUID) ([]models.ParticipantRow, error) {
	eventID, _, err := s.store.Locate(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	return s.store.ListParticipants(ctx, eventID)
}

// Feedback lists the feedback behind a dashboard.
func (s *Service) Feedback(ctx context.Context, dashboardID uuid.UUID) ([]models.FeedbackRow, error) {
	eventID, _, err := s.store.Locate(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	return s.store.ListFeedback(ctx, eventID)
}

// DashboardFor returns the dashboard id of an event.
func (s *Service) DashboardFor(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error) {
	return s.store.DashboardID(ctx, eventID)
}

// Refresh recomputes an event's stored snapshot.
func (s *Service) Refresh(ctx context.Context, eventID uuid.UUID) error {
	snap, err := s.store.Refresh(ctx, eventID)
	if err != nil {
		return err
	}
	s.logger.Debug("dashboard refreshed",
		zap.String("event_id", eventID.String()),
		zap.Int("total_registrants", snap.TotalRegistrants),
		zap.Int("attended_count", snap.AttendedCount),
		zap.Int("demographic_buckets", len(snap.Demographics)),
	)
	return nil
}

// RefreshDashboard recomputes the snapshot behind a dashboard and returns the updated detail.
func (s *Service) RefreshDashboard(ctx context.Context, dashboardID uuid.UUID) (*models.DashboardDetail, error) {
	eventID, _, err := s.store.Locate(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx, eventID); err != nil {
		return nil, err
	}
	return s.GetDetail(ctx, dashboardID)
}

// EventIDs returns every event with a dashboard, for the periodic sweep.
func (s *Service) EventIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.store.EventIDs(ctx)
}
