package worker

import (
	"context"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/event-master/backend/pkg/metrics"
	"github.com/event-master/backend/pkg/queue"
)

// EventLister lists every event with a dashboard.
type EventLister interface {
	EventIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Enqueuer schedules dashboard refreshes and reports queue depth.
type Enqueuer interface {
	EnqueueDashboardRefresh(ctx context.Context, payload queue.DashboardRefreshPayload) error
	Depth(ctx context.Context) (pending, dead int64, err error)
}

// SessionPurger deletes expired auth sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically refreshes every dashboard and purges expired sessions.
type Sweeper struct {
	events   EventLister
	queue    Enqueuer
	sessions SessionPurger
	logger   *zap.Logger
}

// NewSweeper creates a sweeper. sessions may be nil.
func NewSweeper(events EventLister, q Enqueuer, sessions SessionPurger, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{events: events, queue: q, sessions: sessions, logger: logger}
}

// Sweep enqueues a refresh for every event and purges expired sessions.
func (s *Sweeper) Sweep(ctx context.Context) {
	ids, err := s.events.EventIDs(ctx)
	if err != nil {
		s.logger.Error("list events for sweep failed", zap.Error(err))
	}
	enqueued := 0
	for _, id := range ids {
		if err := s.queue.EnqueueDashboardRefresh(ctx, queue.DashboardRefreshPayload{EventID: id, Reason: queue.ReasonSweep}); err != nil {
			s.logger.Error("enqueue sweep refresh failed", zap.Error(err), zap.String("event_id", id.String()))
			continue
		}
		enqueued++
	}

	if pending, dead, err := s.queue.Depth(ctx); err == nil {
		metrics.QueueDepth.WithLabelValues(queue.QueueDashboards).Set(float64(pending))
		metrics.QueueDepth.WithLabelValues(queue.QueueDLQ).Set(float64(dead))
	}

	var purged int64
	if s.sessions != nil {
		if purged, err = s.sessions.PurgeExpired(ctx); err != nil {
			s.logger.Error("purge sessions failed", zap.Error(err))
		}
	}
	s.logger.Info("sweep finished", zap.Int("enqueued", enqueued), zap.Int64("sessions_purged", purged))
}

// Schedule registers Sweep on a cron spec ("@every 15m", "0 * * * *") and starts the scheduler.
// Stop the returned cron to end it.
func (s *Sweeper) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.Sweep(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	s.logger.Info("dashboard sweep scheduled", zap.String("spec", spec))
	return c, nil
}
