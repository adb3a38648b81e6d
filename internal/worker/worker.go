package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/metrics"
	"github.com/event-master/backend/pkg/queue"
)

// JobQueue is the part of queue.Queue the processor consumes.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, string, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// Refresher recomputes one event's dashboard snapshot.
type Refresher interface {
	Refresh(ctx context.Context, eventID uuid.UUID) error
}

// DashboardProcessor processes dashboard refresh jobs.
type DashboardProcessor struct {
	dashboards Refresher
	queue      JobQueue
	backoff    time.Duration
	logger     *zap.Logger
}

// NewDashboardProcessor creates a dashboard refresh processor.
func NewDashboardProcessor(dashboards Refresher, q JobQueue, logger *zap.Logger) *DashboardProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardProcessor{dashboards: dashboards, queue: q, backoff: queue.RetryBackoff, logger: logger}
}

// Process executes one dashboard refresh job. Jobs for events that no longer exist are dropped.
func (p *DashboardProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeDashboardRefresh {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.DashboardRefreshPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := p.dashboards.Refresh(ctx, payload.EventID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			p.logger.Info("dashboard gone, dropping job", zap.String("job_id", job.ID), zap.String("event_id", payload.EventID.String()))
			return nil
		}
		return fmt.Errorf("refresh dashboard: %w", err)
	}
	p.logger.Info("dashboard refreshed", zap.String("event_id", payload.EventID.String()), zap.String("reason", payload.Reason))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. It returns when ctx is done.
func (p *DashboardProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("dashboard worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.wait(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			metrics.DashboardJobs.WithLabelValues(metrics.StatusRetried).Inc()
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.wait(ctx)
			continue
		}
		metrics.DashboardJobs.WithLabelValues(metrics.StatusOK).Inc()
	}
}

func (p *DashboardProcessor) wait(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
