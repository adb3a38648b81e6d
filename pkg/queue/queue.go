package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueDashboards is the Redis list key for dashboard refresh jobs.
	QueueDashboards = "worker:dashboards"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
	// BlockTimeout bounds a single BLPOP so the consumer can observe ctx cancellation.
	BlockTimeout = 5 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeDashboardRefresh JobType = "dashboard_refresh"
)

// Refresh reasons carried in DashboardRefreshPayload.Reason.
const (
	ReasonAttendance = "attendance"
	ReasonFeedback   = "feedback"
	ReasonSweep      = "sweep"
	ReasonCreated    = "event_created"
)

// DashboardRefreshPayload is the payload for dashboard refresh jobs.
type DashboardRefreshPayload struct {
	EventID uuid.UUID `json:"event_id"`
	Reason  string    `json:"reason"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client redis.Cmdable
	logger *zap.Logger
	newID  func() string
	now    func() time.Time
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client redis.Cmdable, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		client: client,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
}

// EnqueueDashboardRefresh enqueues a recomputation of one event's dashboard snapshot.
func (q *Queue) EnqueueDashboardRefresh(ctx context.Context, payload DashboardRefreshPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        q.newID(),
		Type:      JobTypeDashboardRefresh,
		Payload:   body,
		CreatedAt: q.now().UTC(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueueDashboards, string(raw)).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued dashboard refresh job",
		zap.String("job_id", job.ID),
		zap.String("event_id", payload.EventID.String()),
		zap.String("reason", payload.Reason),
	)
	return nil
}

// Dequeue waits up to BlockTimeout for a job. A nil job with nil error means nothing was available
// or the entry could not be decoded.
func (q *Queue) Dequeue(ctx context.Context) (*Job, string, error) {
	result, err := q.client.BLPop(ctx, BlockTimeout, QueueDashboards).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", err
	}
	if len(result) < 2 {
		return nil, "", nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, "", nil
	}
	return &job, result[0], nil
}

// Retry re-enqueues a job with incremented attempt. If attempt >= MaxRetries, pushes to DLQ instead.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, string(raw)).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	if err := q.client.RPush(ctx, QueueDashboards, string(raw)).Err(); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}

// Depth returns the number of pending jobs and dead-lettered jobs.
func (q *Queue) Depth(ctx context.Context) (pending, dead int64, err error) {
	if pending, err = q.client.LLen(ctx, QueueDashboards).Result(); err != nil {
		return 0, 0, err
	}
	if dead, err = q.client.LLen(ctx, QueueDLQ).Result(); err != nil {
		return 0, 0, err
	}
	return pending, dead, nil
}
