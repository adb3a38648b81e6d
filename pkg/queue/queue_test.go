package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestQueue() (*Queue, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	q := NewQueue(db, nil)
	q.newID = func() string { return "job-1" }
	q.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return q, mock
}

func encodedJob(t *testing.T, job Job) string {
	t.Helper()
	raw, err := json.Marshal(job)
	require.NoError(t, err)
	return string(raw)
}

func TestEnqueueDashboardRefresh(t *testing.T) {
	q, mock := setupTestQueue()
	eventID := uuid.MustParse("7c1f0c52-7c39-4c40-9bb9-0c1a3c0c5a11")

	payload, err := json.Marshal(DashboardRefreshPayload{EventID: eventID, Reason: ReasonFeedback})
	require.NoError(t, err)
	want := encodedJob(t, Job{
		ID:        "job-1",
		Type:      JobTypeDashboardRefresh,
		Payload:   payload,
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	mock.ExpectRPush(QueueDashboards, want).SetVal(1)

	err = q.EnqueueDashboardRefresh(context.Background(), DashboardRefreshPayload{EventID: eventID, Reason: ReasonFeedback})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueueDashboardRefresh_RedisError(t *testing.T) {
	q, mock := setupTestQueue()
	mock.Regexp().ExpectRPush(QueueDashboards, `.*`).SetErr(errors.New("connection refused"))

	err := q.EnqueueDashboardRefresh(context.Background(), DashboardRefreshPayload{EventID: uuid.New()})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rpush")
}

func TestDequeue(t *testing.T) {
	q, mock := setupTestQueue()
	job := Job{ID: "job-9", Type: JobTypeDashboardRefresh, Payload: json.RawMessage(`{"event_id":"00000000-0000-0000-0000-000000000001","reason":"sweep"}`)}
	mock.ExpectBLPop(BlockTimeout, QueueDashboards).SetVal([]string{QueueDashboards, encodedJob(t, job)})

	got, key, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, QueueDashboards, key)
	assert.Equal(t, "job-9", got.ID)
	assert.Equal(t, JobTypeDashboardRefresh, got.Type)
}

func TestDequeue_Timeout(t *testing.T) {
	q, mock := setupTestQueue()
	mock.ExpectBLPop(BlockTimeout, QueueDashboards).RedisNil()

	got, _, err := q.Dequeue(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDequeue_InvalidPayload(t *testing.T) {
	q, mock := setupTestQueue()
	mock.ExpectBLPop(BlockTimeout, QueueDashboards).SetVal([]string{QueueDashboards, "not-json"})

	got, _, err := q.Dequeue(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRetry(t *testing.T) {
	t.Run("requeues below max retries", func(t *testing.T) {
		q, mock := setupTestQueue()
		job := &Job{ID: "job-2", Type: JobTypeDashboardRefresh, Payload: json.RawMessage(`{}`)}
		next := *job
		next.Attempt = 1
		mock.ExpectRPush(QueueDashboards, encodedJob(t, next)).SetVal(1)

		require.NoError(t, q.Retry(context.Background(), job))
		assert.Equal(t, 1, job.Attempt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("moves to DLQ at max retries", func(t *testing.T) {
		q, mock := setupTestQueue()
		job := &Job{ID: "job-3", Type: JobTypeDashboardRefresh, Payload: json.RawMessage(`{}`), Attempt: MaxRetries - 1}
		next := *job
		next.Attempt = MaxRetries
		mock.ExpectRPush(QueueDLQ, encodedJob(t, next)).SetVal(1)

		require.NoError(t, q.Retry(context.Background(), job))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDepth(t *testing.T) {
	q, mock := setupTestQueue()
	mock.ExpectLLen(QueueDashboards).SetVal(4)
	mock.ExpectLLen(QueueDLQ).SetVal(1)

	pending, dead, err := q.Depth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), pending)
	assert.Equal(t, int64(1), dead)
}
