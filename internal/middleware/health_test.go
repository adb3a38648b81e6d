package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func serveHealth(checks map[string]HealthCheck) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/health", Health(checks, time.Second, zap.NewNop()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealth(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")
	ok := func(context.Context) error { return nil }

	w := serveHealth(map[string]HealthCheck{
		"postgres": ok,
		"redis":    func(ctx context.Context) error { return db.Ping(ctx).Err() },
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealth_DependencyDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectPing().SetErr(errors.New("connection refused"))

	w := serveHealth(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return db.Ping(ctx).Err() },
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis unavailable")
}
