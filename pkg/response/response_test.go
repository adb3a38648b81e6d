package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		write  func(c *gin.Context)
		status int
		body   Body
	}{
		{"ok", func(c *gin.Context) { OK(c, gin.H{"registered": true}) }, http.StatusOK, Body{Success: true, Data: map[string]any{"registered": true}}},
		{"message", func(c *gin.Context) { OKMessage(c, "Already registered", nil) }, http.StatusOK, Body{Success: true, Message: "Already registered"}},
		{"bad request", func(c *gin.Context) { BadRequest(c, "event_id is required") }, http.StatusBadRequest, Body{Error: "event_id is required"}},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "Unauthorized") }, http.StatusUnauthorized, Body{Error: "Unauthorized"}},
		{"conflict", func(c *gin.Context) { Conflict(c, "feedback already submitted") }, http.StatusConflict, Body{Error: "feedback already submitted"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.write(c)

			assert.Equal(t, tt.status, w.Code)
			var got Body
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.body, got)
		})
	}
}

func TestAbortUnauthorized(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	AbortUnauthorized(c, "Unauthorized")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
