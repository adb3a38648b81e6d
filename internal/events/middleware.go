package events

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/middleware"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/response"
)

// ContextEventID is the context key for the event id once organiser access is checked.
const ContextEventID = "event_id"

// OrganiserChecker answers event existence and organiser membership.
type OrganiserChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	IsOrganiser(ctx context.Context, eventID, organiserID uuid.UUID) (bool, error)
}

// RequireEventOrganiser allows only organisers linked to the event in the :id (or :event_id) param.
// Call after middleware.RequireRole(Organiser).
func RequireEventOrganiser(checker OrganiserChecker, t *i18n.Translator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("id")
		if raw == "" {
			raw = c.Param("event_id")
		}
		eventID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid event id")
			c.Abort()
			return
		}
		ctx := c.Request.Context()
		ok, err := checker.Exists(ctx, eventID)
		if err != nil {
			logger.Error("event lookup failed", zap.Error(err), zap.String("event_id", raw))
			response.Internal(c, t.T(middleware.Locale(c), i18n.MsgInternal, nil))
			c.Abort()
			return
		}
		if !ok {
			response.NotFound(c, t.T(middleware.Locale(c), i18n.MsgEventNotFound, nil))
			c.Abort()
			return
		}
		organiserID, _ := middleware.MustAuth(c).ProfileID()
		ok, err = checker.IsOrganiser(ctx, eventID, organiserID)
		if err != nil {
			logger.Error("organiser lookup failed", zap.Error(err), zap.String("event_id", raw))
			response.Internal(c, t.T(middleware.Locale(c), i18n.MsgInternal, nil))
			c.Abort()
			return
		}
		if !ok {
			response.Forbidden(c, t.T(middleware.Locale(c), i18n.MsgNotOrganiser, nil))
			c.Abort()
			return
		}
		c.Set(ContextEventID, eventID)
		c.Next()
	}
}
