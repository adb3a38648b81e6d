package registrations

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/middleware"
	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/response"
)

// EventRequest carries the event a participant registers for. event_id may come from the JSON
// body or the query string.
type EventRequest struct {
	EventID string `json:"event_id" form:"event_id"`
}

// CheckinRequest is the body for POST /api/checkin.
type CheckinRequest struct {
	Token string `json:"token" binding:"required"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	svc        *Service
	translator *i18n.Translator
	logger     *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(svc *Service, translator *i18n.Translator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, translator: translator, logger: logger}
}

func (h *Handler) t(c *gin.Context, key string) string {
	return h.translator.T(middleware.Locale(c), key, nil)
}

// eventID reads event_id from the body (when present) or the query string. It writes a 400 and
// returns false when missing or malformed.
func (h *Handler) eventID(c *gin.Context) (uuid.UUID, bool) {
	var req EventRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(c, "invalid request: "+err.Error())
			return uuid.Nil, false
		}
	}
	if req.EventID == "" {
		req.EventID = c.Query("event_id")
	}
	raw := strings.TrimSpace(req.EventID)
	if raw == "" {
		response.BadRequest(c, h.t(c, i18n.MsgEventIDRequired))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, false
	}
	return id, true
}

func participantID(c *gin.Context) uuid.UUID {
	id, _ := middleware.MustAuth(c).ProfileID()
	return id
}

// Register handles POST /api/event_register (participant only).
func (h *Handler) Register(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	reg, created, err := h.svc.Register(c.Request.Context(), participantID(c), eventID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, h.t(c, i18n.MsgEventNotFound))
			return
		}
		h.logger.Error("register failed", zap.Error(err), zap.String("event_id", eventID.String()))
		response.Internal(c, h.t(c, i18n.MsgInternal))
		return
	}
	if !created {
		response.OKMessage(c, h.t(c, i18n.MsgAlreadyRegistered), reg)
		return
	}
	response.OKMessage(c, h.t(c, i18n.MsgRegistered), reg)
}

// Unregister handles DELETE /api/event_register (participant only).
func (h *Handler) Unregister(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	if err := h.svc.Unregister(c.Request.Context(), participantID(c), eventID); err != nil {
		h.logger.Error("unregister failed", zap.Error(err), zap.String("event_id", eventID.String()))
		response.Internal(c, h.t(c, i18n.MsgInternal))
		return
	}
	response.OKMessage(c, h.t(c, i18n.MsgUnregistered), nil)
}

// Status handles GET /api/event_register?event_id=. event_id is checked before the participant role.
func (h *Handler) Status(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	if !middleware.HasRole(c, models.RoleParticipant) {
		response.Unauthorized(c, h.t(c, i18n.MsgUnauthorized))
		return
	}
	reg, err := h.svc.Lookup(c.Request.Context(), participantID(c), eventID)
	if err != nil {
		h.logger.Error("registration lookup failed", zap.Error(err), zap.String("event_id", eventID.String()))
		response.Internal(c, h.t(c, i18n.MsgInternal))
		return
	}
	response.OK(c, gin.H{"registered": reg != nil, "registration": reg})
}

// List handles GET /api/registrations (participant only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.Mine(c.Request.Context(), participantID(c))
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err))
		response.Internal(c, h.t(c, i18n.MsgInternal))
		return
	}
	response.OK(c, list)
}

// Ticket handles GET /api/event_register/ticket?event_id= (participant only).
func (h *Handler) Ticket(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	token, expires, err := h.svc.Ticket(c.Request.Context(), participantID(c), eventID)
	if err != nil {
		if errors.Is(err, ErrNotRegistered) {
			response.NotFound(c, h.t(c, i18n.MsgNotRegistered))
			return
		}
		h.logger.Error("issue ticket failed", zap.Error(err), zap.String("event_id", eventID.String()))
		response.Internal(c, h.t(c, i18n.MsgInternal))
		return
	}
	response.OK(c, gin.H{"token": token, "expires_at": expires})
}

// Checkin handles POST /api/checkin (organiser of the ticket's event).
func (h *Handler) Checkin(c *gin.Context) {
	var req CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	organiserID, _ := middleware.MustAuth(c).ProfileID()
	reg, err := h.svc.Checkin(c.Request.Context(), organiserID, req.Token)
	if err != nil {
		h.fail(c, err, "checkin")
		return
	}
	response.OK(c, reg)
}

// Attend handles POST /api/registrations/:id/attend (organiser of the registration's event).
func (h *Handler) Attend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	organiserID, _ := middleware.MustAuth(c).ProfileID()
	reg, err := h.svc.MarkAttended(c.Request.Context(), organiserID, id)
	if err != nil {
		h.fail(c, err, "mark attended")
		return
	}
	response.OK(c, reg)
}

func (h *Handler) fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, ErrInvalidToken):
		response.BadRequest(c, h.t(c, i18n.MsgInvalidToken))
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, h.t(c, i18n.MsgRegistrationNotFound))
	case errors.Is(err, ErrNotOrganiser):
		response.Forbidden(c, h.t(c, i18n.MsgNotOrganiser))
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		response.Internal(c, h.t(c, i18n.MsgInternal))
	}
}
