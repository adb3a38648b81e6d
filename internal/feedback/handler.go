package feedback

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/middleware"
	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/internal/registrations"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/response"
)

// SubmitRequest is the body for POST /api/feedback.
type SubmitRequest struct {
	RegistrationID uuid.UUID `json:"registration_id" binding:"required"`
	Rating         int       `json:"rating" binding:"required"`
	Comments       string    `json:"comments" binding:"max=2000"`
}

// Handler handles feedback HTTP endpoints.
type Handler struct {
	svc        *Service
	translator *i18n.Translator
	logger     *zap.Logger
}

// NewHandler creates a feedback handler.
func NewHandler(svc *Service, translator *i18n.Translator, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, translator: translator, logger: logger}
}

// Submit handles POST /api/feedback (participant owning the registration).
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	participantID, _ := middleware.MustAuth(c).ProfileID()
	f, err := h.svc.Submit(c.Request.Context(), participantID, req.RegistrationID, req.Rating, req.Comments)
	locale := middleware.Locale(c)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRating):
			response.BadRequest(c, h.translator.T(locale, i18n.MsgInvalidRating, nil))
		case errors.Is(err, registrations.ErrNotAttended):
			response.BadRequest(c, h.translator.T(locale, i18n.MsgNotAttended, nil))
		case errors.Is(err, ErrAlreadySubmitted):
			response.Conflict(c, h.translator.T(locale, i18n.MsgFeedbackExists, nil))
		case errors.Is(err, models.ErrNotFound):
			response.NotFound(c, h.translator.T(locale, i18n.MsgRegistrationNotFound, nil))
		default:
			h.logger.Error("submit feedback failed", zap.Error(err), zap.String("registration_id", req.RegistrationID.String()))
			response.Internal(c, h.translator.T(locale, i18n.MsgInternal, nil))
		}
		return
	}
	response.CreatedMessage(c, h.translator.T(locale, i18n.MsgFeedbackThanks, nil), f)
}
