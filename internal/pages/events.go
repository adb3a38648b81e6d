package pages

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/feedback"
	"github.com/event-master/backend/internal/middleware"
	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/internal/registrations"
	"github.com/event-master/backend/pkg/i18n"
)

// EventList handles GET /events?tab=upcoming|completed|all.
func (h *Handler) EventList(c *gin.Context) {
	ctx := c.Request.Context()
	tab := models.ParseEventFilter(c.Query("tab"))
	data := gin.H{"Tab": string(tab)}

	list, err := h.Events.List(ctx, tab)
	if err != nil {
		h.internal(c, "events.html", "Events", data, err, "list events")
		return
	}
	data["Events"] = list

	a := middleware.MustAuth(c)
	if a.Session.Role == models.RoleSpeaker {
		if speakerID, ok := a.ProfileID(); ok {
			sessions, err := h.Events.SpeakerSessions(ctx, speakerID)
			if err != nil {
				h.internal(c, "events.html", "Events", data, err, "list speaker sessions")
				return
			}
			data["SpeakerSessions"] = sessions
		}
	}
	h.render(c, http.StatusOK, "events.html", "Events", data)
}

// EventDetail handles GET /events/:id.
func (h *Handler) EventDetail(c *gin.Context) {
	h.renderEvent(c, http.StatusOK, "")
}

// renderEvent renders the event page with the caller's registration and feedback state.
func (h *Handler) renderEvent(c *gin.Context, status int, errMsg string) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, h.t(c, i18n.MsgEventNotFound, nil))
		return
	}
	e, err := h.Events.Get(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		c.String(http.StatusNotFound, h.t(c, i18n.MsgEventNotFound, nil))
		return
	}
	if err != nil {
		h.logger.Error("get event failed", zap.Error(err), zap.String("event_id", id.String()))
		c.String(http.StatusInternalServerError, h.t(c, i18n.MsgInternal, nil))
		return
	}
	data := gin.H{"Event": e, "Error": errMsg}

	a := middleware.MustAuth(c)
	if participantID, ok := a.ProfileID(); ok && a.Session.Role == models.RoleParticipant {
		data["Participant"] = true
		reg, err := h.Registrations.Lookup(ctx, participantID, id)
		if err != nil {
			h.internal(c, "event.html", e.Title, data, err, "lookup registration")
			return
		}
		if reg != nil {
			data["Registration"] = reg
			if reg.Attended() {
				fb, err := h.Feedback.ForRegistration(ctx, reg.ID)
				if err != nil {
					h.internal(c, "event.html", e.Title, data, err, "get feedback")
					return
				}
				if fb != nil {
					data["Feedback"] = fb
				}
			}
		}
	}
	h.render(c, status, "event.html", e.Title, data)
}

func eventURL(id uuid.UUID, notice string) string {
	return "/events/" + id.String() + "?notice=" + url.QueryEscape(notice)
}

// Register handles POST /events/:id/register.
func (h *Handler) Register(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, h.t(c, i18n.MsgEventNotFound, nil))
		return
	}
	participantID, _ := middleware.MustAuth(c).ProfileID()
	_, created, err := h.Registrations.Register(c.Request.Context(), participantID, id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.String(http.StatusNotFound, h.t(c, i18n.MsgEventNotFound, nil))
	case err != nil:
		h.logger.Error("register failed", zap.Error(err), zap.String("event_id", id.String()))
		h.renderEvent(c, http.StatusInternalServerError, h.t(c, i18n.MsgInternal, nil))
	case created:
		redirect(c, eventURL(id, i18n.MsgRegistered))
	default:
		redirect(c, eventURL(id, i18n.MsgAlreadyRegistered))
	}
}

// Unregister handles POST /events/:id/unregister.
func (h *Handler) Unregister(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, h.t(c, i18n.MsgEventNotFound, nil))
		return
	}
	participantID, _ := middleware.MustAuth(c).ProfileID()
	err = h.Registrations.Unregister(c.Request.Context(), participantID, id)
	if err != nil {
		h.logger.Error("unregister failed", zap.Error(err), zap.String("event_id", id.String()))
		h.renderEvent(c, http.StatusInternalServerError, h.t(c, i18n.MsgInternal, nil))
		return
	}
	redirect(c, eventURL(id, i18n.MsgUnregistered))
}

// SubmitFeedback handles POST /events/:id/feedback for the caller's registration.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, h.t(c, i18n.MsgEventNotFound, nil))
		return
	}
	participantID, _ := middleware.MustAuth(c).ProfileID()
	reg, err := h.Registrations.Lookup(ctx, participantID, id)
	if err != nil {
		h.logger.Error("lookup registration failed", zap.Error(err), zap.String("event_id", id.String()))
		h.renderEvent(c, http.StatusInternalServerError, h.t(c, i18n.MsgInternal, nil))
		return
	}
	if reg == nil {
		h.renderEvent(c, http.StatusNotFound, h.t(c, i18n.MsgNotRegistered, nil))
		return
	}
	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		h.renderEvent(c, http.StatusBadRequest, h.t(c, i18n.MsgInvalidRating, nil))
		return
	}

	_, err = h.Feedback.Submit(ctx, participantID, reg.ID, rating, c.PostForm("comments"))
	switch {
	case errors.Is(err, feedback.ErrInvalidRating):
		h.renderEvent(c, http.StatusBadRequest, h.t(c, i18n.MsgInvalidRating, nil))
	case errors.Is(err, registrations.ErrNotAttended):
		h.renderEvent(c, http.StatusBadRequest, h.t(c, i18n.MsgNotAttended, nil))
	case errors.Is(err, feedback.ErrAlreadySubmitted):
		h.renderEvent(c, http.StatusConflict, h.t(c, i18n.MsgFeedbackExists, nil))
	case err != nil:
		h.logger.Error("submit feedback failed", zap.Error(err), zap.String("registration_id", reg.ID.String()))
		h.renderEvent(c, http.StatusInternalServerError, h.t(c, i18n.MsgInternal, nil))
	default:
		redirect(c, eventURL(id, i18n.MsgFeedbackThanks))
	}
}
