package pages

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/events"
	"github.com/event-master/backend/internal/middleware"
	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/i18n"
)

// EventForm is the create-event form on the dashboard. It carries at most one session.
type EventForm struct {
	Title           string `form:"title"`
	Date            string `form:"date"`
	Time            string `form:"time"`
	Budget          string `form:"budget"`
	Description     string `form:"description"`
	Agenda          string `form:"agenda"` // one item per line
	SessionTopic    string `form:"session_topic"`
	SessionLocation string `form:"session_location"`
	SessionStart    string `form:"session_start"`
	SessionEnd      string `form:"session_end"`
	SessionSpeaker  string `form:"session_speaker"`
}

// agenda splits the agenda textarea, dropping blank lines.
func (f EventForm) agenda() []string {
	var items []string
	for _, line := range strings.Split(f.Agenda, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

func (f EventForm) sessions() []events.SessionRequest {
	if strings.TrimSpace(f.SessionTopic) == "" {
		return nil
	}
	return []events.SessionRequest{{
		Topic:     f.SessionTopic,
		Location:  f.SessionLocation,
		StartTime: f.SessionStart,
		EndTime:   f.SessionEnd,
		SpeakerID: f.SessionSpeaker,
	}}
}

// Dashboard handles GET /dashboard.
func (h *Handler) Dashboard(c *gin.Context) {
	h.renderDashboard(c, http.StatusOK, EventForm{}, "")
}

func (h *Handler) renderDashboard(c *gin.Context, status int, form EventForm, errMsg string) {
	ctx := c.Request.Context()
	data := gin.H{"Form": form, "Error": errMsg}
	summaries, err := h.Dashboards.ListSummaries(ctx)
	if err != nil {
		h.internal(c, "dashboard.html", "Dashboard", data, err, "list dashboards")
		return
	}
	speakers, err := h.Events.ListSpeakers(ctx)
	if err != nil {
		h.internal(c, "dashboard.html", "Dashboard", data, err, "list speakers")
		return
	}
	data["Summaries"] = summaries
	data["Speakers"] = speakers
	h.render(c, status, "dashboard.html", "Dashboard", data)
}

// CreateEvent handles POST /dashboard/events.
func (h *Handler) CreateEvent(c *gin.Context) {
	ctx := c.Request.Context()
	var form EventForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderDashboard(c, http.StatusBadRequest, form, h.t(c, i18n.MsgInvalidForm, nil))
		return
	}
	budget := decimal.Zero
	if s := strings.TrimSpace(form.Budget); s != "" {
		b, err := decimal.NewFromString(s)
		if err != nil {
			h.renderDashboard(c, http.StatusBadRequest, form, h.t(c, i18n.MsgNegativeBudget, nil))
			return
		}
		budget = b
	}
	fields, err := events.ParseFields(form.Title, form.Date, form.Time, form.Description, budget)
	if err != nil {
		h.createFailed(c, form, err)
		return
	}
	sessions, err := events.ToSessionInputs(form.sessions(), fields.Date, h.loc)
	if err != nil {
		h.createFailed(c, form, err)
		return
	}
	organiserID, _ := middleware.MustAuth(c).ProfileID()

	e, err := h.Creator.Create(ctx, organiserID, events.NewEvent{EventFields: fields, Agenda: form.agenda(), Sessions: sessions})
	if err != nil {
		h.createFailed(c, form, err)
		return
	}
	dashboardID, err := h.Dashboards.DashboardFor(ctx, e.ID)
	if err != nil {
		h.logger.Warn("dashboard lookup after create failed", zap.Error(err), zap.String("event_id", e.ID.String()))
		redirect(c, "/dashboard?notice="+i18n.MsgEventCreated)
		return
	}
	redirect(c, "/dashboard/"+dashboardID.String()+"?notice="+i18n.MsgEventCreated)
}

func (h *Handler) createFailed(c *gin.Context, form EventForm, err error) {
	var verr *events.ValidationError
	if errors.As(err, &verr) {
		h.renderDashboard(c, http.StatusBadRequest, form, h.t(c, verr.MessageID, nil))
		return
	}
	h.logger.Error("create event failed", zap.Error(err))
	h.renderDashboard(c, http.StatusInternalServerError, form, h.t(c, i18n.MsgInternal, nil))
}

// DashboardDetail handles GET /dashboard/:id.
func (h *Handler) DashboardDetail(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, h.t(c, i18n.MsgEventNotFound, nil))
		return
	}
	detail, err := h.Dashboards.GetDetail(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		c.String(http.StatusNotFound, h.t(c, i18n.MsgEventNotFound, nil))
		return
	}
	if err != nil {
		h.logger.Error("get dashboard failed", zap.Error(err), zap.String("dashboard_id", id.String()))
		c.String(http.StatusInternalServerError, h.t(c, i18n.MsgInternal, nil))
		return
	}
	participants, err := h.Dashboards.Participants(ctx, id)
	if err != nil {
		h.internal(c, "dashboard_detail.html", detail.Event.Title, gin.H{"Detail": detail}, err, "list participants")
		return
	}
	fb, err := h.Dashboards.Feedback(ctx, id)
	if err != nil {
		h.internal(c, "dashboard_detail.html", detail.Event.Title, gin.H{"Detail": detail}, err, "list feedback")
		return
	}
	h.render(c, http.StatusOK, "dashboard_detail.html", detail.Event.Title, gin.H{
		"Detail":       detail,
		"Participants": participants,
		"Feedback":     fb,
	})
}
