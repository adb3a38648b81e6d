package events

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/middleware"
	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/response"
)

// SessionRequest is one session in create and sync bodies. Location ("building - room") is
// accepted in place of Building/RoomNo.
type SessionRequest struct {
	SessionID  string   `json:"session_id"`
	Topic      string   `json:"topic" binding:"required"`
	Building   string   `json:"building"`
	RoomNo     string   `json:"room_no"`
	Location   string   `json:"location"`
	StartTime  string   `json:"start_time" binding:"required"`
	EndTime    string   `json:"end_time" binding:"required"`
	SpeakerID  string   `json:"speaker_id"`
	SpeakerIDs []string `json:"speaker_ids"`
}

// CreateRequest is the body for POST /api/events.
type CreateRequest struct {
	Title       string           `json:"title" binding:"required"`
	Date        string           `json:"date" binding:"required"`
	Time        string           `json:"time" binding:"required"`
	Budget      decimal.Decimal  `json:"budget"`
	Description string           `json:"description"`
	Sessions    []SessionRequest `json:"sessions" binding:"dive"`
	AgendaItems []string         `json:"agenda_items"`
}

// UpdateRequest is the body for PATCH /api/events/:id.
type UpdateRequest struct {
	Title       string          `json:"title" binding:"required"`
	Date        string          `json:"date" binding:"required"`
	Time        string          `json:"time" binding:"required"`
	Budget      decimal.Decimal `json:"budget"`
	Description string          `json:"description"`
}

// SyncSessionsRequest is the body for PUT /api/events/:id/sessions.
type SyncSessionsRequest struct {
	Sessions []SessionRequest `json:"sessions" binding:"dive"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	svc        *Service
	translator *i18n.Translator
	loc        *time.Location
	logger     *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(svc *Service, translator *i18n.Translator, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, translator: translator, loc: svc.loc, logger: logger}
}

func (h *Handler) t(c *gin.Context, key string) string {
	return h.translator.T(middleware.Locale(c), key, nil)
}

// ToSessionInputs converts request sessions, resolving clock times against the event date.
func ToSessionInputs(reqs []SessionRequest, eventDate time.Time, loc *time.Location) ([]SessionInput, error) {
	out := make([]SessionInput, 0, len(reqs))
	for _, r := range reqs {
		start, err := ParseSessionTime(r.StartTime, eventDate, loc)
		if err != nil {
			return nil, invalid("start_time", i18n.MsgInvalidSession)
		}
		end, err := ParseSessionTime(r.EndTime, eventDate, loc)
		if err != nil {
			return nil, invalid("end_time", i18n.MsgInvalidSession)
		}
		building, room := r.Building, r.RoomNo
		if building == "" && room == "" && r.Location != "" {
			building, room = SplitLocation(r.Location)
		}
		raw := r.SpeakerIDs
		if r.SpeakerID != "" {
			raw = append([]string{r.SpeakerID}, raw...)
		}
		speakers := make([]uuid.UUID, 0, len(raw))
		for _, s := range raw {
			id, err := uuid.Parse(strings.TrimSpace(s))
			if err != nil {
				return nil, invalid("speaker_id", i18n.MsgUnknownSpeaker)
			}
			speakers = append(speakers, id)
		}
		out = append(out, SessionInput{
			ID:         r.SessionID,
			Topic:      strings.TrimSpace(r.Topic),
			Building:   building,
			RoomNo:     room,
			Start:      start,
			End:        end,
			SpeakerIDs: speakers,
		})
	}
	return out, nil
}

// ParseFields builds EventFields from raw form or JSON values.
func ParseFields(title, date, clock, description string, budget decimal.Decimal) (EventFields, error) {
	d, err := ParseDate(date)
	if err != nil {
		return EventFields{}, invalid("date", i18n.MsgInvalidForm)
	}
	return EventFields{
		Title:       strings.TrimSpace(title),
		Date:        d,
		Time:        models.ShortClock(strings.TrimSpace(clock)),
		Budget:      budget,
		Description: description,
	}, nil
}

// Create handles POST /api/events (organiser only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	fields, err := ParseFields(req.Title, req.Date, req.Time, req.Description, req.Budget)
	if err != nil {
		h.fail(c, err, "create event")
		return
	}
	sessions, err := ToSessionInputs(req.Sessions, fields.Date, h.loc)
	if err != nil {
		h.fail(c, err, "create event")
		return
	}
	organiserID, _ := middleware.MustAuth(c).ProfileID()

	e, err := h.svc.Create(c.Request.Context(), organiserID, NewEvent{EventFields: fields, Agenda: req.AgendaItems, Sessions: sessions})
	if err != nil {
		h.fail(c, err, "create event")
		return
	}
	response.Created(c, e)
}

// List handles GET /api/events?filter=upcoming|completed|all.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.Store().List(c.Request.Context(), models.ParseEventFilter(c.Query("filter")))
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, h.t(c, i18n.MsgInternal))
		return
	}
	response.OK(c, list)
}

// Get handles GET /api/events/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.svc.Store().Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get event")
		return
	}
	response.OK(c, e)
}

// Update handles PATCH /api/events/:id (organiser of the event).
func (h *Handler) Update(c *gin.Context) {
	id := c.MustGet(ContextEventID).(uuid.UUID)
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	fields, err := ParseFields(req.Title, req.Date, req.Time, req.Description, req.Budget)
	if err != nil {
		h.fail(c, err, "update event")
		return
	}
	e, err := h.svc.Update(c.Request.Context(), id, fields)
	if err != nil {
		h.fail(c, err, "update event")
		return
	}
	response.OK(c, e)
}

// SyncSessions handles PUT /api/events/:id/sessions (organiser of the event).
func (h *Handler) SyncSessions(c *gin.Context) {
	id := c.MustGet(ContextEventID).(uuid.UUID)
	var req SyncSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e, err := h.svc.Store().Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "sync sessions")
		return
	}
	in, err := ToSessionInputs(req.Sessions, e.Date, h.loc)
	if err != nil {
		h.fail(c, err, "sync sessions")
		return
	}
	sessions, err := h.svc.SyncSessions(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err, "sync sessions")
		return
	}
	response.OK(c, sessions)
}

// Organizers handles GET /api/events/:id/organizers.
func (h *Handler) Organizers(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	if raw == "" {
		response.BadRequest(c, h.t(c, i18n.MsgEventIDRequired))
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.svc.Store().ListOrganizers(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("list organizers failed", zap.Error(err), zap.String("event_id", raw))
		response.Internal(c, h.t(c, i18n.MsgInternal))
		return
	}
	response.OK(c, gin.H{"organizers": list})
}

// Speakers handles GET /api/speakers (organiser only).
func (h *Handler) Speakers(c *gin.Context) {
	list, err := h.svc.Store().ListSpeakers(c.Request.Context())
	if err != nil {
		h.logger.Error("list speakers failed", zap.Error(err))
		response.Internal(c, h.t(c, i18n.MsgInternal))
		return
	}
	response.OK(c, list)
}

// SpeakerSessions handles GET /api/speaker/sessions (speaker only).
func (h *Handler) SpeakerSessions(c *gin.Context) {
	speakerID, _ := middleware.MustAuth(c).ProfileID()
	list, err := h.svc.Store().SpeakerSessions(c.Request.Context(), speakerID)
	if err != nil {
		h.logger.Error("list speaker sessions failed", zap.Error(err), zap.String("speaker_id", speakerID.String()))
		response.Internal(c, h.t(c, i18n.MsgInternal))
		return
	}
	response.OK(c, list)
}

func (h *Handler) fail(c *gin.Context, err error, op string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, h.t(c, verr.MessageID))
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, h.t(c, i18n.MsgEventNotFound))
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, h.t(c, i18n.MsgInternal))
	}
}
