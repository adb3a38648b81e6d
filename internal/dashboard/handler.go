package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/middleware"
	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/response"
)

// Handler handles dashboard HTTP endpoints. All routes require the Organiser role.
type Handler struct {
	svc        *Service
	exporter   *Exporter
	translator *i18n.Translator
	logger     *zap.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(svc *Service, exporter *Exporter, translator *i18n.Translator, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, exporter: exporter, translator: translator, logger: logger}
}

func (h *Handler) dashboardID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid dashboard id")
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /api/dashboard.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.ListSummaries(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list dashboards", uuid.Nil)
		return
	}
	response.OK(c, list)
}

// Get handles GET /api/dashboard/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.dashboardID(c)
	if !ok {
		return
	}
	d, err := h.svc.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get dashboard", id)
		return
	}
	response.OK(c, d)
}

// Participants handles GET /api/dashboard/:id/participants.
func (h *Handler) Participants(c *gin.Context) {
	id, ok := h.dashboardID(c)
	if !ok {
		return
	}
	list, err := h.svc.Participants(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "list participants", id)
		return
	}
	response.OK(c, list)
}

// Feedback handles GET /api/dashboard/:id/feedback.
func (h *Handler) Feedback(c *gin.Context) {
	id, ok := h.dashboardID(c)
	if !ok {
		return
	}
	list, err := h.svc.Feedback(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "list feedback", id)
		return
	}
	response.OK(c, list)
}

// Refresh handles POST /api/dashboard/:id/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	id, ok := h.dashboardID(c)
	if !ok {
		return
	}
	d, err := h.svc.RefreshDashboard(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "refresh dashboard", id)
		return
	}
	response.OK(c, d)
}

// Export handles GET /api/dashboard/:id/export. It answers with a download URL when the report
// was uploaded, otherwise with the CSV itself.
func (h *Handler) Export(c *gin.Context) {
	id, ok := h.dashboardID(c)
	if !ok {
		return
	}
	report, err := h.exporter.Export(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "export participants", id)
		return
	}
	if report.URL != "" {
		response.OK(c, gin.H{"url": report.URL, "filename": report.Filename})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	c.Data(http.StatusOK, ContentTypeCSV+"; charset=utf-8", report.Body)
}

func (h *Handler) fail(c *gin.Context, err error, op string, id uuid.UUID) {
	locale := middleware.Locale(c)
	if errors.Is(err, models.ErrNotFound) {
		response.NotFound(c, h.translator.T(locale, i18n.MsgEventNotFound, nil))
		return
	}
	h.logger.Error(op+" failed", zap.Error(err), zap.String("dashboard_id", id.String()))
	response.Internal(c, h.translator.T(locale, i18n.MsgInternal, nil))
}
