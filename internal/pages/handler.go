package pages

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/auth"
	"github.com/event-master/backend/internal/events"
	"github.com/event-master/backend/internal/middleware"
	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/internal/session"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/metrics"
)

// Authenticator opens and closes sessions.
type Authenticator interface {
	Signup(ctx context.Context, in auth.SignupInput) (*session.Session, error)
	Login(ctx context.Context, in auth.LoginInput) (*session.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// EventStore reads events and speakers.
type EventStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	ListSpeakers(ctx context.Context) ([]events.SpeakerOption, error)
	SpeakerSessions(ctx context.Context, speakerID uuid.UUID) ([]models.SpeakerSession, error)
}

// EventCreator validates and creates events.
type EventCreator interface {
	Create(ctx context.Context, organiserID uuid.UUID, in events.NewEvent) (*models.Event, error)
}

// Registrations manages a participant's registrations.
type Registrations interface {
	Register(ctx context.Context, participantID, eventID uuid.UUID) (*models.Registration, bool, error)
	Unregister(ctx context.Context, participantID, eventID uuid.UUID) error
	Lookup(ctx context.Context, participantID, eventID uuid.UUID) (*models.Registration, error)
}

// Feedback submits and reads feedback.
type Feedback interface {
	Submit(ctx context.Context, participantID, registrationID uuid.UUID, rating int, comments string) (*models.Feedback, error)
	ForRegistration(ctx context.Context, registrationID uuid.UUID) (*models.Feedback, error)
}

// Dashboards reads organiser dashboards.
type Dashboards interface {
	ListSummaries(ctx context.Context) ([]models.DashboardSummary, error)
	GetDetail(ctx context.Context, dashboardID uuid.UUID) (*models.DashboardDetail, error)
	Participants(ctx context.Context, dashboardID uuid.UUID) ([]models.ParticipantRow, error)
	Feedback(ctx context.Context, dashboardID uuid.UUID) ([]models.FeedbackRow, error)
	DashboardFor(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error)
}

// Limiter throttles login attempts.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Deps groups what the pages render from.
type Deps struct {
	Auth          Authenticator
	Cookies       auth.CookieIssuer
	Events        EventStore
	Creator       EventCreator
	Registrations Registrations
	Feedback      Feedback
	Dashboards    Dashboards
	Limiter       Limiter // optional
}

// Handler serves the server-rendered pages.
type Handler struct {
	Deps
	translator *i18n.Translator
	loc        *time.Location
	logger     *zap.Logger
}

// NewHandler creates the page handler. Form dates and times are read in loc.
func NewHandler(deps Deps, translator *i18n.Translator, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Deps: deps, translator: translator, loc: loc, logger: logger}
}

// Mount installs the templates and page routes on r.
func (h *Handler) Mount(r *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/", h.Home)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/signup", h.SignupForm)
	r.POST("/signup", h.Signup)
	r.POST("/logout", h.Logout)

	ev := r.Group("/events", middleware.RequirePageAuth())
	ev.GET("", h.EventList)
	ev.GET("/:id", h.EventDetail)
	participant := ev.Group("/:id", middleware.RequirePageRole(models.RoleParticipant))
	participant.POST("/register", h.Register)
	participant.POST("/unregister", h.Unregister)
	participant.POST("/feedback", h.SubmitFeedback)

	dash := r.Group("/dashboard", middleware.RequirePageRole(models.RoleOrganiser))
	dash.GET("", h.Dashboard)
	dash.POST("/events", h.CreateEvent)
	dash.GET("/:id", h.DashboardDetail)
	return nil
}

func (h *Handler) t(c *gin.Context, key string, data map[string]any) string {
	return h.translator.T(middleware.Locale(c), key, data)
}

// render executes a page template with the current session and translated notice added.
func (h *Handler) render(c *gin.Context, status int, page, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	if a, ok := middleware.CurrentAuth(c); ok {
		data["Auth"] = a
	}
	if key := c.Query("notice"); key != "" && notices[key] {
		data["Notice"] = h.t(c, key, nil)
	}
	c.HTML(status, page, data)
}

// notices are the message ids a redirect may carry in ?notice=.
var notices = map[string]bool{
	i18n.MsgRegistered:        true,
	i18n.MsgAlreadyRegistered: true,
	i18n.MsgUnregistered:      true,
	i18n.MsgFeedbackThanks:    true,
	i18n.MsgEventCreated:      true,
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// internal renders a generic failure page and logs err.
func (h *Handler) internal(c *gin.Context, page, title string, data gin.H, err error, op string) {
	h.logger.Error(op+" failed", zap.Error(err))
	if data == nil {
		data = gin.H{}
	}
	data["Error"] = h.t(c, i18n.MsgInternal, nil)
	h.render(c, http.StatusInternalServerError, page, title, data)
}

// Home handles GET /.
func (h *Handler) Home(c *gin.Context) {
	redirect(c, "/events")
}

func landing(role models.Role) string {
	if role == models.RoleOrganiser {
		return "/dashboard"
	}
	return "/events"
}

// LoginForm handles GET /login.
func (h *Handler) LoginForm(c *gin.Context) {
	if a, ok := middleware.CurrentAuth(c); ok {
		redirect(c, landing(a.Session.Role))
		return
	}
	h.render(c, http.StatusOK, "login.html", "Log in", gin.H{"Form": auth.LoginRequest{Type: string(models.RoleParticipant)}})
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	bindErr := c.ShouldBind(&req)
	form := gin.H{"Form": auth.LoginRequest{Email: req.Email, Type: req.Type}}

	if h.Limiter != nil && !h.Limiter.Allow(c.Request.Context(), c.ClientIP()) {
		form["Error"] = h.t(c, i18n.MsgTooManyAttempts, nil)
		h.render(c, http.StatusTooManyRequests, "login.html", "Log in", form)
		return
	}
	if bindErr != nil {
		form["Error"] = h.t(c, auth.ValidationMessage(bindErr), nil)
		h.render(c, http.StatusBadRequest, "login.html", "Log in", form)
		return
	}

	s, err := h.Auth.Login(c.Request.Context(), req.Input())
	if err != nil {
		metrics.Logins.WithLabelValues(req.Type, metrics.StatusRejected).Inc()
		h.authFailed(c, "login.html", "Log in", form, err, "login")
		return
	}
	metrics.Logins.WithLabelValues(req.Type, metrics.StatusOK).Inc()
	http.SetCookie(c.Writer, h.Cookies.Cookie(s))
	redirect(c, landing(s.Role))
}

// SignupForm handles GET /signup.
func (h *Handler) SignupForm(c *gin.Context) {
	if a, ok := middleware.CurrentAuth(c); ok {
		redirect(c, landing(a.Session.Role))
		return
	}
	h.render(c, http.StatusOK, "signup.html", "Sign up", gin.H{"Form": auth.SignupRequest{Type: string(models.RoleParticipant)}})
}

// Signup handles POST /signup.
func (h *Handler) Signup(c *gin.Context) {
	var req auth.SignupRequest
	bindErr := c.ShouldBind(&req)
	shown := req
	shown.Password = ""
	form := gin.H{"Form": shown}
	if bindErr != nil {
		form["Error"] = h.t(c, auth.ValidationMessage(bindErr), nil)
		h.render(c, http.StatusBadRequest, "signup.html", "Sign up", form)
		return
	}
	s, err := h.Auth.Signup(c.Request.Context(), req.Input())
	if err != nil {
		h.authFailed(c, "signup.html", "Sign up", form, err, "signup")
		return
	}
	http.SetCookie(c.Writer, h.Cookies.Cookie(s))
	redirect(c, landing(s.Role))
}

func (h *Handler) authFailed(c *gin.Context, page, title string, form gin.H, err error, op string) {
	key, data, ok := auth.Message(err)
	if !ok {
		h.internal(c, page, title, form, err, op)
		return
	}
	form["Error"] = h.t(c, key, data)
	status := http.StatusBadRequest
	if key == i18n.MsgInvalidCredentials {
		status = http.StatusUnauthorized
	}
	h.render(c, status, page, title, form)
}

// Logout handles POST /logout.
func (h *Handler) Logout(c *gin.Context) {
	if a, ok := middleware.CurrentAuth(c); ok {
		if err := h.Auth.Logout(c.Request.Context(), a.Session.ID); err != nil {
			h.logger.Error("logout failed", zap.Error(err), zap.String("user_id", a.Session.UserID.String()))
		}
	}
	http.SetCookie(c.Writer, h.Cookies.BlankCookie())
	redirect(c, "/login")
}
