package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/middleware"
	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/internal/session"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/metrics"
	"github.com/event-master/backend/pkg/response"
)

// SignupRequest is the body for POST /api/auth/signup and the /signup form.
type SignupRequest struct {
	Email     string `json:"email" form:"email" binding:"required,email"`
	FirstName string `json:"first_name" form:"first_name" binding:"required,eventname"`
	LastName  string `json:"last_name" form:"last_name" binding:"required,eventname"`
	Type      string `json:"type" form:"type" binding:"required,oneof=Participant Organiser Speaker"`
	Password  string `json:"password" form:"password" binding:"required,eventpassword"`
}

// Input converts the request to a SignupInput.
func (r SignupRequest) Input() SignupInput {
	return SignupInput{Email: r.Email, FirstName: r.FirstName, LastName: r.LastName, Role: models.Role(r.Type), Password: r.Password}
}

// Trim strips surrounding whitespace from every field.
func (r *SignupRequest) Trim() {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Type = strings.TrimSpace(r.Type)
	r.Password = strings.TrimSpace(r.Password)
}

// LoginRequest is the body for POST /api/auth/login and the /login form.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Type     string `json:"type" form:"type" binding:"required,oneof=Participant Organiser Speaker"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Input converts the request to a LoginInput.
func (r LoginRequest) Input() LoginInput {
	return LoginInput{Email: r.Email, Role: models.Role(r.Type), Password: r.Password}
}

// Trim strips surrounding whitespace from every field.
func (r *LoginRequest) Trim() {
	r.Email = strings.TrimSpace(r.Email)
	r.Type = strings.TrimSpace(r.Type)
	r.Password = strings.TrimSpace(r.Password)
}

// CookieIssuer builds session cookies.
type CookieIssuer interface {
	Cookie(s *session.Session) *http.Cookie
	BlankCookie() *http.Cookie
}

// MeResponse is the body of GET /api/me.
type MeResponse struct {
	User      *models.UserData `json:"user"`
	Role      models.Role      `json:"role"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	svc        *Service
	cookies    CookieIssuer
	translator *i18n.Translator
	logger     *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(svc *Service, cookies CookieIssuer, translator *i18n.Translator, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, cookies: cookies, translator: translator, logger: logger}
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	locale := middleware.Locale(c)
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, h.translator.T(locale, ValidationMessage(err), nil))
		return
	}

	s, err := h.svc.Signup(c.Request.Context(), req.Input())
	if err != nil {
		h.fail(c, locale, err, "signup")
		return
	}
	http.SetCookie(c.Writer, h.cookies.Cookie(s))
	response.Created(c, gin.H{"role": s.Role})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	locale := middleware.Locale(c)
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, h.translator.T(locale, ValidationMessage(err), nil))
		return
	}

	s, err := h.svc.Login(c.Request.Context(), req.Input())
	if err != nil {
		metrics.Logins.WithLabelValues(req.Type, metrics.StatusRejected).Inc()
		h.fail(c, locale, err, "login")
		return
	}
	metrics.Logins.WithLabelValues(req.Type, metrics.StatusOK).Inc()
	http.SetCookie(c.Writer, h.cookies.Cookie(s))
	response.OK(c, gin.H{"role": s.Role})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	if a, ok := middleware.CurrentAuth(c); ok {
		if err := h.svc.Logout(c.Request.Context(), a.Session.ID); err != nil {
			h.logger.Error("logout failed", zap.Error(err), zap.String("user_id", a.Session.UserID.String()))
			response.Internal(c, h.translator.T(middleware.Locale(c), i18n.MsgInternal, nil))
			return
		}
	}
	http.SetCookie(c.Writer, h.cookies.BlankCookie())
	response.OK(c, nil)
}

// Me handles GET /api/me.
func (h *Handler) Me(c *gin.Context) {
	a, ok := middleware.CurrentAuth(c)
	if !ok {
		response.Unauthorized(c, h.translator.T(middleware.Locale(c), i18n.MsgUnauthorized, nil))
		return
	}
	response.OK(c, MeResponse{User: a.User, Role: a.Session.Role, ExpiresAt: a.Session.ExpiresAt})
}

func (h *Handler) fail(c *gin.Context, locale string, err error, op string) {
	key, data, ok := Message(err)
	if !ok {
		h.logger.Error(op+" failed", zap.Error(err))
		response.Internal(c, h.translator.T(locale, key, data))
		return
	}
	status := http.StatusBadRequest
	if key == i18n.MsgInvalidCredentials {
		status = http.StatusUnauthorized
	}
	response.Fail(c, status, h.translator.T(locale, key, data))
}
