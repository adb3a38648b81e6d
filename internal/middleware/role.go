package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/response"
)

// RequireRole allows only sessions opened as one of roles whose profile was loaded.
// Anything else is 401 Unauthorized.
func RequireRole(t *i18n.Translator, roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if !hasRole(c, allowed) {
			response.AbortUnauthorized(c, t.T(Locale(c), i18n.MsgUnauthorized, nil))
			return
		}
		c.Next()
	}
}

// RequirePageAuth redirects anonymous page requests to /login.
func RequirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentAuth(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePageRole redirects page requests from users without one of roles to /.
func RequirePageRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if !hasRole(c, allowed) {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// HasRole reports whether the request carries a session in one of roles whose user holds that profile.
// Handlers that validate input before authorising use it in place of RequireRole.
func HasRole(c *gin.Context, roles ...models.Role) bool {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return hasRole(c, allowed)
}

func hasRole(c *gin.Context, allowed map[models.Role]struct{}) bool {
	a, ok := CurrentAuth(c)
	if !ok {
		return false
	}
	if _, ok := allowed[a.Session.Role]; !ok {
		return false
	}
	return a.User.HasRole(a.Session.Role)
}
