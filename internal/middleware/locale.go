package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/event-master/backend/pkg/i18n"
)

// ContextLocale is the key for the request locale in gin context.
const ContextLocale = "locale"

// LocaleFromHeader picks the message locale from Accept-Language, falling back to fallback.
func LocaleFromHeader(fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := i18n.MatchAcceptLanguage(c.GetHeader("Accept-Language"))
		if locale == "" {
			locale = fallback
		}
		c.Set(ContextLocale, locale)
		c.Next()
	}
}

// Locale returns the request locale, or "" when none was set.
func Locale(c *gin.Context) string {
	return c.GetString(ContextLocale)
}
