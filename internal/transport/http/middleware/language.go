package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bitlane/admin-iam/internal/core/domain"
)

const defaultLanguage = "en"

// Language resolves the display language for the request. The languageKey
// query parameter wins, then the first Accept-Language entry, then "en".
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		language := domain.NormalizeLanguageKey(c.Query("languageKey"))
		if language == "" {
			language = domain.NormalizeLanguageKey(firstAcceptLanguage(c.GetHeader("Accept-Language")))
		}
		if language == "" {
			language = defaultLanguage
		}

		c.Set(LanguageKey, language)
		c.Next()
	}
}

// GetLanguage retrieves the resolved language from context.
func GetLanguage(c *gin.Context) string {
	if value, exists := c.Get(LanguageKey); exists {
		if language, ok := value.(string); ok && language != "" {
			return language
		}
	}
	return defaultLanguage
}

// firstAcceptLanguage extracts the leading tag from an Accept-Language
// header, dropping any quality weight and region subtag.
func firstAcceptLanguage(header string) string {
	if header == "" {
		return ""
	}

	first := header
	if idx := strings.IndexByte(first, ','); idx >= 0 {
		first = first[:idx]
	}
	if idx := strings.IndexByte(first, ';'); idx >= 0 {
		first = first[:idx]
	}
	if idx := strings.IndexByte(first, '-'); idx >= 0 {
		first = first[:idx]
	}

	return strings.TrimSpace(first)
}
