package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLanguageRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Language())
	r.GET("/roles", func(c *gin.Context) {
		c.String(http.StatusOK, GetLanguage(c))
	})
	return r
}

func TestLanguageQueryParameterWins(t *testing.T) {
	router := newLanguageRouter()

	req := httptest.NewRequest(http.MethodGet, "/roles?languageKey=HI", nil)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Body.String() != "hi" {
		t.Fatalf("language = %q, want %q", rec.Body.String(), "hi")
	}
}

func TestLanguageAcceptHeaderFallback(t *testing.T) {
	router := newLanguageRouter()

	req := httptest.NewRequest(http.MethodGet, "/roles", nil)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Body.String() != "fr" {
		t.Fatalf("language = %q, want %q", rec.Body.String(), "fr")
	}
}

func TestLanguageDefaultsToEnglish(t *testing.T) {
	router := newLanguageRouter()

	req := httptest.NewRequest(http.MethodGet, "/roles", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Body.String() != "en" {
		t.Fatalf("language = %q, want %q", rec.Body.String(), "en")
	}
}
