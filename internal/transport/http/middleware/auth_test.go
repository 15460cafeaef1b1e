package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/infra/config"
	"github.com/bitlane/admin-iam/internal/infra/security"
)

func testCodec(t *testing.T) *security.TokenCodec {
	t.Helper()

	codec, err := security.NewTokenCodec(config.JWTSettings{
		Secret:         "test-secret-please-rotate",
		Issuer:         "admin-iam-test",
		Audience:       "admin-console",
		AccessTokenTTL: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	return codec
}

func newAuthRouter(codec *security.TokenCodec, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	chain := []gin.HandlerFunc{RequireAuth(codec)}
	chain = append(chain, extra...)
	chain = append(chain, func(c *gin.Context) {
		userID, _ := GetAuthenticatedUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	r.GET("/protected", chain...)
	return r
}

func TestRequireAuthMissingHeader(t *testing.T) {
	router := newAuthRouter(testCodec(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	router := newAuthRouter(testCodec(t))

	for _, header := range []string{"Token abc", "Bearer", "Bearer ", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	codec := testCodec(t)
	router := newAuthRouter(codec)

	user := domain.User{ID: "user-1", Email: "operator@example.com"}
	signed, _, err := codec.Issue(user, []string{"admin"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); body != `{"user_id":"user-1"}` {
		t.Fatalf("body = %s", body)
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	codec := testCodec(t)

	past := time.Now().Add(-time.Hour)
	codec.WithClock(func() time.Time { return past })
	user := domain.User{ID: "user-1", Email: "operator@example.com"}
	signed, _, err := codec.Issue(user, nil)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	router := newAuthRouter(testCodec(t))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	codec := testCodec(t)
	router := newAuthRouter(codec, RequireRole("admin", "superadmin"))

	user := domain.User{ID: "user-1", Email: "operator@example.com"}

	adminToken, _, err := codec.Issue(user, []string{"admin"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	supportToken, _, err := codec.Issue(user, []string{"support"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+supportToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("support status = %d, want 403", rec.Code)
	}
}
