package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bitlane/admin-iam/internal/infra/config"
	"github.com/bitlane/admin-iam/internal/infra/security"
	httproutes "github.com/bitlane/admin-iam/internal/transport/http/routes"
)

func testDependencies(t *testing.T) httproutes.Dependencies {
	t.Helper()

	codec, err := security.NewTokenCodec(config.JWTSettings{
		Secret:   "routes-test-secret",
		Issuer:   "admin-iam-test",
		Audience: "admin-console",
	})
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	cfg := &config.AppConfig{App: config.AppSettings{Env: "test"}}

	return httproutes.Dependencies{
		Config:     cfg,
		Logger:     logger,
		TokenCodec: codec,
	}
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies(t))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestReadinessEndpointWithoutChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies(t))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies(t))

	for _, path := range []string{"/api/v1/roles", "/api/v1/users"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)

		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401, got %d", path, w.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies(t))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
