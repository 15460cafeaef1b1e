package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bitlane/admin-iam/internal/infra/config"
	"github.com/bitlane/admin-iam/internal/infra/security"
	"github.com/bitlane/admin-iam/internal/transport/http/handlers"
	"github.com/bitlane/admin-iam/internal/transport/http/middleware"
	"github.com/bitlane/admin-iam/internal/usecase"
)

// Administrative roles allowed to manage users and roles.
var adminRoles = []string{"admin", "superadmin"}

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth  *usecase.AuthService
	Users *usecase.UserService
	Roles *usecase.RoleService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	TokenCodec  *security.TokenCodec
	Metrics     *middleware.HTTPMetrics
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Logger(deps.Logger))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.TokenCodec)
	adminOnly := middleware.RequireRole(adminRoles...)

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Auth)

		loginLimits := buildRateLimitMiddlewares(deps, "auth_login_ip", limitFor(deps, func(s config.RateLimitSettings) int { return s.LoginMaxAttempts }))
		refreshLimits := buildRateLimitMiddlewares(deps, "auth_refresh_ip", limitFor(deps, func(s config.RateLimitSettings) int { return s.RefreshMaxAttempts }))
		authHandler.RegisterRoutes(authGroup, authMiddleware, loginLimits, refreshLimits)

		roleHandler := handlers.NewRoleHandler(deps.Services.Roles)
		rolesGroup := api.Group("/roles")
		rolesGroup.Use(authMiddleware, adminOnly, middleware.Language())
		roleHandler.RegisterRoutes(rolesGroup)

		userHandler := handlers.NewUserHandler(deps.Services.Users)
		usersGroup := api.Group("/users")
		usersGroup.Use(authMiddleware, adminOnly)
		userHandler.RegisterRoutes(usersGroup, middleware.RequireRole("superadmin"))
		roleHandler.RegisterUserRoutes(usersGroup)
	}

	return r
}

func limitFor(deps Dependencies, pick func(config.RateLimitSettings) int) int {
	if deps.Config == nil {
		return 0
	}
	return pick(deps.Config.RateLimit)
}

func buildRateLimitMiddlewares(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
