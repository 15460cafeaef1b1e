package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/usecase"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, authMiddleware gin.HandlerFunc, loginMiddlewares []gin.HandlerFunc, refreshMiddlewares []gin.HandlerFunc) {
	loginChain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	loginChain = append(loginChain, h.login)
	r.POST("/login", loginChain...)

	refreshChain := append([]gin.HandlerFunc{}, refreshMiddlewares...)
	refreshChain = append(refreshChain, h.refresh)
	r.POST("/refresh", refreshChain...)

	if authMiddleware != nil {
		r.POST("/logout", authMiddleware, h.logout)
	} else {
		r.POST("/logout", h.logout)
	}
}

// Login godoc
// @Summary Authenticate an administrator with credentials
// @Description Validates email and password, returning an access token and a refresh token on success.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 423 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err,
			match(usecase.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"),
			match(usecase.ErrAccountLocked, http.StatusLocked, "account temporarily locked"),
			fallback(http.StatusInternalServerError, "authentication failed"),
		)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(result.Tokens.ExpiresIn.Seconds()),
		User:         newUserSummary(result.User, result.Roles),
	})
}

// Refresh godoc
// @Summary Rotate the refresh token
// @Description Exchanges the expired access token and the active refresh token for a fresh pair. The presented refresh token is retired.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token (may be expired)"
// @Param request body TokenRefreshRequest true "Refresh request"
// @Success 200 {object} TokenRefreshResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) refresh(c *gin.Context) {
	accessToken, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing access token"))
		return
	}

	var req TokenRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh_token is required"))
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), accessToken, req.RefreshToken)
	if err != nil {
		respondError(c, err,
			match(usecase.ErrInvalidAccessToken, http.StatusUnauthorized, "invalid access token"),
			match(usecase.ErrInvalidRefreshToken, http.StatusUnauthorized, "invalid refresh token"),
			match(usecase.ErrRefreshTokenExpiredOrRevoked, http.StatusUnauthorized, "refresh token expired or revoked"),
			match(usecase.ErrUserNotFound, http.StatusUnauthorized, "unknown subject"),
			fallback(http.StatusInternalServerError, "failed to refresh token"),
		)
		return
	}

	c.JSON(http.StatusOK, TokenRefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	})
}

// Logout godoc
// @Summary Revoke a refresh token
// @Description Revokes the presented refresh token. Revoking an unknown token succeeds.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LogoutRequest true "Logout request"
// @Success 204 {string} string ""
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh_token is required"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to revoke refresh token"))
		return
	}

	c.Status(http.StatusNoContent)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

func newUserSummary(user domain.User, roles []string) UserSummary {
	return UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Roles:     roles,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}
