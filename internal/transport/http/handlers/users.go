package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bitlane/admin-iam/internal/usecase"
)

// UserHandler exposes administrative account endpoints.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes binds user management routes. Account creation can carry an
// extra guard (a stricter role check) ahead of the handler.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, createMiddlewares ...gin.HandlerFunc) {
	r.GET("", h.ListUsers)

	createChain := append([]gin.HandlerFunc{}, createMiddlewares...)
	createChain = append(createChain, h.CreateUser)
	r.POST("", createChain...)

	r.GET("/:id", h.GetUser)
	r.DELETE("/:id", h.DeleteUser)
}

// ListUsers godoc
// @Summary List administrator accounts
// @Description Returns a page of accounts ordered by username. Pagination metadata travels in the X-Pagination header.
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 10)"
// @Success 200 {array} UserSummary
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := parsePageParams(c)

	result, err := h.users.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list users"))
		return
	}

	summaries := make([]UserSummary, 0, len(result.Users))
	for _, user := range result.Users {
		summaries = append(summaries, newUserSummary(user, nil))
	}

	writePaginationHeader(c, page, pageSize, result.TotalCount)
	c.JSON(http.StatusOK, summaries)
}

// CreateUser godoc
// @Summary Create an administrator account
// @Description Provisions an account with a hashed password and its initial role assignments in one transaction.
// @Tags Users
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param request body UserCreateRequest true "User create request"
// @Success 201 {object} UserSummary
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), usecase.CreateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		respondError(c, err,
			match(usecase.ErrEmailTaken, http.StatusConflict, "email already registered"),
			match(usecase.ErrRoleNotFound, http.StatusBadRequest, "role not found"),
			fallback(http.StatusInternalServerError, "failed to create user"),
		)
		return
	}

	c.JSON(http.StatusCreated, newUserSummary(user, req.Roles))
}

// GetUser godoc
// @Summary Fetch an administrator account
// @Description Returns the account together with its assigned role names.
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path string true "User ID"
// @Success 200 {object} UserSummary
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	result, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err,
			match(usecase.ErrUserNotFound, http.StatusNotFound, "user not found"),
			fallback(http.StatusInternalServerError, "failed to fetch user"),
		)
		return
	}

	c.JSON(http.StatusOK, newUserSummary(result.User, result.Roles))
}

// DeleteUser godoc
// @Summary Delete an administrator account
// @Description Removes the account, its role assignments, and its refresh tokens.
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path string true "User ID"
// @Success 204 {string} string ""
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err,
			match(usecase.ErrUserNotFound, http.StatusNotFound, "user not found"),
			fallback(http.StatusInternalServerError, "failed to delete user"),
		)
		return
	}

	c.Status(http.StatusNoContent)
}
