package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bitlane/admin-iam/internal/transport/http/middleware"
	"github.com/bitlane/admin-iam/internal/usecase"
)

// RoleHandler exposes role management endpoints.
type RoleHandler struct {
	roles *usecase.RoleService
}

// NewRoleHandler constructs RoleHandler.
func NewRoleHandler(roles *usecase.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// RegisterRoutes binds role CRUD and assignment routes.
func (h *RoleHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.ListRoles)
	r.POST("", h.CreateRole)
	r.PUT("/:name", h.UpdateRole)
	r.DELETE("/:name", h.DeleteRole)
	r.POST("/assign", h.AssignRole)
	r.POST("/remove", h.RemoveRole)
}

// RegisterUserRoutes binds the per-user role listing under the users group.
func (h *RoleHandler) RegisterUserRoutes(r *gin.RouterGroup) {
	r.GET("/:id/roles", h.ListUserRoles)
}

// ListRoles godoc
// @Summary List roles
// @Description Returns a page of roles with display names for the requested language, falling back to the role name. Pagination metadata travels in the X-Pagination header.
// @Tags Roles
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param languageKey query string false "Language key (default en)"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 10)"
// @Success 200 {array} RoleListItem
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	page, pageSize := parsePageParams(c)
	language := middleware.GetLanguage(c)

	result, err := h.roles.ListRoles(c.Request.Context(), language, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list roles"))
		return
	}

	items := make([]RoleListItem, 0, len(result.Roles))
	for _, role := range result.Roles {
		items = append(items, RoleListItem{
			ID:             role.ID,
			Name:           role.Name,
			TranslatedName: role.TranslatedName,
		})
	}

	writePaginationHeader(c, page, pageSize, result.TotalCount)
	c.JSON(http.StatusOK, items)
}

// CreateRole godoc
// @Summary Create a role
// @Description Creates a role with optional per-language display names. The role and all translations are stored atomically.
// @Tags Roles
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param request body RoleCreateRequest true "Role create request"
// @Success 201 {object} RolePayload
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	role, err := h.roles.CreateRole(c.Request.Context(), req.Name, toTranslationInputs(req.Translations))
	if err != nil {
		respondError(c, err,
			match(usecase.ErrRoleExists, http.StatusConflict, "role already exists"),
			match(usecase.ErrRoleCreateFailed, http.StatusInternalServerError, "failed to create role"),
			fallback(http.StatusBadRequest, "invalid role payload"),
		)
		return
	}

	c.JSON(http.StatusCreated, RolePayload{ID: role.ID, Name: role.Name})
}

// UpdateRole godoc
// @Summary Update a role
// @Description Reconciles a role's translations against the supplied set and optionally renames it, in one transaction. An empty name keeps the current one.
// @Tags Roles
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param name path string true "Current role name"
// @Param request body RoleUpdateRequest true "Role update request"
// @Success 200 {object} RolePayload
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/roles/{name} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	currentName := strings.TrimSpace(c.Param("name"))
	if currentName == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role name is required"))
		return
	}

	var req RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	role, err := h.roles.UpdateRole(c.Request.Context(), currentName, req.Name, toTranslationInputs(req.Translations))
	if err != nil {
		respondError(c, err,
			match(usecase.ErrRoleNotFound, http.StatusNotFound, "role not found"),
			match(usecase.ErrRoleExists, http.StatusConflict, "role name already in use"),
			match(usecase.ErrRoleUpdateFailed, http.StatusInternalServerError, "failed to update role"),
			fallback(http.StatusBadRequest, "invalid role payload"),
		)
		return
	}

	c.JSON(http.StatusOK, RolePayload{ID: role.ID, Name: role.Name})
}

// DeleteRole godoc
// @Summary Delete a role
// @Description Removes a role along with its translations and user assignments.
// @Tags Roles
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param name path string true "Role name"
// @Success 204 {string} string ""
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/roles/{name} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role name is required"))
		return
	}

	if err := h.roles.DeleteRole(c.Request.Context(), name); err != nil {
		respondError(c, err,
			match(usecase.ErrRoleNotFound, http.StatusNotFound, "role not found"),
			fallback(http.StatusInternalServerError, "failed to delete role"),
		)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUserRoles godoc
// @Summary List a user's roles
// @Description Returns the roles currently assigned to the user.
// @Tags Roles
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path string true "User ID"
// @Success 200 {array} RolePayload
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/{id}/roles [get]
func (h *RoleHandler) ListUserRoles(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))

	roles, err := h.roles.ListUserRoles(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err,
			match(usecase.ErrUserNotFound, http.StatusNotFound, "user not found"),
			fallback(http.StatusInternalServerError, "failed to list user roles"),
		)
		return
	}

	payload := make([]RolePayload, 0, len(roles))
	for _, role := range roles {
		payload = append(payload, RolePayload{ID: role.ID, Name: role.Name})
	}

	c.JSON(http.StatusOK, payload)
}

// AssignRole godoc
// @Summary Assign a role to a user
// @Description Grants the named role to the user. Assigning an already held role is a conflict.
// @Tags Roles
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param request body RoleAssignmentRequest true "Role assignment request"
// @Success 204 {string} string ""
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/roles/assign [post]
func (h *RoleHandler) AssignRole(c *gin.Context) {
	var req RoleAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_id and role_name are required"))
		return
	}

	if err := h.roles.AssignRole(c.Request.Context(), req.UserID, req.RoleName); err != nil {
		respondError(c, err,
			match(usecase.ErrUserNotFound, http.StatusNotFound, "user not found"),
			match(usecase.ErrRoleNotFound, http.StatusNotFound, "role not found"),
			match(usecase.ErrRoleAlreadyAssigned, http.StatusConflict, "role already assigned"),
			fallback(http.StatusInternalServerError, "failed to assign role"),
		)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveRole godoc
// @Summary Remove a role from a user
// @Description Revokes the named role from the user. Removing a role the user does not hold is a conflict.
// @Tags Roles
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param request body RoleAssignmentRequest true "Role assignment request"
// @Success 204 {string} string ""
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/roles/remove [post]
func (h *RoleHandler) RemoveRole(c *gin.Context) {
	var req RoleAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_id and role_name are required"))
		return
	}

	if err := h.roles.RemoveRole(c.Request.Context(), req.UserID, req.RoleName); err != nil {
		respondError(c, err,
			match(usecase.ErrUserNotFound, http.StatusNotFound, "user not found"),
			match(usecase.ErrRoleNotFound, http.StatusNotFound, "role not found"),
			match(usecase.ErrRoleNotAssigned, http.StatusConflict, "role not assigned"),
			fallback(http.StatusInternalServerError, "failed to remove role"),
		)
		return
	}

	c.Status(http.StatusNoContent)
}

func toTranslationInputs(payloads []RoleTranslationPayload) []usecase.RoleTranslationInput {
	inputs := make([]usecase.RoleTranslationInput, 0, len(payloads))
	for _, payload := range payloads {
		inputs = append(inputs, usecase.RoleTranslationInput{
			LanguageKey:    payload.LanguageKey,
			TranslatedName: payload.TranslatedName,
		})
	}
	return inputs
}
