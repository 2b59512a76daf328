package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/models"
	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// ProfileHandler exposes current-user account management endpoints.
type ProfileHandler struct {
	users *services.UserService
}

// NewProfileHandler configures a profile handler with required services.
func NewProfileHandler(users *services.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

type updateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=128"`
	Avatar *string `json:"avatar" validate:"omitempty,max=512"`
	Phone  *string `json:"phone" validate:"omitempty,max=32"`
}

type updateModulesRequest struct {
	Modules models.ModuleSet `json:"modules" validate:"required"`
}

// Get returns the authenticated user's account record.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// Update modifies the authenticated user's profile details.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updateProfileRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.users.UpdateProfile(requestContext(c), userID, services.UpdateProfileInput{
		Name:   body.Name,
		Avatar: body.Avatar,
		Phone:  body.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// GetModules returns the user's module visibility settings merged over the defaults.
func (h *ProfileHandler) GetModules(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	modules, err := h.users.GetModuleSettings(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// UpdateModules replaces the user's module visibility settings.
func (h *ProfileHandler) UpdateModules(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updateModulesRequest
	if !bindAndValidate(c, &body) {
		return
	}

	modules, err := h.users.UpdateModuleSettings(requestContext(c), userID, body.Modules)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}
