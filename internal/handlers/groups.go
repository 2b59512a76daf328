package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/models"
	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// GroupHandler exposes group and membership management endpoints.
type GroupHandler struct {
	groups *services.GroupService
}

// NewGroupHandler configures a group handler with required services.
func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type createGroupRequest struct {
	Name    string `json:"name" validate:"required,max=128"`
	Privacy string `json:"privacy" validate:"omitempty,oneof=private public"`
}

type updateGroupRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=128"`
	Privacy        *string          `json:"privacy" validate:"omitempty,oneof=private public"`
	EnabledModules models.ModuleSet `json:"enabledModules"`
}

type updateMemberRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=admin member"`
	IsActive *bool   `json:"isActive"`
}

// Create provisions a group with the requester as its first admin.
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createGroupRequest
	if !bindAndValidate(c, &body) {
		return
	}

	group, err := h.groups.Create(requestContext(c), userID, services.CreateGroupInput{
		Name:    body.Name,
		Privacy: body.Privacy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, group)
}

// List returns groups where the requester holds an active membership.
func (h *GroupHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	groups, err := h.groups.ListForUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, groups)
}

// Get returns a single group visible to the requester.
func (h *GroupHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	group, err := h.groups.GetByID(requestContext(c), userID, c.Param("groupID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, group)
}

// Update modifies group settings. Requires an admin membership.
func (h *GroupHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updateGroupRequest
	if !bindAndValidate(c, &body) {
		return
	}

	group, err := h.groups.Update(requestContext(c), userID, c.Param("groupID"), services.UpdateGroupInput{
		Name:           body.Name,
		Privacy:        body.Privacy,
		EnabledModules: body.EnabledModules,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, group)
}

// Members lists every membership row for the group, active or not.
func (h *GroupHandler) Members(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	members, err := h.groups.ListMembers(requestContext(c), userID, c.Param("groupID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, members)
}

// UpdateMember changes a member's role or active flag. Requires admin.
func (h *GroupHandler) UpdateMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updateMemberRequest
	if !bindAndValidate(c, &body) {
		return
	}

	member, err := h.groups.UpdateMember(requestContext(c), userID, c.Param("groupID"), c.Param("userID"), services.UpdateMemberInput{
		Role:     body.Role,
		IsActive: body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, member)
}

// Leave deactivates the requester's own membership.
func (h *GroupHandler) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.groups.Leave(requestContext(c), userID, c.Param("groupID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"left": true})
}

// Modules returns the group's enabled module set.
func (h *GroupHandler) Modules(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	modules, err := h.groups.EnabledModules(requestContext(c), userID, c.Param("groupID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}
