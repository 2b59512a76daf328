package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// InvitationHandler exposes the invitation lifecycle endpoints.
type InvitationHandler struct {
	invitations *services.InvitationService
}

// NewInvitationHandler configures an invitation handler with required services.
func NewInvitationHandler(invitations *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

type createInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type acceptInvitationRequest struct {
	Code string `json:"code" validate:"required"`
}

// Create issues an invitation for the group. The plaintext token is returned
// exactly once and never persisted.
func (h *InvitationHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createInvitationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	created, err := h.invitations.Create(requestContext(c), userID, c.Param("groupID"), body.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"invitation": created.Invitation,
		"token":      created.Token,
	})
}

// ListForGroup returns the group's invitations. Requires admin.
func (h *InvitationHandler) ListForGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invitations, err := h.invitations.ListForGroup(requestContext(c), userID, c.Param("groupID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invitations)
}

// Revoke expires a pending invitation. Requires admin.
func (h *InvitationHandler) Revoke(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.invitations.Revoke(requestContext(c), userID, c.Param("groupID"), c.Param("invitationID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// Resolve looks up an invitation by short code or token. Public so that the
// invited person can inspect the group name before registering.
func (h *InvitationHandler) Resolve(c *gin.Context) {
	invitation, err := h.invitations.Resolve(requestContext(c), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invitation)
}

// Accept redeems an invitation for the authenticated user.
func (h *InvitationHandler) Accept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body acceptInvitationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	membership, err := h.invitations.Accept(requestContext(c), userID, body.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, membership)
}
