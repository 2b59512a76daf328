package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// CheckInHandler exposes mood check-in endpoints.
type CheckInHandler struct {
	checkIns *services.CheckInService
}

// NewCheckInHandler configures a check-in handler with required services.
func NewCheckInHandler(checkIns *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkIns: checkIns}
}

type createCheckInRequest struct {
	GroupID string `json:"groupId" validate:"required,uuid4"`
	Mood    string `json:"mood" validate:"required,max=64"`
	Note    string `json:"note" validate:"omitempty,max=1024"`
}

// Create records a mood check-in for a group.
func (h *CheckInHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createCheckInRequest
	if !bindAndValidate(c, &body) {
		return
	}

	checkIn, err := h.checkIns.Create(requestContext(c), userID, services.CreateCheckInInput{
		GroupID: body.GroupID,
		Mood:    body.Mood,
		Note:    body.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, checkIn)
}

// List returns recent check-ins for the group.
func (h *CheckInHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	checkIns, err := h.checkIns.ListForGroup(requestContext(c), userID, c.Param("groupID"), parseIntQuery(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, checkIns)
}

// Delete removes the requester's own check-in.
func (h *CheckInHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.checkIns.Delete(requestContext(c), userID, c.Param("checkInID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
