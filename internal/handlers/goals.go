package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// GoalHandler exposes goal tracking endpoints.
type GoalHandler struct {
	goals *services.GoalService
}

// NewGoalHandler configures a goal handler with required services.
func NewGoalHandler(goals *services.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

type createGoalRequest struct {
	GroupID     *string    `json:"groupId" validate:"omitempty,uuid4"`
	Title       string     `json:"title" validate:"required,max=256"`
	Type        string     `json:"type" validate:"required,max=64"`
	Timeframe   string     `json:"timeframe" validate:"required,max=64"`
	Description string     `json:"description" validate:"omitempty,max=2048"`
	TargetDate  *time.Time `json:"targetDate"`
}

type updateGoalRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=256"`
	Description *string    `json:"description" validate:"omitempty,max=2048"`
	TargetDate  *time.Time `json:"targetDate"`
	Progress    *int       `json:"progress" validate:"omitempty,min=0,max=100"`
	Status      *string    `json:"status" validate:"omitempty,max=32"`
}

// Create adds a goal in the requested scope.
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createGoalRequest
	if !bindAndValidate(c, &body) {
		return
	}

	goal, err := h.goals.Create(requestContext(c), userID, services.CreateGoalInput{
		GroupID:     body.GroupID,
		Title:       body.Title,
		Type:        body.Type,
		Timeframe:   body.Timeframe,
		Description: body.Description,
		TargetDate:  body.TargetDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, goal)
}

// List returns goals in the selected scope.
func (h *GoalHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if groupID := optionalGroupID(c); groupID != nil {
		goals, err := h.goals.ListForGroup(requestContext(c), userID, *groupID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, goals)
		return
	}

	goals, err := h.goals.ListPersonal(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, goals)
}

// Get returns a single goal.
func (h *GoalHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	goal, err := h.goals.GetByID(requestContext(c), userID, c.Param("goalID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, goal)
}

// Update modifies a goal, including progress and status transitions.
func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updateGoalRequest
	if !bindAndValidate(c, &body) {
		return
	}

	goal, err := h.goals.Update(requestContext(c), userID, c.Param("goalID"), services.UpdateGoalInput{
		Title:       body.Title,
		Description: body.Description,
		TargetDate:  body.TargetDate,
		Progress:    body.Progress,
		Status:      body.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, goal)
}

// Delete removes a goal.
func (h *GoalHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.goals.Delete(requestContext(c), userID, c.Param("goalID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
