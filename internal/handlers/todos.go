package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// TodoHandler exposes shared task list endpoints.
type TodoHandler struct {
	todos *services.TodoService
}

// NewTodoHandler configures a todo handler with required services.
func NewTodoHandler(todos *services.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

type createTodoRequest struct {
	GroupID *string    `json:"groupId" validate:"omitempty,uuid4"`
	Title   string     `json:"title" validate:"required,max=256"`
	Notes   string     `json:"notes" validate:"omitempty,max=2048"`
	DueDate *time.Time `json:"dueDate"`
}

type updateTodoRequest struct {
	Title   *string    `json:"title" validate:"omitempty,min=1,max=256"`
	Notes   *string    `json:"notes" validate:"omitempty,max=2048"`
	DueDate *time.Time `json:"dueDate"`
}

// Create adds a task in the requested scope.
func (h *TodoHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createTodoRequest
	if !bindAndValidate(c, &body) {
		return
	}

	todo, err := h.todos.Create(requestContext(c), userID, services.CreateTodoInput{
		GroupID: body.GroupID,
		Title:   body.Title,
		Notes:   body.Notes,
		DueDate: body.DueDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, todo)
}

// List returns tasks in the selected scope.
func (h *TodoHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if groupID := optionalGroupID(c); groupID != nil {
		todos, err := h.todos.ListForGroup(requestContext(c), userID, *groupID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, todos)
		return
	}

	todos, err := h.todos.ListPersonal(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, todos)
}

// Update modifies a task.
func (h *TodoHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updateTodoRequest
	if !bindAndValidate(c, &body) {
		return
	}

	todo, err := h.todos.Update(requestContext(c), userID, c.Param("todoID"), services.UpdateTodoInput{
		Title:   body.Title,
		Notes:   body.Notes,
		DueDate: body.DueDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, todo)
}

// Toggle flips a task's completion state.
func (h *TodoHandler) Toggle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	todo, err := h.todos.Toggle(requestContext(c), userID, c.Param("todoID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, todo)
}

// Delete removes a task.
func (h *TodoHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.todos.Delete(requestContext(c), userID, c.Param("todoID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
