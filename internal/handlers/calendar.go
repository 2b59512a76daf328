package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// CalendarHandler exposes calendar event endpoints.
type CalendarHandler struct {
	calendar *services.CalendarService
}

// NewCalendarHandler configures a calendar handler with required services.
func NewCalendarHandler(calendar *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

type createEventRequest struct {
	GroupID     *string   `json:"groupId" validate:"omitempty,uuid4"`
	Title       string    `json:"title" validate:"required,max=256"`
	Description string    `json:"description" validate:"omitempty,max=2048"`
	StartsAt    time.Time `json:"startsAt" validate:"required"`
	EndsAt      time.Time `json:"endsAt" validate:"required"`
	AllDay      bool      `json:"allDay"`
	Color       string    `json:"color" validate:"omitempty,max=32"`
}

type updateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=256"`
	Description *string    `json:"description" validate:"omitempty,max=2048"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	AllDay      *bool      `json:"allDay"`
	Color       *string    `json:"color" validate:"omitempty,max=32"`
}

// Create adds an event in the requested scope.
func (h *CalendarHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createEventRequest
	if !bindAndValidate(c, &body) {
		return
	}

	event, err := h.calendar.Create(requestContext(c), userID, services.CreateEventInput{
		GroupID:     body.GroupID,
		Title:       body.Title,
		Description: body.Description,
		StartsAt:    body.StartsAt,
		EndsAt:      body.EndsAt,
		AllDay:      body.AllDay,
		Color:       body.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, event)
}

// List returns events in the selected scope, optionally windowed by
// from/to query parameters.
func (h *CalendarHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	window := services.EventRange{From: from, To: to}

	if groupID := optionalGroupID(c); groupID != nil {
		list, err := h.calendar.ListForGroup(requestContext(c), userID, *groupID, window)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, list)
		return
	}

	list, err := h.calendar.ListPersonal(requestContext(c), userID, window)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Get returns a single event.
func (h *CalendarHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	event, err := h.calendar.GetByID(requestContext(c), userID, c.Param("eventID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, event)
}

// Update modifies an event.
func (h *CalendarHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updateEventRequest
	if !bindAndValidate(c, &body) {
		return
	}

	event, err := h.calendar.Update(requestContext(c), userID, c.Param("eventID"), services.UpdateEventInput{
		Title:       body.Title,
		Description: body.Description,
		StartsAt:    body.StartsAt,
		EndsAt:      body.EndsAt,
		AllDay:      body.AllDay,
		Color:       body.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, event)
}

// Delete removes an event.
func (h *CalendarHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.calendar.Delete(requestContext(c), userID, c.Param("eventID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
