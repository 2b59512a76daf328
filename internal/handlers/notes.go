package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// NoteHandler exposes notepad endpoints.
type NoteHandler struct {
	notes *services.NoteService
}

// NewNoteHandler configures a note handler with required services.
func NewNoteHandler(notes *services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type createNoteRequest struct {
	GroupID *string `json:"groupId" validate:"omitempty,uuid4"`
	Title   string  `json:"title" validate:"required,max=256"`
	Body    string  `json:"body" validate:"omitempty,max=16384"`
}

type updateNoteRequest struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=256"`
	Body   *string `json:"body" validate:"omitempty,max=16384"`
	Pinned *bool   `json:"pinned"`
}

// Create adds a note in the requested scope.
func (h *NoteHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createNoteRequest
	if !bindAndValidate(c, &body) {
		return
	}

	note, err := h.notes.Create(requestContext(c), userID, services.CreateNoteInput{
		GroupID: body.GroupID,
		Title:   body.Title,
		Body:    body.Body,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, note)
}

// List returns notes in the selected scope, pinned first.
func (h *NoteHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if groupID := optionalGroupID(c); groupID != nil {
		notes, err := h.notes.ListForGroup(requestContext(c), userID, *groupID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, notes)
		return
	}

	notes, err := h.notes.ListPersonal(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, notes)
}

// Get returns a single note.
func (h *NoteHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	note, err := h.notes.GetByID(requestContext(c), userID, c.Param("noteID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, note)
}

// Update modifies a note.
func (h *NoteHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updateNoteRequest
	if !bindAndValidate(c, &body) {
		return
	}

	note, err := h.notes.Update(requestContext(c), userID, c.Param("noteID"), services.UpdateNoteInput{
		Title:  body.Title,
		Body:   body.Body,
		Pinned: body.Pinned,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, note)
}

// Delete removes a note.
func (h *NoteHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.notes.Delete(requestContext(c), userID, c.Param("noteID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
