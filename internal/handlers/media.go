package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// MediaHandler exposes media upload and retrieval endpoints.
type MediaHandler struct {
	media *services.MediaService
}

// NewMediaHandler configures a media handler with required services.
func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

type uploadMediaRequest struct {
	GroupID     *string `json:"groupId" validate:"omitempty,uuid4"`
	FileName    string  `json:"fileName" validate:"omitempty,max=256"`
	ContentType string  `json:"contentType" validate:"required,max=128"`
	DataBase64  string  `json:"dataBase64" validate:"required"`
}

// Upload stores a media object in the requested scope.
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body uploadMediaRequest
	if !bindAndValidate(c, &body) {
		return
	}

	object, err := h.media.Upload(requestContext(c), userID, services.UploadMediaInput{
		GroupID:     body.GroupID,
		FileName:    body.FileName,
		ContentType: body.ContentType,
		DataBase64:  body.DataBase64,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, object)
}

// Get returns media metadata.
func (h *MediaHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	object, err := h.media.GetByID(requestContext(c), userID, c.Param("mediaID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, object)
}

// List returns media objects for a group.
func (h *MediaHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := requiredGroupID(c)
	if !ok {
		return
	}

	objects, err := h.media.ListForGroup(requestContext(c), userID, groupID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, objects)
}

// Delete removes a media object and its blob.
func (h *MediaHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.media.Delete(requestContext(c), userID, c.Param("mediaID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
