package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// ChatHandler exposes group chat endpoints. Clients poll with the after
// query parameter to fetch messages newer than their last seen timestamp.
type ChatHandler struct {
	chat *services.ChatService
}

// NewChatHandler configures a chat handler with required services.
func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type postMessageRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// Post appends a message to the group conversation.
func (h *ChatHandler) Post(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body postMessageRequest
	if !bindAndValidate(c, &body) {
		return
	}

	message, err := h.chat.Post(requestContext(c), userID, c.Param("groupID"), body.Body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, message)
}

// List returns messages for the group, oldest first.
func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	after, err := parseTimeQuery(c, "after")
	if err != nil {
		response.Error(c, err)
		return
	}
	var since time.Time
	if after != nil {
		since = *after
	}

	messages, err := h.chat.List(requestContext(c), userID, c.Param("groupID"), since, parseIntQuery(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, messages)
}

// Delete removes the requester's own message.
func (h *ChatHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.chat.Delete(requestContext(c), userID, c.Param("messageID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
