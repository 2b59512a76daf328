package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

const maxChatBodyLength = 4000

// ChatService manages group chat messages. Delivery is poll-based: clients
// fetch messages after a known timestamp rather than holding a connection.
type ChatService struct {
	db      *gorm.DB
	gateway *access.Gateway
}

// NewChatService constructs a ChatService instance.
func NewChatService(db *gorm.DB, gateway *access.Gateway) (*ChatService, error) {
	if db == nil {
		return nil, errors.New("chat service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("chat service: gateway is required")
	}
	return &ChatService{db: db, gateway: gateway}, nil
}

// Post appends a message to a group's chat.
func (s *ChatService) Post(ctx context.Context, requesterID, groupID, body string) (*models.ChatMessage, error) {
	ctx = ensureContext(ctx)

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewBadRequest("message body is required")
	}
	if len(body) > maxChatBodyLength {
		return nil, apperrors.NewBadRequest("message body is too long")
	}

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		GroupID: strings.TrimSpace(groupID),
		UserID:  requesterID,
		Body:    body,
	}

	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return message, nil
}

// List returns messages for a group, oldest first. A non-zero after
// timestamp restricts the result to newer messages, which is what polling
// clients pass between fetches.
func (s *ChatService) List(ctx context.Context, requesterID, groupID string, after time.Time, limit int) ([]models.ChatMessage, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := s.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID)
	if !after.IsZero() {
		query = query.Where("created_at > ?", after)
	}

	var messages []models.ChatMessage
	err := query.Order("created_at ASC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return messages, nil
}

// Delete removes the requester's own message.
func (s *ChatService) Delete(ctx context.Context, requesterID, messageID string) error {
	ctx = ensureContext(ctx)

	var message models.ChatMessage
	err := s.db.WithContext(ctx).First(&message, "id = ?", messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}

	if err := s.gateway.RequireOwner(requesterID, message.UserID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&message).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}
