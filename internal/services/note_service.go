package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

// CreateNoteInput carries new note fields.
type CreateNoteInput struct {
	GroupID *string
	Title   string
	Body    string
}

// UpdateNoteInput describes mutable note fields.
type UpdateNoteInput struct {
	Title  *string
	Body   *string
	Pinned *bool
}

// NoteService manages notepad-module entries.
type NoteService struct {
	db      *gorm.DB
	gateway *access.Gateway
}

// NewNoteService constructs a NoteService instance.
func NewNoteService(db *gorm.DB, gateway *access.Gateway) (*NoteService, error) {
	if db == nil {
		return nil, errors.New("note service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("note service: gateway is required")
	}
	return &NoteService{db: db, gateway: gateway}, nil
}

// Create persists a note in the requested scope.
func (s *NoteService) Create(ctx context.Context, requesterID string, input CreateNoteInput) (*models.Note, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("note title is required")
	}

	ownership, err := resolveOwnership(ctx, s.gateway, requesterID, input.GroupID)
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		Ownership: ownership,
		Title:     title,
		Body:      input.Body,
		CreatedBy: requesterID,
	}

	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return note, nil
}

// GetByID loads a note after authorizing the requester for its scope.
func (s *NoteService) GetByID(ctx context.Context, requesterID, noteID string) (*models.Note, error) {
	ctx = ensureContext(ctx)

	var note models.Note
	err := s.db.WithContext(ctx).First(&note, "id = ?", noteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := s.gateway.RequireScope(ctx, requesterID, note.Ownership); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListForGroup returns a group's notes, pinned first.
func (s *NoteService) ListForGroup(ctx context.Context, requesterID, groupID string) ([]models.Note, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var notes []models.Note
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("pinned DESC, updated_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return notes, nil
}

// ListPersonal returns the requester's personal notes, pinned first.
func (s *NoteService) ListPersonal(ctx context.Context, requesterID string) ([]models.Note, error) {
	ctx = ensureContext(ctx)

	var notes []models.Note
	err := s.db.WithContext(ctx).
		Where("user_id = ?", requesterID).
		Order("pinned DESC, updated_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return notes, nil
}

// Update mutates a note the requester can access.
func (s *NoteService) Update(ctx context.Context, requesterID, noteID string, input UpdateNoteInput) (*models.Note, error) {
	ctx = ensureContext(ctx)

	note, err := s.GetByID(ctx, requesterID, noteID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if title := trimPtr(input.Title); title != nil {
		if *title == "" {
			return nil, apperrors.NewBadRequest("note title must not be empty")
		}
		updates["title"] = *title
	}
	if input.Body != nil {
		updates["body"] = *input.Body
	}
	if input.Pinned != nil {
		updates["pinned"] = *input.Pinned
	}
	if len(updates) == 0 {
		return note, nil
	}

	if err := s.db.WithContext(ctx).Model(note).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return s.GetByID(ctx, requesterID, noteID)
}

// Delete removes a note the requester can access.
func (s *NoteService) Delete(ctx context.Context, requesterID, noteID string) error {
	ctx = ensureContext(ctx)

	note, err := s.GetByID(ctx, requesterID, noteID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(note).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}
