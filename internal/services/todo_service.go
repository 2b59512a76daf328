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

// CreateTodoInput carries new task fields. A nil GroupID creates a personal
// task.
type CreateTodoInput struct {
	GroupID *string
	Title   string
	Notes   string
	DueDate *time.Time
}

// UpdateTodoInput describes mutable task fields.
type UpdateTodoInput struct {
	Title   *string
	Notes   *string
	DueDate *time.Time
}

// TodoService manages todos-module tasks.
type TodoService struct {
	db      *gorm.DB
	gateway *access.Gateway
}

// NewTodoService constructs a TodoService instance.
func NewTodoService(db *gorm.DB, gateway *access.Gateway) (*TodoService, error) {
	if db == nil {
		return nil, errors.New("todo service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("todo service: gateway is required")
	}
	return &TodoService{db: db, gateway: gateway}, nil
}

// Create persists a task in the requested scope.
func (s *TodoService) Create(ctx context.Context, requesterID string, input CreateTodoInput) (*models.Todo, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("todo title is required")
	}

	ownership, err := resolveOwnership(ctx, s.gateway, requesterID, input.GroupID)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{
		Ownership: ownership,
		Title:     title,
		Notes:     strings.TrimSpace(input.Notes),
		DueDate:   input.DueDate,
		CreatedBy: requesterID,
	}

	if err := s.db.WithContext(ctx).Create(todo).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return todo, nil
}

// GetByID loads a task after authorizing the requester for its scope.
func (s *TodoService) GetByID(ctx context.Context, requesterID, todoID string) (*models.Todo, error) {
	ctx = ensureContext(ctx)

	var todo models.Todo
	err := s.db.WithContext(ctx).First(&todo, "id = ?", todoID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := s.gateway.RequireScope(ctx, requesterID, todo.Ownership); err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListForGroup returns a group's tasks, open ones first.
func (s *TodoService) ListForGroup(ctx context.Context, requesterID, groupID string) ([]models.Todo, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var todos []models.Todo
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("completed ASC, created_at DESC").
		Find(&todos).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return todos, nil
}

// ListPersonal returns the requester's personal tasks.
func (s *TodoService) ListPersonal(ctx context.Context, requesterID string) ([]models.Todo, error) {
	ctx = ensureContext(ctx)

	var todos []models.Todo
	err := s.db.WithContext(ctx).
		Where("user_id = ?", requesterID).
		Order("completed ASC, created_at DESC").
		Find(&todos).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return todos, nil
}

// Update mutates a task the requester can access.
func (s *TodoService) Update(ctx context.Context, requesterID, todoID string, input UpdateTodoInput) (*models.Todo, error) {
	ctx = ensureContext(ctx)

	todo, err := s.GetByID(ctx, requesterID, todoID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if title := trimPtr(input.Title); title != nil {
		if *title == "" {
			return nil, apperrors.NewBadRequest("todo title must not be empty")
		}
		updates["title"] = *title
	}
	if notes := trimPtr(input.Notes); notes != nil {
		updates["notes"] = *notes
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if len(updates) == 0 {
		return todo, nil
	}

	if err := s.db.WithContext(ctx).Model(todo).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return s.GetByID(ctx, requesterID, todoID)
}

// Toggle flips a task's completion state. Completing stamps CompletedAt;
// reopening clears it, so a double toggle restores the original row shape.
func (s *TodoService) Toggle(ctx context.Context, requesterID, todoID string) (*models.Todo, error) {
	ctx = ensureContext(ctx)

	todo, err := s.GetByID(ctx, requesterID, todoID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"completed": !todo.Completed}
	if todo.Completed {
		updates["completed_at"] = nil
	} else {
		updates["completed_at"] = time.Now()
	}

	if err := s.db.WithContext(ctx).Model(todo).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return s.GetByID(ctx, requesterID, todoID)
}

// Delete removes a task the requester can access.
func (s *TodoService) Delete(ctx context.Context, requesterID, todoID string) error {
	ctx = ensureContext(ctx)

	todo, err := s.GetByID(ctx, requesterID, todoID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(todo).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}
