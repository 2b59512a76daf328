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

// CreateGoalInput carries new goal fields. Title, type, and timeframe are
// validated before any write is attempted.
type CreateGoalInput struct {
	GroupID     *string
	Title       string
	Type        string
	Timeframe   string
	Description string
	TargetDate  *time.Time
}

// UpdateGoalInput describes mutable goal fields.
type UpdateGoalInput struct {
	Title       *string
	Description *string
	TargetDate  *time.Time
	Progress    *int
	Status      *string
}

// GoalService manages goals-module records.
type GoalService struct {
	db      *gorm.DB
	gateway *access.Gateway
}

// NewGoalService constructs a GoalService instance.
func NewGoalService(db *gorm.DB, gateway *access.Gateway) (*GoalService, error) {
	if db == nil {
		return nil, errors.New("goal service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("goal service: gateway is required")
	}
	return &GoalService{db: db, gateway: gateway}, nil
}

// Create persists a goal in the requested scope.
func (s *GoalService) Create(ctx context.Context, requesterID string, input CreateGoalInput) (*models.Goal, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	goalType := strings.TrimSpace(input.Type)
	timeframe := strings.TrimSpace(input.Timeframe)
	if title == "" || goalType == "" || timeframe == "" {
		return nil, apperrors.NewBadRequest("goal title, type, and timeframe are required")
	}

	ownership, err := resolveOwnership(ctx, s.gateway, requesterID, input.GroupID)
	if err != nil {
		return nil, err
	}

	goal := &models.Goal{
		Ownership:   ownership,
		Title:       title,
		Type:        goalType,
		Timeframe:   timeframe,
		Description: strings.TrimSpace(input.Description),
		TargetDate:  input.TargetDate,
		Status:      models.GoalActive,
		CreatedBy:   requesterID,
	}

	if err := s.db.WithContext(ctx).Create(goal).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return goal, nil
}

// GetByID loads a goal after authorizing the requester for its scope.
func (s *GoalService) GetByID(ctx context.Context, requesterID, goalID string) (*models.Goal, error) {
	ctx = ensureContext(ctx)

	var goal models.Goal
	err := s.db.WithContext(ctx).First(&goal, "id = ?", goalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := s.gateway.RequireScope(ctx, requesterID, goal.Ownership); err != nil {
		return nil, err
	}
	return &goal, nil
}

// ListForGroup returns a group's goals.
func (s *GoalService) ListForGroup(ctx context.Context, requesterID, groupID string) ([]models.Goal, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return goals, nil
}

// ListPersonal returns the requester's personal goals.
func (s *GoalService) ListPersonal(ctx context.Context, requesterID string) ([]models.Goal, error) {
	ctx = ensureContext(ctx)

	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", requesterID).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return goals, nil
}

// Update mutates a goal the requester can access. Setting progress to 100
// completes the goal automatically.
func (s *GoalService) Update(ctx context.Context, requesterID, goalID string, input UpdateGoalInput) (*models.Goal, error) {
	ctx = ensureContext(ctx)

	goal, err := s.GetByID(ctx, requesterID, goalID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if title := trimPtr(input.Title); title != nil {
		if *title == "" {
			return nil, apperrors.NewBadRequest("goal title must not be empty")
		}
		updates["title"] = *title
	}
	if desc := trimPtr(input.Description); desc != nil {
		updates["description"] = *desc
	}
	if input.TargetDate != nil {
		updates["target_date"] = *input.TargetDate
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			return nil, apperrors.NewBadRequest("progress must be between 0 and 100")
		}
		updates["progress"] = *input.Progress
		if *input.Progress == 100 {
			updates["status"] = models.GoalCompleted
		}
	}
	if status := trimPtr(input.Status); status != nil {
		switch *status {
		case models.GoalActive, models.GoalCompleted, models.GoalAbandoned:
			updates["status"] = *status
		default:
			return nil, apperrors.NewBadRequest("status must be active, completed, or abandoned")
		}
	}
	if len(updates) == 0 {
		return goal, nil
	}

	if err := s.db.WithContext(ctx).Model(goal).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return s.GetByID(ctx, requesterID, goalID)
}

// Delete removes a goal the requester can access.
func (s *GoalService) Delete(ctx context.Context, requesterID, goalID string) error {
	ctx = ensureContext(ctx)

	goal, err := s.GetByID(ctx, requesterID, goalID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(goal).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}
