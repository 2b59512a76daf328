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

// CreateCheckInInput carries a new check-in.
type CreateCheckInInput struct {
	GroupID string
	Mood    string
	Note    string
}

// CheckInService manages checkins-module entries. Check-ins are always
// group-scoped; there is no personal variant.
type CheckInService struct {
	db      *gorm.DB
	gateway *access.Gateway
}

// NewCheckInService constructs a CheckInService instance.
func NewCheckInService(db *gorm.DB, gateway *access.Gateway) (*CheckInService, error) {
	if db == nil {
		return nil, errors.New("checkin service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("checkin service: gateway is required")
	}
	return &CheckInService{db: db, gateway: gateway}, nil
}

// Create records a check-in for the requester in the given group.
func (s *CheckInService) Create(ctx context.Context, requesterID string, input CreateCheckInInput) (*models.CheckIn, error) {
	ctx = ensureContext(ctx)

	mood := strings.TrimSpace(input.Mood)
	if mood == "" {
		return nil, apperrors.NewBadRequest("mood is required")
	}

	if _, err := s.gateway.RequireMember(ctx, requesterID, input.GroupID); err != nil {
		return nil, err
	}

	checkIn := &models.CheckIn{
		GroupID: strings.TrimSpace(input.GroupID),
		UserID:  requesterID,
		Mood:    mood,
		Note:    strings.TrimSpace(input.Note),
	}

	if err := s.db.WithContext(ctx).Create(checkIn).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return checkIn, nil
}

// ListForGroup returns the most recent check-ins for a group with authors
// preloaded.
func (s *CheckInService) ListForGroup(ctx context.Context, requesterID, groupID string, limit int) ([]models.CheckIn, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var checkIns []models.CheckIn
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Limit(limit).
		Find(&checkIns).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return checkIns, nil
}

// Delete removes the requester's own check-in.
func (s *CheckInService) Delete(ctx context.Context, requesterID, checkInID string) error {
	ctx = ensureContext(ctx)

	var checkIn models.CheckIn
	err := s.db.WithContext(ctx).First(&checkIn, "id = ?", checkInID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}

	if err := s.gateway.RequireOwner(requesterID, checkIn.UserID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&checkIn).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}
