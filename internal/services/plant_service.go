package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/ai"
	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

// ErrAIDisabled is returned from AI-backed operations when no client is
// configured.
var ErrAIDisabled = apperrors.New("AI_DISABLED", "AI features are not configured", 503)

// CreatePlantInput carries new plant fields.
type CreatePlantInput struct {
	GroupID              *string
	Name                 string
	Species              string
	Location             string
	WateringIntervalDays int
	PhotoURL             string
}

// UpdatePlantInput describes mutable plant fields.
type UpdatePlantInput struct {
	Name                 *string
	Species              *string
	Location             *string
	WateringIntervalDays *int
	PhotoURL             *string
}

// PlantService manages plants-module records, including photo identification.
type PlantService struct {
	db       *gorm.DB
	gateway  *access.Gateway
	aiClient ai.Client
}

// NewPlantService constructs a PlantService. The AI client may be nil, which
// disables identification.
func NewPlantService(db *gorm.DB, gateway *access.Gateway, aiClient ai.Client) (*PlantService, error) {
	if db == nil {
		return nil, errors.New("plant service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("plant service: gateway is required")
	}
	return &PlantService{db: db, gateway: gateway, aiClient: aiClient}, nil
}

// Create persists a plant in the requested scope.
func (s *PlantService) Create(ctx context.Context, requesterID string, input CreatePlantInput) (*models.Plant, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("plant name is required")
	}
	if input.WateringIntervalDays < 0 {
		return nil, apperrors.NewBadRequest("watering interval must not be negative")
	}

	ownership, err := resolveOwnership(ctx, s.gateway, requesterID, input.GroupID)
	if err != nil {
		return nil, err
	}

	plant := &models.Plant{
		Ownership:            ownership,
		Name:                 name,
		Species:              strings.TrimSpace(input.Species),
		Location:             strings.TrimSpace(input.Location),
		WateringIntervalDays: input.WateringIntervalDays,
		PhotoURL:             strings.TrimSpace(input.PhotoURL),
		CreatedBy:            requesterID,
	}

	if err := s.db.WithContext(ctx).Create(plant).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return plant, nil
}

// GetByID loads a plant after authorizing the requester for its scope.
func (s *PlantService) GetByID(ctx context.Context, requesterID, plantID string) (*models.Plant, error) {
	ctx = ensureContext(ctx)

	var plant models.Plant
	err := s.db.WithContext(ctx).First(&plant, "id = ?", plantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := s.gateway.RequireScope(ctx, requesterID, plant.Ownership); err != nil {
		return nil, err
	}
	return &plant, nil
}

// ListForGroup returns a group's plants.
func (s *PlantService) ListForGroup(ctx context.Context, requesterID, groupID string) ([]models.Plant, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var plants []models.Plant
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("name ASC").
		Find(&plants).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return plants, nil
}

// ListPersonal returns the requester's personal plants.
func (s *PlantService) ListPersonal(ctx context.Context, requesterID string) ([]models.Plant, error) {
	ctx = ensureContext(ctx)

	var plants []models.Plant
	err := s.db.WithContext(ctx).
		Where("user_id = ?", requesterID).
		Order("name ASC").
		Find(&plants).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return plants, nil
}

// Update mutates a plant the requester can access.
func (s *PlantService) Update(ctx context.Context, requesterID, plantID string, input UpdatePlantInput) (*models.Plant, error) {
	ctx = ensureContext(ctx)

	plant, err := s.GetByID(ctx, requesterID, plantID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := trimPtr(input.Name); name != nil {
		if *name == "" {
			return nil, apperrors.NewBadRequest("plant name must not be empty")
		}
		updates["name"] = *name
	}
	if species := trimPtr(input.Species); species != nil {
		updates["species"] = *species
		// Manual species entry overrides any earlier identification.
		updates["ai_identified"] = false
	}
	if location := trimPtr(input.Location); location != nil {
		updates["location"] = *location
	}
	if input.WateringIntervalDays != nil {
		if *input.WateringIntervalDays < 0 {
			return nil, apperrors.NewBadRequest("watering interval must not be negative")
		}
		updates["watering_interval_days"] = *input.WateringIntervalDays
	}
	if photo := trimPtr(input.PhotoURL); photo != nil {
		updates["photo_url"] = *photo
	}
	if len(updates) == 0 {
		return plant, nil
	}

	if err := s.db.WithContext(ctx).Model(plant).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return s.GetByID(ctx, requesterID, plantID)
}

// Water stamps the plant's last-watered time.
func (s *PlantService) Water(ctx context.Context, requesterID, plantID string) (*models.Plant, error) {
	ctx = ensureContext(ctx)

	plant, err := s.GetByID(ctx, requesterID, plantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(plant).Update("last_watered_at", now).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	plant.LastWateredAt = &now
	return plant, nil
}

// Identify runs photo identification against the model and applies the
// answer to the plant. The species and watering interval are only overwritten
// when the model actually returned them.
func (s *PlantService) Identify(ctx context.Context, requesterID, plantID string, image ai.Image) (*models.Plant, *ai.PlantIdentification, error) {
	ctx = ensureContext(ctx)

	if s.aiClient == nil {
		return nil, nil, ErrAIDisabled
	}

	plant, err := s.GetByID(ctx, requesterID, plantID)
	if err != nil {
		return nil, nil, err
	}

	identification, err := s.aiClient.IdentifyPlant(ctx, image)
	if err != nil {
		return nil, nil, err
	}

	updates := map[string]any{"ai_identified": true}
	if species := strings.TrimSpace(identification.Species); species != "" {
		updates["species"] = species
	}
	if identification.WateringIntervalDays > 0 {
		updates["watering_interval_days"] = identification.WateringIntervalDays
	}

	if err := s.db.WithContext(ctx).Model(plant).Updates(updates).Error; err != nil {
		return nil, nil, apperrors.NewStorageFailure(err)
	}

	updated, err := s.GetByID(ctx, requesterID, plantID)
	if err != nil {
		return nil, nil, err
	}
	return updated, identification, nil
}

// Delete removes a plant the requester can access.
func (s *PlantService) Delete(ctx context.Context, requesterID, plantID string) error {
	ctx = ensureContext(ctx)

	plant, err := s.GetByID(ctx, requesterID, plantID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(plant).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}
