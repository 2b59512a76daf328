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

// CreateWishlistItemInput carries new wishlist entry fields.
type CreateWishlistItemInput struct {
	GroupID  *string
	Title    string
	URL      string
	Price    float64
	Priority int
}

// UpdateWishlistItemInput describes mutable wishlist fields.
type UpdateWishlistItemInput struct {
	Title     *string
	URL       *string
	Price     *float64
	Priority  *int
	Purchased *bool
}

// WishlistService manages wishlist-module entries.
type WishlistService struct {
	db      *gorm.DB
	gateway *access.Gateway
}

// NewWishlistService constructs a WishlistService instance.
func NewWishlistService(db *gorm.DB, gateway *access.Gateway) (*WishlistService, error) {
	if db == nil {
		return nil, errors.New("wishlist service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("wishlist service: gateway is required")
	}
	return &WishlistService{db: db, gateway: gateway}, nil
}

// Create persists a wishlist entry in the requested scope.
func (s *WishlistService) Create(ctx context.Context, requesterID string, input CreateWishlistItemInput) (*models.WishlistItem, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("wishlist item title is required")
	}
	if input.Price < 0 {
		return nil, apperrors.NewBadRequest("price must not be negative")
	}

	ownership, err := resolveOwnership(ctx, s.gateway, requesterID, input.GroupID)
	if err != nil {
		return nil, err
	}

	item := &models.WishlistItem{
		Ownership: ownership,
		Title:     title,
		URL:       strings.TrimSpace(input.URL),
		Price:     input.Price,
		Priority:  input.Priority,
		CreatedBy: requesterID,
	}

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return item, nil
}

// GetByID loads a wishlist entry after authorizing the requester.
func (s *WishlistService) GetByID(ctx context.Context, requesterID, itemID string) (*models.WishlistItem, error) {
	ctx = ensureContext(ctx)

	var item models.WishlistItem
	err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := s.gateway.RequireScope(ctx, requesterID, item.Ownership); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListForGroup returns a group's wishlist ordered by priority.
func (s *WishlistService) ListForGroup(ctx context.Context, requesterID, groupID string) ([]models.WishlistItem, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var items []models.WishlistItem
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("purchased ASC, priority DESC, created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return items, nil
}

// ListPersonal returns the requester's personal wishlist.
func (s *WishlistService) ListPersonal(ctx context.Context, requesterID string) ([]models.WishlistItem, error) {
	ctx = ensureContext(ctx)

	var items []models.WishlistItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", requesterID).
		Order("purchased ASC, priority DESC, created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return items, nil
}

// Update mutates a wishlist entry the requester can access.
func (s *WishlistService) Update(ctx context.Context, requesterID, itemID string, input UpdateWishlistItemInput) (*models.WishlistItem, error) {
	ctx = ensureContext(ctx)

	item, err := s.GetByID(ctx, requesterID, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if title := trimPtr(input.Title); title != nil {
		if *title == "" {
			return nil, apperrors.NewBadRequest("wishlist item title must not be empty")
		}
		updates["title"] = *title
	}
	if url := trimPtr(input.URL); url != nil {
		updates["url"] = *url
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.NewBadRequest("price must not be negative")
		}
		updates["price"] = *input.Price
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.Purchased != nil {
		updates["purchased"] = *input.Purchased
	}
	if len(updates) == 0 {
		return item, nil
	}

	if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return s.GetByID(ctx, requesterID, itemID)
}

// Delete removes a wishlist entry the requester can access.
func (s *WishlistService) Delete(ctx context.Context, requesterID, itemID string) error {
	ctx = ensureContext(ctx)

	item, err := s.GetByID(ctx, requesterID, itemID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}
