package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

// CreateGroupInput carries new group details.
type CreateGroupInput struct {
	Name    string
	Privacy string
}

// UpdateGroupInput describes admin-editable group fields.
type UpdateGroupInput struct {
	Name           *string
	Privacy        *string
	EnabledModules models.ModuleSet
}

// UpdateMemberInput describes admin-editable membership fields.
type UpdateMemberInput struct {
	Role     *string
	IsActive *bool
}

// GroupService manages groups and their memberships.
type GroupService struct {
	db           *gorm.DB
	gateway      *access.Gateway
	auditService *AuditService
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(db *gorm.DB, gateway *access.Gateway, auditService *AuditService) (*GroupService, error) {
	if db == nil {
		return nil, errors.New("group service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("group service: gateway is required")
	}
	return &GroupService{db: db, gateway: gateway, auditService: auditService}, nil
}

// Create persists a group and its creator's admin membership in one
// transaction. A group can never exist without at least one admin.
func (s *GroupService) Create(ctx context.Context, creatorID string, input CreateGroupInput) (*models.Group, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("group name is required")
	}
	privacy := strings.TrimSpace(input.Privacy)
	if privacy == "" {
		privacy = models.GroupPrivacyPrivate
	}
	if privacy != models.GroupPrivacyPrivate && privacy != models.GroupPrivacyPublic {
		return nil, apperrors.NewBadRequest("privacy must be private or public")
	}

	group := &models.Group{
		Name:      name,
		Privacy:   privacy,
		CreatedBy: creatorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		membership := &models.Membership{
			UserID:   creatorID,
			GroupID:  group.ID,
			Role:     models.RoleAdmin,
			IsActive: true,
		}
		return tx.Create(membership).Error
	})
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &creatorID,
		GroupID:  &group.ID,
		Action:   "group.create",
		Resource: group.ID,
		Result:   "success",
	})

	return group, nil
}

// GetByID returns a group after verifying the requester's membership.
func (s *GroupService) GetByID(ctx context.Context, requesterID, groupID string) (*models.Group, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var group models.Group
	err := s.db.WithContext(ctx).First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return &group, nil
}

// ListForUser returns the groups where the user holds an active membership.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]models.Group, error) {
	ctx = ensureContext(ctx)

	var groups []models.Group
	err := s.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.group_id = groups.id").
		Where("memberships.user_id = ? AND memberships.is_active = ?", userID, true).
		Order("groups.created_at ASC").
		Find(&groups).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return groups, nil
}

// Update mutates group settings. Admin only.
func (s *GroupService) Update(ctx context.Context, requesterID, groupID string, input UpdateGroupInput) (*models.Group, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireAdmin(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := trimPtr(input.Name); name != nil {
		if *name == "" {
			return nil, apperrors.NewBadRequest("group name must not be empty")
		}
		updates["name"] = *name
	}
	if privacy := trimPtr(input.Privacy); privacy != nil {
		if *privacy != models.GroupPrivacyPrivate && *privacy != models.GroupPrivacyPublic {
			return nil, apperrors.NewBadRequest("privacy must be private or public")
		}
		updates["privacy"] = *privacy
	}
	if input.EnabledModules != nil {
		for name := range input.EnabledModules {
			if !models.IsKnownModule(name) {
				return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown module %q", name))
			}
		}
		encoded, err := json.Marshal(input.EnabledModules)
		if err != nil {
			return nil, fmt.Errorf("group service: marshal modules: %w", err)
		}
		updates["enabled_modules"] = encoded
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).
			Model(&models.Group{}).
			Where("id = ?", groupID).
			Updates(updates)
		if result.Error != nil {
			return nil, apperrors.NewStorageFailure(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.ErrNotFound
		}

		recordAudit(s.auditService, ctx, AuditEntry{
			UserID:   &requesterID,
			GroupID:  &groupID,
			Action:   "group.update",
			Resource: groupID,
			Result:   "success",
		})
	}

	return s.GetByID(ctx, requesterID, groupID)
}

// ListMembers returns every membership row for a group, active and inactive,
// with user details preloaded. Any member may see the roster.
func (s *GroupService) ListMembers(ctx context.Context, requesterID, groupID string) ([]models.Membership, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var members []models.Membership
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return members, nil
}

// UpdateMember changes a member's role or active flag. Admin only. The last
// active admin cannot be demoted or deactivated.
func (s *GroupService) UpdateMember(ctx context.Context, requesterID, groupID, memberID string, input UpdateMemberInput) (*models.Membership, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireAdmin(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var target models.Membership
	err := s.db.WithContext(ctx).
		First(&target, "id = ? AND group_id = ?", memberID, groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	updates := map[string]any{}
	if role := trimPtr(input.Role); role != nil {
		if *role != models.RoleAdmin && *role != models.RoleMember {
			return nil, apperrors.NewBadRequest("role must be admin or member")
		}
		updates["role"] = *role
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return &target, nil
	}

	losesAdmin := target.IsAdmin() && target.IsActive &&
		((updates["role"] != nil && updates["role"] != models.RoleAdmin) ||
			(input.IsActive != nil && !*input.IsActive))
	if losesAdmin {
		count, err := s.countActiveAdmins(ctx, groupID)
		if err != nil {
			return nil, err
		}
		if count <= 1 {
			return nil, apperrors.NewBadRequest("a group must keep at least one active admin")
		}
	}

	if err := s.db.WithContext(ctx).Model(&target).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &requesterID,
		GroupID:  &groupID,
		Action:   "group.update_member",
		Resource: target.ID,
		Result:   "success",
		Metadata: map[string]any{"memberUserId": target.UserID},
	})

	err = s.db.WithContext(ctx).First(&target, "id = ?", target.ID).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return &target, nil
}

// Leave deactivates the caller's own membership. Data the member created
// stays behind. The last active admin cannot leave.
func (s *GroupService) Leave(ctx context.Context, userID, groupID string) error {
	ctx = ensureContext(ctx)

	membership, err := s.gateway.RequireMember(ctx, userID, groupID)
	if err != nil {
		return err
	}

	if membership.IsAdmin() {
		count, err := s.countActiveAdmins(ctx, groupID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return apperrors.NewBadRequest("the last admin cannot leave the group")
		}
	}

	err = s.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("id = ?", membership.ID).
		Update("is_active", false).Error
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &userID,
		GroupID:  &groupID,
		Action:   "group.leave",
		Resource: membership.ID,
		Result:   "success",
	})

	return nil
}

// EnabledModules returns the group's module map, falling back to defaults
// the same way user settings do.
func (s *GroupService) EnabledModules(ctx context.Context, requesterID, groupID string) (models.ModuleSet, error) {
	group, err := s.GetByID(ctx, requesterID, groupID)
	if err != nil {
		return nil, err
	}

	if len(group.EnabledModules) == 0 {
		return models.DefaultModuleSet(), nil
	}

	var stored models.ModuleSet
	if err := json.Unmarshal(group.EnabledModules, &stored); err != nil {
		return models.DefaultModuleSet(), nil
	}

	merged := models.DefaultModuleSet()
	for name, enabled := range stored {
		if models.IsKnownModule(name) {
			merged[name] = enabled
		}
	}
	return merged, nil
}

func (s *GroupService) countActiveAdmins(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("group_id = ? AND role = ? AND is_active = ?", groupID, models.RoleAdmin, true).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.NewStorageFailure(err)
	}
	return count, nil
}
