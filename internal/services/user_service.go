package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/models"
	"github.com/GabeValerio/famodular/pkg/crypto"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
	"github.com/GabeValerio/famodular/pkg/metrics"
)

// ErrEmailTaken indicates the registration email is already in use.
var ErrEmailTaken = apperrors.New("EMAIL_TAKEN", "An account with this email already exists", http.StatusConflict)

// RegisterInput captures new account details.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// UpdateProfileInput describes mutable profile fields.
type UpdateProfileInput struct {
	Name   *string
	Avatar *string
	Phone  *string
}

// UserService handles registration, authentication, and profile management.
type UserService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, auditService *AuditService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, auditService: auditService}, nil
}

// Register creates a new account. Module settings are intentionally left
// empty; the default set is materialised lazily on first read.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" {
		return nil, apperrors.NewBadRequest("email and name are required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("password must be at least 8 characters")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Name:     name,
		Password: hashed,
		IsActive: true,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID: &user.ID,
		Action: "user.register",
		Result: "success",
	})

	return user, nil
}

// Authenticate verifies credentials and records the login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	user.LastLoginAt = &now

	return &user, nil
}

// GetByID loads a user by identifier.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return &user, nil
}

// UpdateProfile mutates the caller's own profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := trimPtr(input.Name); name != nil {
		if *name == "" {
			return nil, apperrors.NewBadRequest("name must not be empty")
		}
		updates["name"] = *name
	}
	if avatar := trimPtr(input.Avatar); avatar != nil {
		updates["avatar"] = *avatar
	}
	if phone := trimPtr(input.Phone); phone != nil {
		updates["phone"] = *phone
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	return s.GetByID(ctx, userID)
}

// GetModuleSettings returns the user's enabled-module map. A user with no
// stored configuration (NULL or empty JSON) receives the application default
// set.
func (s *UserService) GetModuleSettings(ctx context.Context, userID string) (models.ModuleSet, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(user.ModuleSettings) == 0 {
		return models.DefaultModuleSet(), nil
	}

	var stored models.ModuleSet
	if err := json.Unmarshal(user.ModuleSettings, &stored); err != nil {
		// Corrupt settings behave like no settings at all.
		return models.DefaultModuleSet(), nil
	}

	// Backfill modules introduced after the settings were last written.
	merged := models.DefaultModuleSet()
	for name, enabled := range stored {
		if models.IsKnownModule(name) {
			merged[name] = enabled
		}
	}
	return merged, nil
}

// UpdateModuleSettings replaces the user's enabled-module map.
func (s *UserService) UpdateModuleSettings(ctx context.Context, userID string, modules models.ModuleSet) (models.ModuleSet, error) {
	ctx = ensureContext(ctx)

	for name := range modules {
		if !models.IsKnownModule(name) {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown module %q", name))
		}
	}

	merged := models.DefaultModuleSet()
	for name, enabled := range modules {
		merged[name] = enabled
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("user service: marshal module settings: %w", err)
	}

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("module_settings", encoded)
	if result.Error != nil {
		return nil, apperrors.NewStorageFailure(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID: &userID,
		Action: "user.update_modules",
		Result: "success",
	})

	return merged, nil
}
