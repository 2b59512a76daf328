package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/models"
	"github.com/GabeValerio/famodular/pkg/crypto"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
	"github.com/GabeValerio/famodular/pkg/logger"
	"github.com/GabeValerio/famodular/pkg/mail"
)

// Invitation lifecycle errors.
var (
	ErrInvitationExpired = apperrors.New("INVITATION_EXPIRED", "This invitation has expired", http.StatusGone)
	ErrInvitationUsed    = apperrors.New("INVITATION_USED", "This invitation has already been accepted", http.StatusConflict)
	ErrAlreadyMember     = apperrors.New("ALREADY_MEMBER", "You are already a member of this group", http.StatusConflict)
)

const (
	invitationTokenBytes = 32
	shortCodeLength      = 6
	shortCodeAttempts    = 5
)

// InvitationOptions tunes invitation behaviour from configuration.
type InvitationOptions struct {
	TTL     time.Duration
	BaseURL string
}

// CreatedInvitation pairs a persisted invitation with the one-time plaintext
// token. The token is never stored and cannot be recovered later.
type CreatedInvitation struct {
	Invitation *models.Invitation
	Token      string
}

// InvitationService issues and redeems group invitations.
type InvitationService struct {
	db           *gorm.DB
	gateway      *access.Gateway
	auditService *AuditService
	mailer       mail.Mailer
	opts         InvitationOptions
}

// NewInvitationService constructs an InvitationService. The mailer may be nil
// when outbound email is disabled.
func NewInvitationService(db *gorm.DB, gateway *access.Gateway, auditService *AuditService, mailer mail.Mailer, opts InvitationOptions) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("invitation service: gateway is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &InvitationService{
		db:           db,
		gateway:      gateway,
		auditService: auditService,
		mailer:       mailer,
		opts:         opts,
	}, nil
}

func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create issues a pending invitation for the given email. Admin only. The
// short code is regenerated on a storage-level uniqueness collision rather
// than pre-checked, so concurrent creates cannot race past each other.
func (s *InvitationService) Create(ctx context.Context, requesterID, groupID, email string) (*CreatedInvitation, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireAdmin(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}

	token, err := crypto.GenerateToken(invitationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("invitation service: generate token: %w", err)
	}

	var invitation *models.Invitation
	for attempt := 0; attempt < shortCodeAttempts; attempt++ {
		code, err := crypto.GenerateShortCode(shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("invitation service: generate short code: %w", err)
		}

		candidate := &models.Invitation{
			GroupID:   groupID,
			Email:     email,
			TokenHash: tokenHash(token),
			ShortCode: code,
			InvitedBy: requesterID,
			Status:    models.InvitationPending,
			ExpiresAt: time.Now().Add(s.opts.TTL),
		}

		err = s.db.WithContext(ctx).Create(candidate).Error
		if err == nil {
			invitation = candidate
			break
		}
		if !isUniqueConstraintError(err) {
			return nil, apperrors.NewStorageFailure(err)
		}
	}
	if invitation == nil {
		return nil, apperrors.NewStorageFailure(errors.New("short code space exhausted after retries"))
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &requesterID,
		GroupID:  &groupID,
		Action:   "invitation.create",
		Resource: invitation.ID,
		Result:   "success",
		Metadata: map[string]any{"email": email},
	})

	s.sendInviteMail(ctx, invitation, token)

	return &CreatedInvitation{Invitation: invitation, Token: token}, nil
}

// sendInviteMail delivers the invitation email on a best-effort basis. Mail
// failures never fail the create.
func (s *InvitationService) sendInviteMail(ctx context.Context, invitation *models.Invitation, token string) {
	if s.mailer == nil {
		return
	}

	link := fmt.Sprintf("%s/invite/%s", strings.TrimRight(s.opts.BaseURL, "/"), token)
	body := fmt.Sprintf(
		"You have been invited to join a group.\r\n\r\nOpen %s or enter code %s.\r\nThe invitation expires at %s.\r\n",
		link, invitation.ShortCode, invitation.ExpiresAt.Format(time.RFC1123),
	)

	err := s.mailer.Send(ctx, mail.Message{
		To:      []string{invitation.Email},
		Subject: "You have been invited",
		Body:    body,
	})
	if err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		logger.WithModule("invitations").Warn("failed to send invitation email",
			zap.String("invitation_id", invitation.ID),
			zap.Error(err),
		)
	}
}

// Resolve finds an invitation by short code or plaintext token and applies
// lazy expiry: a pending invitation read past its expiry instant is persisted
// as expired before the caller sees it.
func (s *InvitationService) Resolve(ctx context.Context, codeOrToken string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	codeOrToken = strings.TrimSpace(codeOrToken)
	if codeOrToken == "" {
		return nil, apperrors.ErrNotFound
	}

	var invitation models.Invitation
	err := s.db.WithContext(ctx).
		Preload("Group").
		First(&invitation, "short_code = ?", strings.ToUpper(codeOrToken)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.WithContext(ctx).
			Preload("Group").
			First(&invitation, "token_hash = ?", tokenHash(codeOrToken)).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := s.applyLazyExpiry(ctx, &invitation); err != nil {
		return nil, err
	}

	return &invitation, nil
}

// applyLazyExpiry transitions a stale pending invitation to expired in
// storage. The guarded UPDATE makes concurrent reads converge on a single
// transition regardless of interleaving.
func (s *InvitationService) applyLazyExpiry(ctx context.Context, invitation *models.Invitation) error {
	if invitation.Status != models.InvitationPending || time.Now().Before(invitation.ExpiresAt) {
		return nil
	}

	err := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
		Update("status", models.InvitationExpired).Error
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}

	invitation.Status = models.InvitationExpired
	return nil
}

// Accept redeems an invitation for the authenticated user, creating a new
// membership or reactivating a previously deactivated one. The status flip
// and the membership write share one transaction.
func (s *InvitationService) Accept(ctx context.Context, userID, codeOrToken string) (*models.Membership, error) {
	ctx = ensureContext(ctx)

	invitation, err := s.Resolve(ctx, codeOrToken)
	if err != nil {
		return nil, err
	}

	switch invitation.Status {
	case models.InvitationExpired:
		return nil, ErrInvitationExpired
	case models.InvitationAccepted:
		return nil, ErrInvitationUsed
	}

	var membership *models.Membership
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Guarded flip: a concurrent accept loses here and aborts.
		result := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
			Updates(map[string]any{"status": models.InvitationAccepted, "accepted_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvitationUsed
		}

		var existing models.Membership
		err := tx.First(&existing, "user_id = ? AND group_id = ?", userID, invitation.GroupID).Error
		switch {
		case err == nil:
			if existing.IsActive {
				return ErrAlreadyMember
			}
			if err := tx.Model(&existing).Update("is_active", true).Error; err != nil {
				return err
			}
			existing.IsActive = true
			membership = &existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			created := &models.Membership{
				UserID:   userID,
				GroupID:  invitation.GroupID,
				Role:     models.RoleMember,
				IsActive: true,
			}
			if err := tx.Create(created).Error; err != nil {
				return err
			}
			membership = created
			return nil
		default:
			return err
		}
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &userID,
		GroupID:  &invitation.GroupID,
		Action:   "invitation.accept",
		Resource: invitation.ID,
		Result:   "success",
	})

	return membership, nil
}

// ListForGroup returns a group's invitations with lazy expiry applied to each
// stale pending row. Admin only.
func (s *InvitationService) ListForGroup(ctx context.Context, requesterID, groupID string) ([]models.Invitation, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireAdmin(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var invitations []models.Invitation
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	for i := range invitations {
		if err := s.applyLazyExpiry(ctx, &invitations[i]); err != nil {
			return nil, err
		}
	}

	return invitations, nil
}

// Revoke expires a pending invitation immediately. Admin only.
func (s *InvitationService) Revoke(ctx context.Context, requesterID, groupID, invitationID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireAdmin(ctx, requesterID, groupID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND group_id = ? AND status = ?", invitationID, groupID, models.InvitationPending).
		Update("status", models.InvitationExpired)
	if result.Error != nil {
		return apperrors.NewStorageFailure(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &requesterID,
		GroupID:  &groupID,
		Action:   "invitation.revoke",
		Resource: invitationID,
		Result:   "success",
	})

	return nil
}

// PurgeTerminalOlderThan removes accepted and expired invitations whose
// expiry instant is past the cutoff. Invoked by the maintenance cleaner.
func (s *InvitationService) PurgeTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("status IN ? AND expires_at < ?", []string{models.InvitationAccepted, models.InvitationExpired}, cutoff).
		Delete(&models.Invitation{})
	if result.Error != nil {
		return 0, apperrors.NewStorageFailure(result.Error)
	}
	return result.RowsAffected, nil
}
