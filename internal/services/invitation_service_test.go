package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/database/testutil"
	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

type invitationFixture struct {
	db          *gorm.DB
	invitations *InvitationService
	groups      *GroupService
	users       *UserService
	admin       *models.User
	group       *models.Group
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.MustOpenTestDB(t)

	gw, err := access.NewGateway(db)
	require.NoError(t, err)

	users, err := NewUserService(db, nil)
	require.NoError(t, err)

	groups, err := NewGroupService(db, gw, nil)
	require.NoError(t, err)

	invitations, err := NewInvitationService(db, gw, nil, nil, InvitationOptions{TTL: time.Hour})
	require.NoError(t, err)

	admin := registerUser(t, users, "admin@example.com")
	group, err := groups.Create(ctx, admin.ID, CreateGroupInput{Name: "Family"})
	require.NoError(t, err)

	return &invitationFixture{
		db:          db,
		invitations: invitations,
		groups:      groups,
		users:       users,
		admin:       admin,
		group:       group,
	}
}

func TestCreateInvitationAdminOnly(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	outsider := registerUser(t, f.users, "outsider@example.com")
	_, err := f.invitations.Create(ctx, outsider.ID, f.group.ID, "friend@example.com")
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	created, err := f.invitations.Create(ctx, f.admin.ID, f.group.ID, "Friend@Example.com")
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)
	require.Len(t, created.Invitation.ShortCode, shortCodeLength)
	require.Equal(t, "friend@example.com", created.Invitation.Email)
	require.Equal(t, models.InvitationPending, created.Invitation.Status)

	// The plaintext token must not be persisted.
	var count int64
	require.NoError(t, f.db.Model(&models.Invitation{}).
		Where("token_hash = ?", created.Token).Count(&count).Error)
	require.Zero(t, count)
}

func TestResolveByCodeAndToken(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	created, err := f.invitations.Create(ctx, f.admin.ID, f.group.ID, "friend@example.com")
	require.NoError(t, err)

	byCode, err := f.invitations.Resolve(ctx, created.Invitation.ShortCode)
	require.NoError(t, err)
	require.Equal(t, created.Invitation.ID, byCode.ID)
	require.NotNil(t, byCode.Group)

	byToken, err := f.invitations.Resolve(ctx, created.Token)
	require.NoError(t, err)
	require.Equal(t, created.Invitation.ID, byToken.ID)

	_, err = f.invitations.Resolve(ctx, "NOSUCH")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLazyExpiryPersistsOnRead(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	created, err := f.invitations.Create(ctx, f.admin.ID, f.group.ID, "friend@example.com")
	require.NoError(t, err)

	// Backdate the expiry instant.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, f.db.Model(&models.Invitation{}).
		Where("id = ?", created.Invitation.ID).
		Update("expires_at", past).Error)

	resolved, err := f.invitations.Resolve(ctx, created.Invitation.ShortCode)
	require.NoError(t, err)
	require.Equal(t, models.InvitationExpired, resolved.Status)

	// The transition is persisted, not just reported.
	var stored models.Invitation
	require.NoError(t, f.db.First(&stored, "id = ?", created.Invitation.ID).Error)
	require.Equal(t, models.InvitationExpired, stored.Status)

	user := registerUser(t, f.users, "late@example.com")
	_, err = f.invitations.Accept(ctx, user.ID, created.Invitation.ShortCode)
	require.ErrorIs(t, err, ErrInvitationExpired)
}

func TestAcceptCreatesMembership(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	created, err := f.invitations.Create(ctx, f.admin.ID, f.group.ID, "friend@example.com")
	require.NoError(t, err)

	friend := registerUser(t, f.users, "friend@example.com")

	membership, err := f.invitations.Accept(ctx, friend.ID, created.Token)
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, membership.Role)
	require.True(t, membership.IsActive)

	// Single use: a second accept fails.
	other := registerUser(t, f.users, "other@example.com")
	_, err = f.invitations.Accept(ctx, other.ID, created.Token)
	require.ErrorIs(t, err, ErrInvitationUsed)
}

func TestAcceptReactivatesDeactivatedMembership(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	friend := registerUser(t, f.users, "friend@example.com")
	membership := models.Membership{
		UserID:   friend.ID,
		GroupID:  f.group.ID,
		Role:     models.RoleMember,
		IsActive: false,
	}
	require.NoError(t, f.db.Create(&membership).Error)

	created, err := f.invitations.Create(ctx, f.admin.ID, f.group.ID, "friend@example.com")
	require.NoError(t, err)

	reactivated, err := f.invitations.Accept(ctx, friend.ID, created.Invitation.ShortCode)
	require.NoError(t, err)
	require.Equal(t, membership.ID, reactivated.ID)
	require.True(t, reactivated.IsActive)
}

func TestAcceptRejectsActiveMember(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	created, err := f.invitations.Create(ctx, f.admin.ID, f.group.ID, "admin@example.com")
	require.NoError(t, err)

	_, err = f.invitations.Accept(ctx, f.admin.ID, created.Token)
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestRevokeInvitation(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	created, err := f.invitations.Create(ctx, f.admin.ID, f.group.ID, "friend@example.com")
	require.NoError(t, err)

	require.NoError(t, f.invitations.Revoke(ctx, f.admin.ID, f.group.ID, created.Invitation.ID))

	resolved, err := f.invitations.Resolve(ctx, created.Invitation.ShortCode)
	require.NoError(t, err)
	require.Equal(t, models.InvitationExpired, resolved.Status)

	// Revoking a terminal invitation is a no-op not-found.
	err = f.invitations.Revoke(ctx, f.admin.ID, f.group.ID, created.Invitation.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPurgeTerminalInvitations(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	created, err := f.invitations.Create(ctx, f.admin.ID, f.group.ID, "friend@example.com")
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Invitation{}).
		Where("id = ?", created.Invitation.ID).
		Updates(map[string]any{
			"status":     models.InvitationExpired,
			"expires_at": time.Now().Add(-48 * time.Hour),
		}).Error)

	// A pending invitation must survive the purge.
	pending, err := f.invitations.Create(ctx, f.admin.ID, f.group.ID, "pending@example.com")
	require.NoError(t, err)

	purged, err := f.invitations.PurgeTerminalOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	_, err = f.invitations.Resolve(ctx, created.Invitation.ShortCode)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.invitations.Resolve(ctx, pending.Invitation.ShortCode)
	require.NoError(t, err)
}

func TestShortCodeCollisionIsDetectedAsUnique(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	created, err := f.invitations.Create(ctx, f.admin.ID, f.group.ID, "first@example.com")
	require.NoError(t, err)

	duplicate := models.Invitation{
		GroupID:   f.group.ID,
		Email:     "second@example.com",
		TokenHash: "other-token-hash",
		ShortCode: created.Invitation.ShortCode,
		InvitedBy: f.admin.ID,
		Status:    models.InvitationPending,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	err = f.db.Create(&duplicate).Error
	require.Error(t, err)
	require.True(t, isUniqueConstraintError(err))
}
