package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/database/testutil"
	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

func newGroupFixture(t *testing.T) (*gorm.DB, *GroupService, *UserService) {
	t.Helper()
	db := testutil.MustOpenTestDB(t)

	gw, err := access.NewGateway(db)
	require.NoError(t, err)

	groups, err := NewGroupService(db, gw, nil)
	require.NoError(t, err)

	users, err := NewUserService(db, nil)
	require.NoError(t, err)

	return db, groups, users
}

func registerUser(t *testing.T, users *UserService, email string) *models.User {
	t.Helper()
	user, err := users.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "password1",
		Name:     "Test User",
	})
	require.NoError(t, err)
	return user
}

func TestCreateGroupGrantsCreatorAdmin(t *testing.T) {
	db, groups, users := newGroupFixture(t)
	ctx := context.Background()

	creator := registerUser(t, users, "creator@example.com")

	group, err := groups.Create(ctx, creator.ID, CreateGroupInput{Name: "Family"})
	require.NoError(t, err)
	require.Equal(t, models.GroupPrivacyPrivate, group.Privacy)

	var membership models.Membership
	require.NoError(t, db.First(&membership, "group_id = ? AND user_id = ?", group.ID, creator.ID).Error)
	require.Equal(t, models.RoleAdmin, membership.Role)
	require.True(t, membership.IsActive)
}

func TestGroupAccessRequiresMembership(t *testing.T) {
	_, groups, users := newGroupFixture(t)
	ctx := context.Background()

	creator := registerUser(t, users, "creator@example.com")
	outsider := registerUser(t, users, "outsider@example.com")

	group, err := groups.Create(ctx, creator.ID, CreateGroupInput{Name: "Family"})
	require.NoError(t, err)

	_, err = groups.GetByID(ctx, outsider.ID, group.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = groups.GetByID(ctx, creator.ID, group.ID)
	require.NoError(t, err)
}

func TestUpdateGroupAdminOnly(t *testing.T) {
	db, groups, users := newGroupFixture(t)
	ctx := context.Background()

	creator := registerUser(t, users, "creator@example.com")
	member := registerUser(t, users, "member@example.com")

	group, err := groups.Create(ctx, creator.ID, CreateGroupInput{Name: "Family"})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Membership{
		UserID:  member.ID,
		GroupID: group.ID,
		Role:    models.RoleMember,
	}).Error)

	name := "Renamed"
	_, err = groups.Update(ctx, member.ID, group.ID, UpdateGroupInput{Name: &name})
	require.ErrorIs(t, err, apperrors.ErrAdminRequired)

	updated, err := groups.Update(ctx, creator.ID, group.ID, UpdateGroupInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
}

func TestLastAdminCannotLeaveOrBeDemoted(t *testing.T) {
	db, groups, users := newGroupFixture(t)
	ctx := context.Background()

	creator := registerUser(t, users, "creator@example.com")
	group, err := groups.Create(ctx, creator.ID, CreateGroupInput{Name: "Family"})
	require.NoError(t, err)

	err = groups.Leave(ctx, creator.ID, group.ID)
	require.Error(t, err)

	var membership models.Membership
	require.NoError(t, db.First(&membership, "group_id = ? AND user_id = ?", group.ID, creator.ID).Error)

	role := models.RoleMember
	_, err = groups.UpdateMember(ctx, creator.ID, group.ID, membership.ID, UpdateMemberInput{Role: &role})
	require.Error(t, err)
}

func TestDeactivatedMemberLosesAccess(t *testing.T) {
	db, groups, users := newGroupFixture(t)
	ctx := context.Background()

	creator := registerUser(t, users, "creator@example.com")
	member := registerUser(t, users, "member@example.com")

	group, err := groups.Create(ctx, creator.ID, CreateGroupInput{Name: "Family"})
	require.NoError(t, err)

	membership := models.Membership{UserID: member.ID, GroupID: group.ID, Role: models.RoleMember, IsActive: true}
	require.NoError(t, db.Create(&membership).Error)

	_, err = groups.GetByID(ctx, member.ID, group.ID)
	require.NoError(t, err)

	inactive := false
	_, err = groups.UpdateMember(ctx, creator.ID, group.ID, membership.ID, UpdateMemberInput{IsActive: &inactive})
	require.NoError(t, err)

	_, err = groups.GetByID(ctx, member.ID, group.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	groupsList, err := groups.ListForUser(ctx, member.ID)
	require.NoError(t, err)
	require.Empty(t, groupsList)
}
