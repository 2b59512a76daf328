package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/database/testutil"
	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

func seedMembership(t *testing.T, db *gorm.DB, role string, active bool) (models.User, models.Group, models.Membership) {
	t.Helper()

	user := models.User{Email: "member@example.com", Name: "Member", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	group := models.Group{Name: "Household", CreatedBy: user.ID}
	require.NoError(t, db.Create(&group).Error)

	membership := models.Membership{
		UserID:   user.ID,
		GroupID:  group.ID,
		Role:     role,
		IsActive: active,
	}
	require.NoError(t, db.Create(&membership).Error)

	return user, group, membership
}

func TestRequireMemberActiveMembership(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	gw, err := NewGateway(db)
	require.NoError(t, err)

	user, group, _ := seedMembership(t, db, models.RoleMember, true)

	membership, err := gw.RequireMember(context.Background(), user.ID, group.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, membership.UserID)
	require.Equal(t, group.ID, membership.GroupID)
}

func TestRequireMemberDeniesNonMember(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	gw, err := NewGateway(db)
	require.NoError(t, err)

	_, group, _ := seedMembership(t, db, models.RoleMember, true)

	outsider := models.User{Email: "outsider@example.com", Name: "Outsider", Password: "x"}
	require.NoError(t, db.Create(&outsider).Error)

	_, err = gw.RequireMember(context.Background(), outsider.ID, group.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRequireMemberDeniesDeactivatedMembership(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	gw, err := NewGateway(db)
	require.NoError(t, err)

	user, group, membership := seedMembership(t, db, models.RoleMember, true)

	_, err = gw.RequireMember(context.Background(), user.ID, group.ID)
	require.NoError(t, err)

	// Deactivation must revoke access on the very next check.
	require.NoError(t, db.Model(&models.Membership{}).
		Where("id = ?", membership.ID).
		Update("is_active", false).Error)

	_, err = gw.RequireMember(context.Background(), user.ID, group.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRequireAdmin(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	gw, err := NewGateway(db)
	require.NoError(t, err)

	user, group, _ := seedMembership(t, db, models.RoleMember, true)

	_, err = gw.RequireAdmin(context.Background(), user.ID, group.ID)
	require.ErrorIs(t, err, apperrors.ErrAdminRequired)

	require.NoError(t, db.Model(&models.Membership{}).
		Where("user_id = ? AND group_id = ?", user.ID, group.ID).
		Update("role", models.RoleAdmin).Error)

	membership, err := gw.RequireAdmin(context.Background(), user.ID, group.ID)
	require.NoError(t, err)
	require.True(t, membership.IsAdmin())
}

func TestRequireOwner(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	gw, err := NewGateway(db)
	require.NoError(t, err)

	require.NoError(t, gw.RequireOwner("user-1", "user-1"))
	require.ErrorIs(t, gw.RequireOwner("user-1", "user-2"), apperrors.ErrForbidden)
}

func TestRequireScope(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	gw, err := NewGateway(db)
	require.NoError(t, err)

	user, group, _ := seedMembership(t, db, models.RoleMember, true)

	groupScoped := models.Ownership{GroupID: &group.ID}
	require.NoError(t, gw.RequireScope(context.Background(), user.ID, groupScoped))

	personal := models.Ownership{UserID: &user.ID}
	require.NoError(t, gw.RequireScope(context.Background(), user.ID, personal))

	var malformed models.Ownership
	err = gw.RequireScope(context.Background(), user.ID, malformed)
	require.Error(t, err)

	both := models.Ownership{GroupID: &group.ID, UserID: &user.ID}
	err = gw.RequireScope(context.Background(), user.ID, both)
	require.Error(t, err)
}
