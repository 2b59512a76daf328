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

func newCheckInFixture(t *testing.T) (*gorm.DB, *CheckInService) {
	t.Helper()
	db := testutil.MustOpenTestDB(t)

	gw, err := access.NewGateway(db)
	require.NoError(t, err)

	checkIns, err := NewCheckInService(db, gw)
	require.NoError(t, err)

	return db, checkIns
}

func TestCheckInCreateAndList(t *testing.T) {
	db, checkIns := newCheckInFixture(t)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "mood@example.com")

	created, err := checkIns.Create(ctx, member.ID, CreateCheckInInput{
		GroupID: group.ID,
		Mood:    "great",
		Note:    "slept well",
	})
	require.NoError(t, err)
	require.Equal(t, group.ID, created.GroupID)

	listed, err := checkIns.ListForGroup(ctx, member.ID, group.ID, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "great", listed[0].Mood)
}

func TestCheckInRejectsNonMember(t *testing.T) {
	db, checkIns := newCheckInFixture(t)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "insider@example.com")

	outsider := models.User{Email: "outsider@example.com", Name: "Outsider", Password: "x"}
	require.NoError(t, db.Create(&outsider).Error)

	_, err := checkIns.Create(ctx, outsider.ID, CreateCheckInInput{GroupID: group.ID, Mood: "fine"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = checkIns.ListForGroup(ctx, outsider.ID, group.ID, 10)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	// The member still sees an untouched feed.
	listed, err := checkIns.ListForGroup(ctx, member.ID, group.ID, 10)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestCheckInDeleteOwnerOnly(t *testing.T) {
	db, checkIns := newCheckInFixture(t)
	ctx := context.Background()

	author, group := seedGroupMember(t, db, "author@example.com")

	peer := models.User{Email: "peer@example.com", Name: "Peer", Password: "x"}
	require.NoError(t, db.Create(&peer).Error)
	require.NoError(t, db.Create(&models.Membership{
		UserID:   peer.ID,
		GroupID:  group.ID,
		Role:     models.RoleMember,
		IsActive: true,
	}).Error)

	created, err := checkIns.Create(ctx, author.ID, CreateCheckInInput{GroupID: group.ID, Mood: "tired"})
	require.NoError(t, err)

	err = checkIns.Delete(ctx, peer.ID, created.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, checkIns.Delete(ctx, author.ID, created.ID))

	err = checkIns.Delete(ctx, author.ID, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCheckInRequiresMood(t *testing.T) {
	db, checkIns := newCheckInFixture(t)

	member, group := seedGroupMember(t, db, "quiet@example.com")

	_, err := checkIns.Create(context.Background(), member.ID, CreateCheckInInput{GroupID: group.ID, Mood: "  "})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 400, appErr.StatusCode)
}
