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

func newTodoFixture(t *testing.T) (*gorm.DB, *access.Gateway, *TodoService) {
	t.Helper()
	db := testutil.MustOpenTestDB(t)

	gw, err := access.NewGateway(db)
	require.NoError(t, err)

	todos, err := NewTodoService(db, gw)
	require.NoError(t, err)

	return db, gw, todos
}

func seedGroupMember(t *testing.T, db *gorm.DB, email string) (*models.User, *models.Group) {
	t.Helper()

	user := models.User{Email: email, Name: "Member", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	group := models.Group{Name: "Household", CreatedBy: user.ID}
	require.NoError(t, db.Create(&group).Error)

	require.NoError(t, db.Create(&models.Membership{
		UserID:   user.ID,
		GroupID:  group.ID,
		Role:     models.RoleAdmin,
		IsActive: true,
	}).Error)

	return &user, &group
}

func TestTodoToggleRoundTrip(t *testing.T) {
	db, _, todos := newTodoFixture(t)
	ctx := context.Background()

	user, group := seedGroupMember(t, db, "member@example.com")

	todo, err := todos.Create(ctx, user.ID, CreateTodoInput{GroupID: &group.ID, Title: "Buy milk"})
	require.NoError(t, err)
	require.False(t, todo.Completed)
	require.Nil(t, todo.CompletedAt)

	completed, err := todos.Toggle(ctx, user.ID, todo.ID)
	require.NoError(t, err)
	require.True(t, completed.Completed)
	require.NotNil(t, completed.CompletedAt)

	// Toggling back restores the original shape, including the null stamp.
	reopened, err := todos.Toggle(ctx, user.ID, todo.ID)
	require.NoError(t, err)
	require.False(t, reopened.Completed)
	require.Nil(t, reopened.CompletedAt)
}

func TestPersonalTodoInvisibleToOthers(t *testing.T) {
	db, _, todos := newTodoFixture(t)
	ctx := context.Background()

	owner, _ := seedGroupMember(t, db, "owner@example.com")
	other, _ := seedGroupMember(t, db, "other@example.com")

	todo, err := todos.Create(ctx, owner.ID, CreateTodoInput{Title: "Private task"})
	require.NoError(t, err)
	require.Equal(t, models.ScopePersonal, todo.Scope())

	_, err = todos.GetByID(ctx, other.ID, todo.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	mine, err := todos.ListPersonal(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	theirs, err := todos.ListPersonal(ctx, other.ID)
	require.NoError(t, err)
	require.Empty(t, theirs)
}

func TestGroupTodoRequiresMembership(t *testing.T) {
	db, _, todos := newTodoFixture(t)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "member@example.com")
	outsider, _ := seedGroupMember(t, db, "outsider@example.com")

	_, err := todos.Create(ctx, outsider.ID, CreateTodoInput{GroupID: &group.ID, Title: "Nope"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	todo, err := todos.Create(ctx, member.ID, CreateTodoInput{GroupID: &group.ID, Title: "Shared"})
	require.NoError(t, err)

	_, err = todos.GetByID(ctx, outsider.ID, todo.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	listed, err := todos.ListForGroup(ctx, member.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}
