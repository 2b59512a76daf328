package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/database/testutil"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

func newGoalFixture(t *testing.T) (*gorm.DB, *GoalService) {
	t.Helper()
	db := testutil.MustOpenTestDB(t)

	gw, err := access.NewGateway(db)
	require.NoError(t, err)

	goals, err := NewGoalService(db, gw)
	require.NoError(t, err)

	return db, goals
}

func TestGoalCreateRequiredFields(t *testing.T) {
	db, goals := newGoalFixture(t)
	ctx := context.Background()

	user, _ := seedGroupMember(t, db, "goals@example.com")

	cases := []CreateGoalInput{
		{Type: "fitness", Timeframe: "weekly"},
		{Title: "Run more", Timeframe: "weekly"},
		{Title: "Run more", Type: "fitness"},
	}
	for _, input := range cases {
		_, err := goals.Create(ctx, user.ID, input)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, 400, appErr.StatusCode)
	}

	// Nothing was written for the rejected inputs.
	listed, err := goals.ListPersonal(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestGoalProgressUpdate(t *testing.T) {
	db, goals := newGoalFixture(t)
	ctx := context.Background()

	user, group := seedGroupMember(t, db, "progress@example.com")

	goal, err := goals.Create(ctx, user.ID, CreateGoalInput{
		GroupID:   &group.ID,
		Title:     "Read together",
		Type:      "family",
		Timeframe: "monthly",
	})
	require.NoError(t, err)
	require.Zero(t, goal.Progress)

	progress := 40
	updated, err := goals.Update(ctx, user.ID, goal.ID, UpdateGoalInput{Progress: &progress})
	require.NoError(t, err)
	require.Equal(t, 40, updated.Progress)
}
