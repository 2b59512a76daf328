package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/ai"
	"github.com/GabeValerio/famodular/internal/database/testutil"
)

func newPlantFixture(t *testing.T, aiClient ai.Client) (*gorm.DB, *PlantService) {
	t.Helper()
	db := testutil.MustOpenTestDB(t)

	gw, err := access.NewGateway(db)
	require.NoError(t, err)

	plants, err := NewPlantService(db, gw, aiClient)
	require.NoError(t, err)

	return db, plants
}

func TestIdentifyAppliesModelAnswer(t *testing.T) {
	fake := &fakeAI{
		identification: ai.PlantIdentification{
			Species:              "Ficus lyrata",
			CommonName:           "Fiddle-leaf fig",
			WateringIntervalDays: 10,
			Confidence:           0.88,
		},
	}
	db, plants := newPlantFixture(t, fake)
	ctx := context.Background()

	owner, group := seedGroupMember(t, db, "gardener@example.com")

	plant, err := plants.Create(ctx, owner.ID, CreatePlantInput{GroupID: &group.ID, Name: "Living room tree"})
	require.NoError(t, err)
	require.False(t, plant.AIIdentified)

	updated, identification, err := plants.Identify(ctx, owner.ID, plant.ID, ai.Image{MIMEType: "image/jpeg", Data: []byte("x")})
	require.NoError(t, err)
	require.Equal(t, "Ficus lyrata", updated.Species)
	require.Equal(t, 10, updated.WateringIntervalDays)
	require.True(t, updated.AIIdentified)
	require.Equal(t, "Fiddle-leaf fig", identification.CommonName)
}

func TestIdentifyFailureLeavesPlantUntouched(t *testing.T) {
	fake := &fakeAI{fail: true}
	db, plants := newPlantFixture(t, fake)
	ctx := context.Background()

	owner, _ := seedGroupMember(t, db, "gardener@example.com")

	plant, err := plants.Create(ctx, owner.ID, CreatePlantInput{Name: "Cactus", Species: "Echinopsis"})
	require.NoError(t, err)

	_, _, err = plants.Identify(ctx, owner.ID, plant.ID, ai.Image{MIMEType: "image/jpeg", Data: []byte("x")})
	require.Error(t, err)

	unchanged, err := plants.GetByID(ctx, owner.ID, plant.ID)
	require.NoError(t, err)
	require.Equal(t, "Echinopsis", unchanged.Species)
	require.False(t, unchanged.AIIdentified)
}

func TestIdentifyWithoutAIClient(t *testing.T) {
	db, plants := newPlantFixture(t, nil)
	ctx := context.Background()

	owner, _ := seedGroupMember(t, db, "gardener@example.com")

	plant, err := plants.Create(ctx, owner.ID, CreatePlantInput{Name: "Fern"})
	require.NoError(t, err)

	_, _, err = plants.Identify(ctx, owner.ID, plant.ID, ai.Image{})
	require.ErrorIs(t, err, ErrAIDisabled)
}

func TestManualSpeciesOverridesIdentification(t *testing.T) {
	fake := &fakeAI{identification: ai.PlantIdentification{Species: "Monstera deliciosa", WateringIntervalDays: 7}}
	db, plants := newPlantFixture(t, fake)
	ctx := context.Background()

	owner, _ := seedGroupMember(t, db, "gardener@example.com")

	plant, err := plants.Create(ctx, owner.ID, CreatePlantInput{Name: "Monstera"})
	require.NoError(t, err)

	identified, _, err := plants.Identify(ctx, owner.ID, plant.ID, ai.Image{MIMEType: "image/jpeg", Data: []byte("x")})
	require.NoError(t, err)
	require.True(t, identified.AIIdentified)

	species := "Monstera adansonii"
	corrected, err := plants.Update(ctx, owner.ID, plant.ID, UpdatePlantInput{Species: &species})
	require.NoError(t, err)
	require.Equal(t, species, corrected.Species)
	require.False(t, corrected.AIIdentified)
}

func TestWaterStampsTime(t *testing.T) {
	db, plants := newPlantFixture(t, nil)
	ctx := context.Background()

	owner, _ := seedGroupMember(t, db, "gardener@example.com")

	plant, err := plants.Create(ctx, owner.ID, CreatePlantInput{Name: "Basil", WateringIntervalDays: 2})
	require.NoError(t, err)
	require.Nil(t, plant.LastWateredAt)

	watered, err := plants.Water(ctx, owner.ID, plant.ID)
	require.NoError(t, err)
	require.NotNil(t, watered.LastWateredAt)
}
