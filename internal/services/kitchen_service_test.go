package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/ai"
	"github.com/GabeValerio/famodular/internal/database/testutil"
	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

func newKitchenFixture(t *testing.T, aiClient ai.Client) (*gorm.DB, *KitchenService) {
	t.Helper()
	db := testutil.MustOpenTestDB(t)

	gw, err := access.NewGateway(db)
	require.NoError(t, err)

	kitchen, err := NewKitchenService(db, gw, aiClient)
	require.NoError(t, err)

	return db, kitchen
}

func TestInventoryLifecycle(t *testing.T) {
	db, kitchen := newKitchenFixture(t, nil)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "cook@example.com")

	item, err := kitchen.AddInventoryItem(ctx, member.ID, group.ID, CreateInventoryItemInput{
		Name: "Flour", Quantity: 2, Unit: "kg", Category: "baking",
	})
	require.NoError(t, err)

	half := 0.5
	updated, err := kitchen.UpdateInventoryItem(ctx, member.ID, item.ID, UpdateInventoryItemInput{Quantity: &half})
	require.NoError(t, err)
	require.Equal(t, 0.5, updated.Quantity)

	listed, err := kitchen.ListInventory(ctx, member.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, kitchen.DeleteInventoryItem(ctx, member.ID, item.ID))

	listed, err = kitchen.ListInventory(ctx, member.ID, group.ID)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestInventoryRequiresMembership(t *testing.T) {
	db, kitchen := newKitchenFixture(t, nil)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "cook@example.com")
	outsider, _ := seedGroupMember(t, db, "outsider@example.com")

	_, err := kitchen.AddInventoryItem(ctx, outsider.ID, group.ID, CreateInventoryItemInput{Name: "Salt"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	item, err := kitchen.AddInventoryItem(ctx, member.ID, group.ID, CreateInventoryItemInput{Name: "Salt"})
	require.NoError(t, err)

	_, err = kitchen.UpdateInventoryItem(ctx, outsider.ID, item.ID, UpdateInventoryItemInput{})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestGroceryToggle(t *testing.T) {
	db, kitchen := newKitchenFixture(t, nil)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "cook@example.com")

	item, err := kitchen.AddGroceryItem(ctx, member.ID, group.ID, CreateGroceryItemInput{Name: "Milk"})
	require.NoError(t, err)
	require.False(t, item.Purchased)

	toggled, err := kitchen.ToggleGroceryItem(ctx, member.ID, item.ID)
	require.NoError(t, err)
	require.True(t, toggled.Purchased)
}

func TestCreateRecipeTransactional(t *testing.T) {
	db, kitchen := newKitchenFixture(t, nil)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "cook@example.com")

	recipe, err := kitchen.CreateRecipe(ctx, member.ID, group.ID, CreateRecipeInput{
		Title:        "Pancakes",
		Instructions: "Mix and fry.",
		Ingredients: []ai.IngredientDraft{
			{Name: "Flour", Quantity: 200, Unit: "g"},
			{Name: "Milk", Quantity: 3, Unit: "dl"},
			{Name: "   ", Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, recipe.Servings)
	// The blank ingredient line is skipped, not persisted.
	require.Len(t, recipe.Ingredients, 2)

	var count int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestGenerateRecipePersistsAIFlag(t *testing.T) {
	fake := &fakeAI{
		recipe: ai.RecipeDraft{
			Title:        "Veggie stew",
			Instructions: "Simmer everything.",
			Servings:     4,
			Ingredients:  []ai.IngredientDraft{{Name: "Carrot", Quantity: 3, Unit: "pcs"}},
		},
	}
	db, kitchen := newKitchenFixture(t, fake)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "cook@example.com")

	recipe, err := kitchen.GenerateRecipe(ctx, member.ID, group.ID, 4, "vegetarian")
	require.NoError(t, err)
	require.True(t, recipe.AIGenerated)
	require.Equal(t, "Veggie stew", recipe.Title)
	require.Len(t, recipe.Ingredients, 1)
}

func TestGenerateRecipeWithoutAIClient(t *testing.T) {
	db, kitchen := newKitchenFixture(t, nil)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "cook@example.com")

	_, err := kitchen.GenerateRecipe(ctx, member.ID, group.ID, 2, "")
	require.ErrorIs(t, err, ErrAIDisabled)
}

func TestCreateMealPlanNested(t *testing.T) {
	db, kitchen := newKitchenFixture(t, nil)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "cook@example.com")

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	plan, err := kitchen.CreateMealPlan(ctx, member.ID, group.ID, CreateMealPlanInput{
		Title:    "Week 37",
		StartsOn: start,
		EndsOn:   start.AddDate(0, 0, 6),
		Meals: []ai.MealDraft{
			{Name: "Oatmeal", Slot: "breakfast", Day: 0, Ingredients: []ai.IngredientDraft{{Name: "Oats", Quantity: 1, Unit: "dl"}}},
			{Name: "Tacos", Slot: "dinner", Day: 4},
		},
	})
	require.NoError(t, err)
	require.Len(t, plan.Meals, 2)

	// Day offsets resolve against the plan start.
	for _, meal := range plan.Meals {
		if meal.Name == "Tacos" {
			require.Equal(t, start.AddDate(0, 0, 4), meal.Day.UTC())
		}
	}
}

func TestCreateMealPlanRejectsBadRange(t *testing.T) {
	db, kitchen := newKitchenFixture(t, nil)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "cook@example.com")

	start := time.Now()
	_, err := kitchen.CreateMealPlan(ctx, member.ID, group.ID, CreateMealPlanInput{
		Title:    "Backwards",
		StartsOn: start,
		EndsOn:   start.AddDate(0, 0, -1),
	})
	require.Error(t, err)
}

func TestAnalyzeInventoryPhotosTolerant(t *testing.T) {
	fake := &fakeAI{
		detected: [][]ai.DetectedItem{
			{{Name: "Milk", Quantity: 1, Unit: "l", Category: "dairy"}},
			nil,
			{{Name: "Eggs", Quantity: 6, Unit: "pcs", Category: "dairy"}},
		},
		failOn: map[int]bool{1: true},
	}
	db, kitchen := newKitchenFixture(t, fake)
	ctx := context.Background()

	member, group := seedGroupMember(t, db, "cook@example.com")

	images := []ai.Image{
		{MIMEType: "image/jpeg", Data: []byte("a")},
		{MIMEType: "image/jpeg", Data: []byte("b")},
		{MIMEType: "image/jpeg", Data: []byte("c")},
	}

	results, err := kitchen.AnalyzeInventoryPhotos(ctx, member.ID, group.ID, images)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// The failing middle image reports its error without sinking the batch.
	require.Empty(t, results[0].Error)
	require.Len(t, results[0].Items, 1)
	require.NotEmpty(t, results[1].Error)
	require.Empty(t, results[2].Error)
	require.Len(t, results[2].Items, 1)

	inventory, err := kitchen.ListInventory(ctx, member.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, inventory, 2)
}
