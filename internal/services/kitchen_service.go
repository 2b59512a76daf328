package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/ai"
	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

const maxAnalysisBatch = 10

// CreateInventoryItemInput carries a new pantry record.
type CreateInventoryItemInput struct {
	Name      string
	Quantity  float64
	Unit      string
	Category  string
	ExpiresAt *time.Time
}

// UpdateInventoryItemInput describes mutable pantry fields.
type UpdateInventoryItemInput struct {
	Name      *string
	Quantity  *float64
	Unit      *string
	Category  *string
	ExpiresAt *time.Time
}

// CreateGroceryItemInput carries a new shopping-list entry.
type CreateGroceryItemInput struct {
	Name     string
	Quantity float64
	Unit     string
}

// CreateRecipeInput carries a recipe with its ingredient lines.
type CreateRecipeInput struct {
	Title        string
	Instructions string
	Servings     int
	PrepMinutes  int
	Ingredients  []ai.IngredientDraft
}

// CreateMealPlanInput carries a meal plan with its nested meals.
type CreateMealPlanInput struct {
	Title    string
	StartsOn time.Time
	EndsOn   time.Time
	Meals    []ai.MealDraft
}

// PhotoAnalysisResult reports the outcome for one image in a batch.
type PhotoAnalysisResult struct {
	Index int                    `json:"index"`
	Items []models.InventoryItem `json:"items,omitempty"`
	Error string                 `json:"error,omitempty"`
}

// KitchenService manages the kitchen module: pantry inventory, the shared
// grocery list, recipes, and meal plans. Everything here is group-scoped.
type KitchenService struct {
	db       *gorm.DB
	gateway  *access.Gateway
	aiClient ai.Client
}

// NewKitchenService constructs a KitchenService. The AI client may be nil,
// which disables generation and photo analysis.
func NewKitchenService(db *gorm.DB, gateway *access.Gateway, aiClient ai.Client) (*KitchenService, error) {
	if db == nil {
		return nil, errors.New("kitchen service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("kitchen service: gateway is required")
	}
	return &KitchenService{db: db, gateway: gateway, aiClient: aiClient}, nil
}

// --- Inventory ---

// AddInventoryItem records a pantry item for the group.
func (s *KitchenService) AddInventoryItem(ctx context.Context, requesterID, groupID string, input CreateInventoryItemInput) (*models.InventoryItem, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("item name is required")
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	item := &models.InventoryItem{
		GroupID:   groupID,
		Name:      name,
		Quantity:  quantity,
		Unit:      strings.TrimSpace(input.Unit),
		Category:  strings.TrimSpace(input.Category),
		ExpiresAt: input.ExpiresAt,
		AddedBy:   requesterID,
	}

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return item, nil
}

// ListInventory returns the group's pantry, soonest expiry first.
func (s *KitchenService) ListInventory(ctx context.Context, requesterID, groupID string) ([]models.InventoryItem, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var items []models.InventoryItem
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("expires_at ASC, name ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return items, nil
}

// UpdateInventoryItem mutates a pantry item.
func (s *KitchenService) UpdateInventoryItem(ctx context.Context, requesterID, itemID string, input UpdateInventoryItemInput) (*models.InventoryItem, error) {
	ctx = ensureContext(ctx)

	item, err := s.inventoryItem(ctx, requesterID, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := trimPtr(input.Name); name != nil {
		if *name == "" {
			return nil, apperrors.NewBadRequest("item name must not be empty")
		}
		updates["name"] = *name
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, apperrors.NewBadRequest("quantity must not be negative")
		}
		updates["quantity"] = *input.Quantity
	}
	if unit := trimPtr(input.Unit); unit != nil {
		updates["unit"] = *unit
	}
	if category := trimPtr(input.Category); category != nil {
		updates["category"] = *category
	}
	if input.ExpiresAt != nil {
		updates["expires_at"] = *input.ExpiresAt
	}
	if len(updates) == 0 {
		return item, nil
	}

	if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return s.inventoryItem(ctx, requesterID, itemID)
}

// DeleteInventoryItem removes a pantry item.
func (s *KitchenService) DeleteInventoryItem(ctx context.Context, requesterID, itemID string) error {
	ctx = ensureContext(ctx)

	item, err := s.inventoryItem(ctx, requesterID, itemID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}

func (s *KitchenService) inventoryItem(ctx context.Context, requesterID, itemID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if _, err := s.gateway.RequireMember(ctx, requesterID, item.GroupID); err != nil {
		return nil, err
	}
	return &item, nil
}

// --- Grocery list ---

// AddGroceryItem appends an entry to the group's shopping list.
func (s *KitchenService) AddGroceryItem(ctx context.Context, requesterID, groupID string, input CreateGroceryItemInput) (*models.GroceryItem, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("item name is required")
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	item := &models.GroceryItem{
		GroupID:  groupID,
		Name:     name,
		Quantity: quantity,
		Unit:     strings.TrimSpace(input.Unit),
		AddedBy:  requesterID,
	}

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return item, nil
}

// ListGroceries returns the group's shopping list, unpurchased first.
func (s *KitchenService) ListGroceries(ctx context.Context, requesterID, groupID string) ([]models.GroceryItem, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var items []models.GroceryItem
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("purchased ASC, created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return items, nil
}

// ToggleGroceryItem flips an entry's purchased flag.
func (s *KitchenService) ToggleGroceryItem(ctx context.Context, requesterID, itemID string) (*models.GroceryItem, error) {
	ctx = ensureContext(ctx)

	var item models.GroceryItem
	err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if _, err := s.gateway.RequireMember(ctx, requesterID, item.GroupID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&item).Update("purchased", !item.Purchased).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	item.Purchased = !item.Purchased
	return &item, nil
}

// DeleteGroceryItem removes a shopping-list entry.
func (s *KitchenService) DeleteGroceryItem(ctx context.Context, requesterID, itemID string) error {
	ctx = ensureContext(ctx)

	var item models.GroceryItem
	err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}

	if _, err := s.gateway.RequireMember(ctx, requesterID, item.GroupID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&item).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}

// --- Recipes ---

// CreateRecipe persists a recipe and all its ingredient lines in one
// transaction.
func (s *KitchenService) CreateRecipe(ctx context.Context, requesterID, groupID string, input CreateRecipeInput) (*models.Recipe, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("recipe title is required")
	}
	servings := input.Servings
	if servings <= 0 {
		servings = 2
	}

	recipe := &models.Recipe{
		GroupID:      groupID,
		Title:        title,
		Instructions: input.Instructions,
		Servings:     servings,
		PrepMinutes:  input.PrepMinutes,
		CreatedBy:    requesterID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		for _, line := range input.Ingredients {
			name := strings.TrimSpace(line.Name)
			if name == "" {
				continue
			}
			ingredient := models.RecipeIngredient{
				RecipeID: recipe.ID,
				Name:     name,
				Quantity: line.Quantity,
				Unit:     strings.TrimSpace(line.Unit),
			}
			if err := tx.Create(&ingredient).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	return s.recipeByID(ctx, recipe.ID)
}

// GenerateRecipe asks the model for a recipe built from the group's pantry
// and persists it flagged as AI-generated.
func (s *KitchenService) GenerateRecipe(ctx context.Context, requesterID, groupID string, servings int, preferences string) (*models.Recipe, error) {
	ctx = ensureContext(ctx)

	if s.aiClient == nil {
		return nil, ErrAIDisabled
	}

	inventory, err := s.ListInventory(ctx, requesterID, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(inventory))
	for _, item := range inventory {
		names = append(names, item.Name)
	}

	draft, err := s.aiClient.GenerateRecipe(ctx, ai.RecipeRequest{
		Ingredients: names,
		Servings:    servings,
		Preferences: preferences,
	})
	if err != nil {
		return nil, err
	}

	recipe, err := s.CreateRecipe(ctx, requesterID, groupID, CreateRecipeInput{
		Title:        draft.Title,
		Instructions: draft.Instructions,
		Servings:     draft.Servings,
		PrepMinutes:  draft.PrepMinutes,
		Ingredients:  draft.Ingredients,
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(recipe).Update("ai_generated", true).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	recipe.AIGenerated = true
	return recipe, nil
}

// ListRecipes returns the group's recipes with ingredients preloaded.
func (s *KitchenService) ListRecipes(ctx context.Context, requesterID, groupID string) ([]models.Recipe, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return recipes, nil
}

// GetRecipe returns one recipe after a membership check.
func (s *KitchenService) GetRecipe(ctx context.Context, requesterID, recipeID string) (*models.Recipe, error) {
	ctx = ensureContext(ctx)

	recipe, err := s.recipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gateway.RequireMember(ctx, requesterID, recipe.GroupID); err != nil {
		return nil, err
	}
	return recipe, nil
}

// DeleteRecipe removes a recipe; ingredient rows cascade.
func (s *KitchenService) DeleteRecipe(ctx context.Context, requesterID, recipeID string) error {
	ctx = ensureContext(ctx)

	recipe, err := s.GetRecipe(ctx, requesterID, recipeID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}

func (s *KitchenService) recipeByID(ctx context.Context, recipeID string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Preload("Ingredients").First(&recipe, "id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return &recipe, nil
}

// --- Meal plans ---

// CreateMealPlan persists a plan, its meals, and their ingredients in a
// single transaction so a partial failure leaves nothing behind.
func (s *KitchenService) CreateMealPlan(ctx context.Context, requesterID, groupID string, input CreateMealPlanInput) (*models.MealPlan, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("meal plan title is required")
	}
	if input.StartsOn.IsZero() || input.EndsOn.IsZero() || input.EndsOn.Before(input.StartsOn) {
		return nil, apperrors.NewBadRequest("meal plan requires a valid date range")
	}

	plan := &models.MealPlan{
		GroupID:   groupID,
		Title:     title,
		StartsOn:  input.StartsOn,
		EndsOn:    input.EndsOn,
		CreatedBy: requesterID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		for _, mealDraft := range input.Meals {
			name := strings.TrimSpace(mealDraft.Name)
			if name == "" {
				continue
			}
			meal := models.Meal{
				MealPlanID: plan.ID,
				Name:       name,
				Slot:       strings.TrimSpace(mealDraft.Slot),
				Day:        input.StartsOn.AddDate(0, 0, mealDraft.Day),
			}
			if err := tx.Create(&meal).Error; err != nil {
				return err
			}
			for _, line := range mealDraft.Ingredients {
				ingredientName := strings.TrimSpace(line.Name)
				if ingredientName == "" {
					continue
				}
				ingredient := models.MealIngredient{
					MealID:   meal.ID,
					Name:     ingredientName,
					Quantity: line.Quantity,
					Unit:     strings.TrimSpace(line.Unit),
				}
				if err := tx.Create(&ingredient).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	return s.mealPlanByID(ctx, plan.ID)
}

// GenerateMealPlan asks the model for a plan over the group's pantry and
// persists it flagged as AI-generated.
func (s *KitchenService) GenerateMealPlan(ctx context.Context, requesterID, groupID string, startsOn time.Time, days int, preferences string) (*models.MealPlan, error) {
	ctx = ensureContext(ctx)

	if s.aiClient == nil {
		return nil, ErrAIDisabled
	}
	if days <= 0 {
		days = 7
	}
	if startsOn.IsZero() {
		startsOn = time.Now().Truncate(24 * time.Hour)
	}

	inventory, err := s.ListInventory(ctx, requesterID, groupID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(inventory))
	for _, item := range inventory {
		names = append(names, item.Name)
	}

	draft, err := s.aiClient.GenerateMealPlan(ctx, ai.MealPlanRequest{
		Days:        days,
		Ingredients: names,
		Preferences: preferences,
	})
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = "Meal plan"
	}

	plan, err := s.CreateMealPlan(ctx, requesterID, groupID, CreateMealPlanInput{
		Title:    title,
		StartsOn: startsOn,
		EndsOn:   startsOn.AddDate(0, 0, days-1),
		Meals:    draft.Meals,
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(plan).Update("ai_generated", true).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	plan.AIGenerated = true
	return plan, nil
}

// ListMealPlans returns the group's meal plans with meals preloaded.
func (s *KitchenService) ListMealPlans(ctx context.Context, requesterID, groupID string) ([]models.MealPlan, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var plans []models.MealPlan
	err := s.db.WithContext(ctx).
		Preload("Meals").
		Preload("Meals.Ingredients").
		Where("group_id = ?", groupID).
		Order("starts_on DESC").
		Find(&plans).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return plans, nil
}

func (s *KitchenService) mealPlanByID(ctx context.Context, planID string) (*models.MealPlan, error) {
	var plan models.MealPlan
	err := s.db.WithContext(ctx).
		Preload("Meals").
		Preload("Meals.Ingredients").
		First(&plan, "id = ?", planID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return &plan, nil
}

// --- Photo analysis ---

// AnalyzeInventoryPhotos runs recognition over a batch of photos and stores
// the detected items. Each image succeeds or fails independently; one bad
// photo never discards its siblings' results.
func (s *KitchenService) AnalyzeInventoryPhotos(ctx context.Context, requesterID, groupID string, images []ai.Image) ([]PhotoAnalysisResult, error) {
	ctx = ensureContext(ctx)

	if s.aiClient == nil {
		return nil, ErrAIDisabled
	}
	if len(images) == 0 {
		return nil, apperrors.NewBadRequest("at least one image is required")
	}
	if len(images) > maxAnalysisBatch {
		return nil, apperrors.NewBadRequest("too many images in one batch")
	}

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	results := make([]PhotoAnalysisResult, 0, len(images))
	for i, image := range images {
		result := PhotoAnalysisResult{Index: i}

		detected, err := s.aiClient.AnalyzeFoodImage(ctx, image)
		if err != nil {
			result.Error = apperrors.FromError(err).Message
			results = append(results, result)
			continue
		}

		for _, d := range detected {
			name := strings.TrimSpace(d.Name)
			if name == "" {
				continue
			}
			quantity := d.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			item := models.InventoryItem{
				GroupID:  groupID,
				Name:     name,
				Quantity: quantity,
				Unit:     strings.TrimSpace(d.Unit),
				Category: strings.TrimSpace(d.Category),
				AddedBy:  requesterID,
			}
			if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
				result.Error = apperrors.NewStorageFailure(err).Message
				break
			}
			result.Items = append(result.Items, item)
		}

		results = append(results, result)
	}

	return results, nil
}
