package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/ai"
	"github.com/GabeValerio/famodular/internal/services"
	appErrors "github.com/GabeValerio/famodular/pkg/errors"
	"github.com/GabeValerio/famodular/pkg/response"
)

// KitchenHandler exposes pantry, grocery, recipe and meal plan endpoints.
// Everything in the kitchen module is group-scoped.
type KitchenHandler struct {
	kitchen *services.KitchenService
}

// NewKitchenHandler configures a kitchen handler with required services.
func NewKitchenHandler(kitchen *services.KitchenService) *KitchenHandler {
	return &KitchenHandler{kitchen: kitchen}
}

func requiredGroupID(c *gin.Context) (string, bool) {
	groupID := strings.TrimSpace(c.Query("groupId"))
	if groupID == "" {
		response.Error(c, appErrors.NewBadRequest("groupId query parameter is required"))
		return "", false
	}
	return groupID, true
}

type createInventoryItemRequest struct {
	GroupID   string     `json:"groupId" validate:"required,uuid4"`
	Name      string     `json:"name" validate:"required,max=128"`
	Quantity  float64    `json:"quantity" validate:"omitempty,min=0"`
	Unit      string     `json:"unit" validate:"omitempty,max=32"`
	Category  string     `json:"category" validate:"omitempty,max=64"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type updateInventoryItemRequest struct {
	Name      *string    `json:"name" validate:"omitempty,min=1,max=128"`
	Quantity  *float64   `json:"quantity" validate:"omitempty,min=0"`
	Unit      *string    `json:"unit" validate:"omitempty,max=32"`
	Category  *string    `json:"category" validate:"omitempty,max=64"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type createGroceryItemRequest struct {
	GroupID  string  `json:"groupId" validate:"required,uuid4"`
	Name     string  `json:"name" validate:"required,max=128"`
	Quantity float64 `json:"quantity" validate:"omitempty,min=0"`
	Unit     string  `json:"unit" validate:"omitempty,max=32"`
}

type ingredientRequest struct {
	Name     string  `json:"name" validate:"required,max=128"`
	Quantity float64 `json:"quantity" validate:"omitempty,min=0"`
	Unit     string  `json:"unit" validate:"omitempty,max=32"`
}

type createRecipeRequest struct {
	GroupID      string              `json:"groupId" validate:"required,uuid4"`
	Title        string              `json:"title" validate:"required,max=256"`
	Instructions string              `json:"instructions" validate:"omitempty,max=16384"`
	Servings     int                 `json:"servings" validate:"omitempty,min=1,max=50"`
	PrepMinutes  int                 `json:"prepMinutes" validate:"omitempty,min=0"`
	Ingredients  []ingredientRequest `json:"ingredients" validate:"dive"`
}

type generateRecipeRequest struct {
	GroupID     string `json:"groupId" validate:"required,uuid4"`
	Servings    int    `json:"servings" validate:"omitempty,min=1,max=50"`
	Preferences string `json:"preferences" validate:"omitempty,max=1024"`
}

type mealRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Slot        string   `json:"slot" validate:"omitempty,max=32"`
	Day         int      `json:"day" validate:"min=0"`
	Ingredients []string `json:"ingredients"`
}

type createMealPlanRequest struct {
	GroupID  string        `json:"groupId" validate:"required,uuid4"`
	Title    string        `json:"title" validate:"required,max=256"`
	StartsOn time.Time     `json:"startsOn" validate:"required"`
	EndsOn   time.Time     `json:"endsOn" validate:"required"`
	Meals    []mealRequest `json:"meals" validate:"dive"`
}

type generateMealPlanRequest struct {
	GroupID     string     `json:"groupId" validate:"required,uuid4"`
	StartsOn    *time.Time `json:"startsOn"`
	Days        int        `json:"days" validate:"omitempty,min=1,max=31"`
	Preferences string     `json:"preferences" validate:"omitempty,max=1024"`
}

type analyzePhotosRequest struct {
	GroupID string         `json:"groupId" validate:"required,uuid4"`
	Images  []imagePayload `json:"images" validate:"required,min=1,dive"`
}

// AddInventoryItem records a pantry item.
func (h *KitchenHandler) AddInventoryItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createInventoryItemRequest
	if !bindAndValidate(c, &body) {
		return
	}

	item, err := h.kitchen.AddInventoryItem(requestContext(c), userID, body.GroupID, services.CreateInventoryItemInput{
		Name:      body.Name,
		Quantity:  body.Quantity,
		Unit:      body.Unit,
		Category:  body.Category,
		ExpiresAt: body.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, item)
}

// ListInventory returns the group's pantry.
func (h *KitchenHandler) ListInventory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := requiredGroupID(c)
	if !ok {
		return
	}

	items, err := h.kitchen.ListInventory(requestContext(c), userID, groupID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// UpdateInventoryItem modifies a pantry item.
func (h *KitchenHandler) UpdateInventoryItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updateInventoryItemRequest
	if !bindAndValidate(c, &body) {
		return
	}

	item, err := h.kitchen.UpdateInventoryItem(requestContext(c), userID, c.Param("itemID"), services.UpdateInventoryItemInput{
		Name:      body.Name,
		Quantity:  body.Quantity,
		Unit:      body.Unit,
		Category:  body.Category,
		ExpiresAt: body.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// DeleteInventoryItem removes a pantry item.
func (h *KitchenHandler) DeleteInventoryItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.kitchen.DeleteInventoryItem(requestContext(c), userID, c.Param("itemID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AnalyzeInventoryPhotos runs AI detection over a batch of pantry photos and
// inserts recognised items. Failures are reported per image.
func (h *KitchenHandler) AnalyzeInventoryPhotos(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body analyzePhotosRequest
	if !bindAndValidate(c, &body) {
		return
	}

	images := make([]ai.Image, 0, len(body.Images))
	for _, payload := range body.Images {
		image, err := decodeImagePayload(payload)
		if err != nil {
			response.Error(c, err)
			return
		}
		images = append(images, image)
	}

	results, err := h.kitchen.AnalyzeInventoryPhotos(requestContext(c), userID, body.GroupID, images)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// AddGroceryItem appends to the shopping list.
func (h *KitchenHandler) AddGroceryItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createGroceryItemRequest
	if !bindAndValidate(c, &body) {
		return
	}

	item, err := h.kitchen.AddGroceryItem(requestContext(c), userID, body.GroupID, services.CreateGroceryItemInput{
		Name:     body.Name,
		Quantity: body.Quantity,
		Unit:     body.Unit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, item)
}

// ListGroceries returns the group's shopping list.
func (h *KitchenHandler) ListGroceries(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := requiredGroupID(c)
	if !ok {
		return
	}

	items, err := h.kitchen.ListGroceries(requestContext(c), userID, groupID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// ToggleGroceryItem flips an item's checked state.
func (h *KitchenHandler) ToggleGroceryItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	item, err := h.kitchen.ToggleGroceryItem(requestContext(c), userID, c.Param("itemID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// DeleteGroceryItem removes a shopping-list entry.
func (h *KitchenHandler) DeleteGroceryItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.kitchen.DeleteGroceryItem(requestContext(c), userID, c.Param("itemID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// CreateRecipe stores a recipe with its ingredient lines.
func (h *KitchenHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createRecipeRequest
	if !bindAndValidate(c, &body) {
		return
	}

	ingredients := make([]ai.IngredientDraft, 0, len(body.Ingredients))
	for _, line := range body.Ingredients {
		ingredients = append(ingredients, ai.IngredientDraft{
			Name:     line.Name,
			Quantity: line.Quantity,
			Unit:     line.Unit,
		})
	}

	recipe, err := h.kitchen.CreateRecipe(requestContext(c), userID, body.GroupID, services.CreateRecipeInput{
		Title:        body.Title,
		Instructions: body.Instructions,
		Servings:     body.Servings,
		PrepMinutes:  body.PrepMinutes,
		Ingredients:  ingredients,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, recipe)
}

// GenerateRecipe asks the AI backend for a recipe based on the pantry.
func (h *KitchenHandler) GenerateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body generateRecipeRequest
	if !bindAndValidate(c, &body) {
		return
	}

	recipe, err := h.kitchen.GenerateRecipe(requestContext(c), userID, body.GroupID, body.Servings, body.Preferences)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, recipe)
}

// ListRecipes returns the group's recipes.
func (h *KitchenHandler) ListRecipes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := requiredGroupID(c)
	if !ok {
		return
	}

	recipes, err := h.kitchen.ListRecipes(requestContext(c), userID, groupID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, recipes)
}

// GetRecipe returns a recipe with its ingredients.
func (h *KitchenHandler) GetRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipe, err := h.kitchen.GetRecipe(requestContext(c), userID, c.Param("recipeID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, recipe)
}

// DeleteRecipe removes a recipe and its ingredients.
func (h *KitchenHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.kitchen.DeleteRecipe(requestContext(c), userID, c.Param("recipeID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// CreateMealPlan stores a meal plan with nested meals.
func (h *KitchenHandler) CreateMealPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createMealPlanRequest
	if !bindAndValidate(c, &body) {
		return
	}

	meals := make([]ai.MealDraft, 0, len(body.Meals))
	for _, meal := range body.Meals {
		ingredients := make([]ai.IngredientDraft, 0, len(meal.Ingredients))
		for _, name := range meal.Ingredients {
			ingredients = append(ingredients, ai.IngredientDraft{Name: name})
		}
		meals = append(meals, ai.MealDraft{
			Name:        meal.Name,
			Slot:        meal.Slot,
			Day:         meal.Day,
			Ingredients: ingredients,
		})
	}

	plan, err := h.kitchen.CreateMealPlan(requestContext(c), userID, body.GroupID, services.CreateMealPlanInput{
		Title:    body.Title,
		StartsOn: body.StartsOn,
		EndsOn:   body.EndsOn,
		Meals:    meals,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, plan)
}

// GenerateMealPlan asks the AI backend to plan meals from the pantry.
func (h *KitchenHandler) GenerateMealPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body generateMealPlanRequest
	if !bindAndValidate(c, &body) {
		return
	}

	var startsOn time.Time
	if body.StartsOn != nil {
		startsOn = *body.StartsOn
	}

	plan, err := h.kitchen.GenerateMealPlan(requestContext(c), userID, body.GroupID, startsOn, body.Days, body.Preferences)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, plan)
}

// ListMealPlans returns the group's meal plans with nested meals.
func (h *KitchenHandler) ListMealPlans(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := requiredGroupID(c)
	if !ok {
		return
	}

	plans, err := h.kitchen.ListMealPlans(requestContext(c), userID, groupID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, plans)
}
