// Package ai talks to the vision/text model backing plant identification,
// kitchen photo analysis, and recipe/meal-plan generation.
package ai

import "context"

// Image is a raw picture handed to the model.
type Image struct {
	MIMEType string
	Data     []byte
}

// PlantIdentification is the model's answer for a single plant photo.
type PlantIdentification struct {
	Species              string  `json:"species"`
	CommonName           string  `json:"commonName"`
	WateringIntervalDays int     `json:"wateringIntervalDays"`
	Confidence           float64 `json:"confidence"`
}

// DetectedItem is one food item recognised in an inventory photo.
type DetectedItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

// RecipeRequest describes what the generated recipe should work with.
type RecipeRequest struct {
	Ingredients []string
	Servings    int
	Preferences string
}

// RecipeDraft is a generated recipe before persistence.
type RecipeDraft struct {
	Title        string            `json:"title"`
	Instructions string            `json:"instructions"`
	Servings     int               `json:"servings"`
	PrepMinutes  int               `json:"prepMinutes"`
	Ingredients  []IngredientDraft `json:"ingredients"`
}

// IngredientDraft is a single generated ingredient line.
type IngredientDraft struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// MealPlanRequest describes the window and constraints of a generated plan.
type MealPlanRequest struct {
	Days        int
	Ingredients []string
	Preferences string
}

// MealPlanDraft is a generated meal plan before persistence.
type MealPlanDraft struct {
	Title string      `json:"title"`
	Meals []MealDraft `json:"meals"`
}

// MealDraft is one generated meal. Day is an offset from the plan start.
type MealDraft struct {
	Name        string            `json:"name"`
	Slot        string            `json:"slot"`
	Day         int               `json:"day"`
	Ingredients []IngredientDraft `json:"ingredients"`
}

// Client is the model-facing surface the kitchen and plants modules consume.
type Client interface {
	IdentifyPlant(ctx context.Context, image Image) (*PlantIdentification, error)
	AnalyzeFoodImage(ctx context.Context, image Image) ([]DetectedItem, error)
	GenerateRecipe(ctx context.Context, req RecipeRequest) (*RecipeDraft, error)
	GenerateMealPlan(ctx context.Context, req MealPlanRequest) (*MealPlanDraft, error)
}
