package models

import "time"

// InventoryItem is a kitchen-module pantry record.
type InventoryItem struct {
	BaseModel

	GroupID   string     `gorm:"type:uuid;not null;index" json:"groupId"`
	Name      string     `gorm:"not null" json:"name"`
	Quantity  float64    `gorm:"not null;default:1" json:"quantity"`
	Unit      string     `json:"unit,omitempty"`
	Category  string     `gorm:"index" json:"category,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	AddedBy   string     `gorm:"type:uuid;not null" json:"addedBy"`
}

// GroceryItem is a shared shopping-list entry.
type GroceryItem struct {
	BaseModel

	GroupID   string  `gorm:"type:uuid;not null;index" json:"groupId"`
	Name      string  `gorm:"not null" json:"name"`
	Quantity  float64 `gorm:"not null;default:1" json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
	Purchased bool    `gorm:"not null;default:false" json:"purchased"`
	AddedBy   string  `gorm:"type:uuid;not null" json:"addedBy"`
}

// Recipe and its ingredients are created inside one transaction so a failed
// ingredient insert never leaves an orphaned recipe row behind.
type Recipe struct {
	BaseModel

	GroupID      string `gorm:"type:uuid;not null;index" json:"groupId"`
	Title        string `gorm:"not null" json:"title"`
	Instructions string `json:"instructions,omitempty"`
	Servings     int    `gorm:"not null;default:2" json:"servings"`
	PrepMinutes  int    `json:"prepMinutes,omitempty"`
	AIGenerated  bool   `gorm:"not null;default:false" json:"aiGenerated"`
	CreatedBy    string `gorm:"type:uuid;not null" json:"createdBy"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
}

// RecipeIngredient is a single line of a recipe.
type RecipeIngredient struct {
	BaseModel

	RecipeID string  `gorm:"type:uuid;not null;index" json:"recipeId"`
	Name     string  `gorm:"not null" json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

// MealPlan groups meals for a date range. The plan, its meals, and their
// ingredients are written in a single transaction.
type MealPlan struct {
	BaseModel

	GroupID     string    `gorm:"type:uuid;not null;index" json:"groupId"`
	Title       string    `gorm:"not null" json:"title"`
	StartsOn    time.Time `gorm:"not null" json:"startsOn"`
	EndsOn      time.Time `gorm:"not null" json:"endsOn"`
	AIGenerated bool      `gorm:"not null;default:false" json:"aiGenerated"`
	CreatedBy   string    `gorm:"type:uuid;not null" json:"createdBy"`

	Meals []Meal `gorm:"foreignKey:MealPlanID;constraint:OnDelete:CASCADE" json:"meals,omitempty"`
}

// Meal is a single planned meal inside a plan.
type Meal struct {
	BaseModel

	MealPlanID string    `gorm:"type:uuid;not null;index" json:"mealPlanId"`
	Name       string    `gorm:"not null" json:"name"`
	Slot       string    `gorm:"not null" json:"slot"` // breakfast|lunch|dinner|snack
	Day        time.Time `gorm:"not null" json:"day"`

	Ingredients []MealIngredient `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
}

// MealIngredient is a single ingredient of a planned meal.
type MealIngredient struct {
	BaseModel

	MealID   string  `gorm:"type:uuid;not null;index" json:"mealId"`
	Name     string  `gorm:"not null" json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}
