package database

import (
	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Membership{},
		&models.Invitation{},
		&models.AuditLog{},
		&models.CalendarEvent{},
		&models.Todo{},
		&models.CheckIn{},
		&models.Goal{},
		&models.Plant{},
		&models.InventoryItem{},
		&models.GroceryItem{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.MealPlan{},
		&models.Meal{},
		&models.MealIngredient{},
		&models.Note{},
		&models.WishlistItem{},
		&models.ChatMessage{},
		&models.MediaObject{},
	)
}
