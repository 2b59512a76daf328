package models

import "time"

// Todo is a todos-module task. Completion is a toggle: flipping it twice
// restores both the flag and the null-ness of CompletedAt.
type Todo struct {
	BaseModel
	Ownership

	Title       string     `gorm:"not null" json:"title"`
	Notes       string     `json:"notes,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedBy   string     `gorm:"type:uuid;not null" json:"createdBy"`
}
