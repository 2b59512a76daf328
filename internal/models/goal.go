package models

import "time"

// Goal statuses.
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalAbandoned = "abandoned"
)

// Goal is a goals-module record. Title, owner, type, and timeframe are
// required before any persistence is attempted.
type Goal struct {
	BaseModel
	Ownership

	Title       string     `gorm:"not null" json:"title"`
	Type        string     `gorm:"not null" json:"type"`
	Timeframe   string     `gorm:"not null" json:"timeframe"`
	Description string     `json:"description,omitempty"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
	Progress    int        `gorm:"not null;default:0" json:"progress"`
	Status      string     `gorm:"not null;default:active" json:"status"`
	CreatedBy   string     `gorm:"type:uuid;not null" json:"createdBy"`
}
