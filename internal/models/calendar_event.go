package models

import "time"

// CalendarEvent is a calendar-module entry, shared with a group or private
// to the creating user.
type CalendarEvent struct {
	BaseModel
	Ownership

	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	StartsAt    time.Time `gorm:"not null;index" json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	AllDay      bool      `json:"allDay"`
	Color       string    `json:"color,omitempty"`
	CreatedBy   string    `gorm:"type:uuid;not null" json:"createdBy"`
}
