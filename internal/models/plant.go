package models

import "time"

// Plant is a plants-module record. Species may come from manual entry or
// from the photo identification flow, flagged via AIIdentified.
type Plant struct {
	BaseModel
	Ownership

	Name                 string     `gorm:"not null" json:"name"`
	Species              string     `json:"species,omitempty"`
	Location             string     `json:"location,omitempty"`
	WateringIntervalDays int        `json:"wateringIntervalDays"`
	LastWateredAt        *time.Time `json:"lastWateredAt,omitempty"`
	PhotoURL             string     `json:"photoUrl,omitempty"`
	AIIdentified         bool       `gorm:"not null;default:false" json:"aiIdentified"`
	CreatedBy            string     `gorm:"type:uuid;not null" json:"createdBy"`
}
