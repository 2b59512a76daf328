package models

// Note is a notepad-module entry.
type Note struct {
	BaseModel
	Ownership

	Title     string `gorm:"not null" json:"title"`
	Body      string `json:"body,omitempty"`
	Pinned    bool   `gorm:"not null;default:false" json:"pinned"`
	CreatedBy string `gorm:"type:uuid;not null" json:"createdBy"`
}
