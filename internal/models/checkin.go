package models

// CheckIn is a lightweight "how is everyone doing" entry shared with a group.
type CheckIn struct {
	BaseModel

	GroupID string `gorm:"type:uuid;not null;index" json:"groupId"`
	UserID  string `gorm:"type:uuid;not null;index" json:"userId"`

	Mood string `gorm:"not null" json:"mood"`
	Note string `json:"note,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
