package models

// ChatMessage is a group-scoped chat entry. Delivery is poll-based REST;
// there is no realtime transport layer.
type ChatMessage struct {
	BaseModel

	GroupID string `gorm:"type:uuid;not null;index" json:"groupId"`
	UserID  string `gorm:"type:uuid;not null;index" json:"userId"`
	Body    string `gorm:"not null" json:"body"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
