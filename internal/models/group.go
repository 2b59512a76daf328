package models

import "gorm.io/datatypes"

// Group privacy settings.
const (
	GroupPrivacyPrivate = "private"
	GroupPrivacyPublic  = "public"
)

// Group is a household/family tenant: the unit of shared-data scoping.
type Group struct {
	BaseModel

	Name      string `gorm:"not null" json:"name"`
	Privacy   string `gorm:"not null;default:private" json:"privacy"`
	CreatedBy string `gorm:"type:uuid;not null;index" json:"createdBy"`

	EnabledModules datatypes.JSON `json:"-"`

	Memberships []Membership `gorm:"foreignKey:GroupID" json:"memberships,omitempty"`
	Invitations []Invitation `gorm:"foreignKey:GroupID" json:"-"`
}
