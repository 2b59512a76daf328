package models

import "time"

// Invitation statuses. pending -> accepted and pending -> expired are the
// only transitions; both targets are terminal. The expired transition happens
// lazily on the first lookup past the expiry instant, never via a background
// sweep.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)

// Invitation is a time-limited, single-use credential inviting an email
// address into a group. It is addressable by either the long-form token
// (stored hashed) or the human-readable short code (stored plain, unique at
// the storage level so concurrent creation cannot race past the pre-check).
type Invitation struct {
	BaseModel

	GroupID   string `gorm:"type:uuid;not null;index" json:"groupId"`
	Email     string `gorm:"not null;index" json:"email"`
	TokenHash string `gorm:"not null;index" json:"-"`
	ShortCode string `gorm:"not null;uniqueIndex" json:"shortCode"`
	InvitedBy string `gorm:"type:uuid;not null" json:"invitedBy"`

	Status     string     `gorm:"not null;default:pending;index" json:"status"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expiresAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`

	Group *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// Terminal reports whether the invitation can no longer be redeemed.
func (i *Invitation) Terminal() bool {
	return i != nil && i.Status != InvitationPending
}
