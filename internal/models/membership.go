package models

// Membership roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Membership ties a user to a group with a role and an active flag. Rows are
// deactivated rather than deleted so history survives; an active row for
// (user, group) is the sole authorization predicate used by the access
// gateway.
type Membership struct {
	BaseModel

	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_group" json:"userId"`
	GroupID string `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_group;index" json:"groupId"`

	Role     string `gorm:"not null;default:member" json:"role"`
	IsActive bool   `gorm:"not null;default:true" json:"isActive"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// IsAdmin reports whether the membership carries the admin role.
func (m *Membership) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}
