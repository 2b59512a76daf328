package models

// Scope names the two data-visibility modes.
const (
	ScopeGroup    = "group"
	ScopePersonal = "personal"
)

// Ownership marks a module resource as either group-scoped or personal,
// never both. Services reject records that set neither or both identifiers
// before any write is attempted.
type Ownership struct {
	GroupID *string `gorm:"type:uuid;index" json:"groupId,omitempty"`
	UserID  *string `gorm:"type:uuid;index" json:"userId,omitempty"`
}

// Scope returns the visibility mode, or "" when the record is malformed.
func (o Ownership) Scope() string {
	switch {
	case o.GroupID != nil && o.UserID == nil:
		return ScopeGroup
	case o.UserID != nil && o.GroupID == nil:
		return ScopePersonal
	default:
		return ""
	}
}
