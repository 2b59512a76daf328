package models

// WishlistItem is a wishlist-module entry.
type WishlistItem struct {
	BaseModel
	Ownership

	Title     string  `gorm:"not null" json:"title"`
	URL       string  `json:"url,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Priority  int     `gorm:"not null;default:0" json:"priority"`
	Purchased bool    `gorm:"not null;default:false" json:"purchased"`
	CreatedBy string  `gorm:"type:uuid;not null" json:"createdBy"`
}
