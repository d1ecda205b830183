package models

import (
	"time"
)

type Post struct {
	ID      uint     `gorm:"primaryKey" json:"id"`
	UserID  uint     `gorm:"not null;index" json:"user_id"`
	User    User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title   string   `gorm:"size:100;not null" json:"title"`
	Content string   `gorm:"type:text;not null" json:"content"`
	Section string   `gorm:"size:20;not null;default:'';index" json:"section"`
	Price   *float64 `json:"price"` // only set for listings
	Views   int      `gorm:"not null;default:0" json:"views"`

	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments"`
	Images   []Image   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsListing reports whether the post belongs to the marketplace.
func (p *Post) IsListing() bool {
	return IsMarketplace(p.Section)
}

// HasPrice is used by templates to avoid dereferencing a nil price.
func (p *Post) HasPrice() bool {
	return p.Price != nil
}

// PriceValue returns the price or zero.
func (p *Post) PriceValue() float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}
