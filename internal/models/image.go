package models

// DefaultImageSize is the size class assigned to new uploads.
const DefaultImageSize = "medium"

type Image struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	PostID       uint   `gorm:"not null;index" json:"post_id"`
	Filename     string `gorm:"size:255;not null" json:"filename"`
	DisplayOrder int    `gorm:"not null;default:0;index" json:"order"`
	Size         string `gorm:"size:20;not null;default:'medium'" json:"size"`
}
