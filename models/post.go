package models

import "time"

// Post represents a forum post created by a user.
// Counts and per-viewer flags are never stored here; see PostView.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OwnerID    uint      `gorm:"index;not null" json:"owner_id"`
	Title      string    `gorm:"size:255;not null;index" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	ImageURL   string    `gorm:"size:512" json:"image_url"`
	Views      uint      `gorm:"not null;default:0" json:"views"`
	Category   string    `gorm:"size:32;index" json:"category"`
	Tags       string    `gorm:"size:255" json:"tags"`
	IsPinned   bool      `gorm:"not null;index" json:"is_pinned"`
	IsOriginal bool      `gorm:"not null" json:"is_original"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
