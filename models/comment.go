package models

import "time"

// Comment is a flat reply to a post, listed oldest first.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index:idx_comments_post_created,priority:1" json:"post_id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_comments_post_created,priority:2" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }
