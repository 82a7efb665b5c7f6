package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a forum account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	AvatarURL    string    `gorm:"size:512" json:"avatar_url"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	IsSuperuser  bool      `gorm:"not null" json:"is_superuser"`
	Bio          string    `gorm:"size:512" json:"bio"`
	Gender       string    `gorm:"size:16" json:"gender"`
	Location     string    `gorm:"size:128" json:"location"`
	Website      string    `gorm:"size:255" json:"website"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}
