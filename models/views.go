package models

import "time"

// UserView is a User decorated with viewer-relative fields. It is never persisted.
type UserView struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	AvatarURL      *string   `json:"avatar_url"`
	IsActive       bool      `json:"is_active"`
	IsSuperuser    bool      `json:"is_superuser"`
	Bio            string    `json:"bio"`
	Gender         string    `json:"gender"`
	Location       string    `json:"location"`
	Website        string    `json:"website"`
	CreatedAt      time.Time `json:"created_at"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	IsFollowing    bool      `json:"is_following"`
}

// PostView is a Post decorated with owner info, counts and viewer-relative flags.
type PostView struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	OwnerID       uint      `json:"owner_id"`
	Views         uint      `json:"views"`
	Category      string    `json:"category"`
	Tags          string    `json:"tags"`
	IsPinned      bool      `json:"is_pinned"`
	IsOriginal    bool      `json:"is_original"`
	OwnerUsername string    `json:"owner_username"`
	OwnerAvatar   *string   `json:"owner_avatar"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	IsLiked       bool      `json:"is_liked"`
	IsCollected   bool      `json:"is_collected"`
}

// CommentView is a Comment with its author's display fields.
type CommentView struct {
	ID            uint      `json:"id"`
	PostID        uint      `json:"post_id"`
	OwnerID       uint      `json:"owner_id"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	OwnerUsername string    `json:"owner_username"`
	OwnerAvatar   *string   `json:"owner_avatar"`
}

// OptionalString maps the empty string to nil so optional references render as null.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
