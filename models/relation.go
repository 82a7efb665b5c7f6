package models

// Follow is a directed (follower, followed) pair.
type Follow struct {
	FollowerID uint `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint `gorm:"primaryKey;autoIncrement:false;index" json:"followed_id"`
}

func (Follow) TableName() string { return "follows" }

// PostLike records that a user liked a post.
type PostLike struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID uint `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
}

func (PostLike) TableName() string { return "post_likes" }

// PostCollect records that a user bookmarked a post.
type PostCollect struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID uint `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
}

func (PostCollect) TableName() string { return "post_collects" }

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{}, &Post{}, &Comment{}, &Follow{}, &PostLike{}, &PostCollect{},
	}
}
