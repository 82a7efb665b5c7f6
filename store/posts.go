package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/luntan/apperror"
	"github.com/cppla/luntan/models"
)

// PostFilter narrows ListPosts. An empty Category matches every category.
type PostFilter struct {
	Skip     int
	Limit    int
	Category string
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, lookupErr(err, "post", id)
	}
	return &post, nil
}

// ListPosts orders pinned posts first, then newest first, before applying offset/limit.
func (s *Store) ListPosts(ctx context.Context, f PostFilter) ([]models.Post, error) {
	q := s.db.WithContext(ctx).Model(&models.Post{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var posts []models.Post
	err := paginate(q.Order("is_pinned DESC").Order("created_at DESC").Order("id DESC"), f.Skip, f.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListPostsByOwner returns every post of one owner, newest first.
func (s *Store) ListPostsByOwner(ctx context.Context, ownerID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts of user %d: %w", ownerID, err)
	}
	return posts, nil
}

// ListPostsByIDs loads the given posts, newest first.
func (s *Store) ListPostsByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// IncrementViews adds one to the view counter in a single UPDATE so concurrent
// readers never lose an increment.
func (s *Store) IncrementViews(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment views of post %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}

// DeletePost removes a post with its comments and like/collect pairs in one
// transaction. It reports false when the post does not exist.
func (s *Store) DeletePost(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := s.Transaction(ctx, func(tx *Store) error {
		db := tx.db.WithContext(ctx)
		var n int64
		if err := db.Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if err := db.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments of post %d: %w", id, err)
		}
		if err := db.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return fmt.Errorf("delete likes of post %d: %w", id, err)
		}
		if err := db.Where("post_id = ?", id).Delete(&models.PostCollect{}).Error; err != nil {
			return fmt.Errorf("delete collects of post %d: %w", id, err)
		}
		if err := db.Delete(&models.Post{}, id).Error; err != nil {
			return fmt.Errorf("delete post %d: %w", id, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *Store) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error
	return n, err
}
