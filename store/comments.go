package store

import (
	"context"
	"fmt"

	"github.com/cppla/luntan/models"
)

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListComments returns a post's comments oldest first.
func (s *Store) ListComments(ctx context.Context, postID uint, skip, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	q := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Order("id ASC")
	if err := paginate(q, skip, limit).Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return comments, nil
}

// CountComments counts comments on one post, or every comment when postID is 0.
func (s *Store) CountComments(ctx context.Context, postID uint) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&models.Comment{})
	if postID != 0 {
		q = q.Where("post_id = ?", postID)
	}
	err := q.Count(&n).Error
	return n, err
}

// CountCommentsByPosts counts comments for each of postIDs in one query.
func (s *Store) CountCommentsByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return s.groupCount(ctx, &models.Comment{}, "post_id", postIDs)
}
