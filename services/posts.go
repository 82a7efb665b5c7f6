package services

import (
	"context"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/cppla/luntan/apperror"
	"github.com/cppla/luntan/models"
	"github.com/cppla/luntan/store"
	"github.com/cppla/luntan/utils"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100

	maxTitleLen   = 255
	maxCategory   = 32
	maxTagsLen    = 255
	maxCommentLen = 5000
)

// ListPostsInput selects a page of the global feed.
type ListPostsInput struct {
	Skip     int
	Limit    int
	Category string
	ViewerID uint
}

// CreatePostInput carries the author-supplied fields of a new post.
type CreatePostInput struct {
	Title      string
	Content    string
	ImageURL   string
	Category   string
	Tags       string
	IsOriginal bool
}

// PostService answers post queries and applies the view-count side effect.
type PostService struct {
	store    *store.Store
	enricher *Enricher
	logger   *zap.Logger
}

func NewPostService(st *store.Store, enricher *Enricher, logger *zap.Logger) *PostService {
	return &PostService{store: st, enricher: enricher, logger: logger}
}

// NormalizePage clamps offset/limit to the accepted range.
func NormalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}

// ListPosts returns pinned posts first, then newest first.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]models.PostView, error) {
	skip, limit := NormalizePage(in.Skip, in.Limit)
	posts, err := s.store.ListPosts(ctx, store.PostFilter{
		Skip:     skip,
		Limit:    limit,
		Category: normalizeCategory(in.Category),
	})
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichPosts(ctx, posts, in.ViewerID)
}

// ListPostsByOwner returns all of one user's posts, newest first.
func (s *PostService) ListPostsByOwner(ctx context.Context, ownerID, viewerID uint) ([]models.PostView, error) {
	if _, err := s.store.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}
	posts, err := s.store.ListPostsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichPosts(ctx, posts, viewerID)
}

// GetPost counts a view, then returns the post as it is after the increment.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (models.PostView, error) {
	if err := s.store.IncrementViews(ctx, postID); err != nil {
		return models.PostView{}, err
	}
	PostViews.Inc()

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return models.PostView{}, err
	}
	return s.enricher.EnrichPost(ctx, post, viewerID)
}

// FindPost loads a post without counting a view.
func (s *PostService) FindPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.store.GetPost(ctx, postID)
}

// DeletePost removes the post with its comments, likes and collects.
// Callers check ownership first.
func (s *PostService) DeletePost(ctx context.Context, postID uint) (bool, error) {
	deleted, err := s.store.DeletePost(ctx, postID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("post deleted", zap.Uint("post_id", postID))
	}
	return deleted, nil
}

// normalizeCategory strips markup but keeps the text unescaped, so a filter
// value matches exactly what was stored for it.
func normalizeCategory(raw string) string {
	return html.UnescapeString(utils.SanitizeText(raw))
}

// CreatePost stores a new post owned by ownerID.
func (s *PostService) CreatePost(ctx context.Context, ownerID uint, in CreatePostInput) (models.PostView, error) {
	post := models.Post{
		OwnerID:    ownerID,
		Title:      utils.SanitizeText(in.Title),
		Content:    strings.TrimSpace(utils.Sanitize(in.Content)),
		ImageURL:   strings.TrimSpace(in.ImageURL),
		Category:   normalizeCategory(in.Category),
		Tags:       utils.SanitizeText(in.Tags),
		IsOriginal: in.IsOriginal,
	}
	switch {
	case post.Title == "":
		return models.PostView{}, apperror.Validation("title is required")
	case post.Content == "":
		return models.PostView{}, apperror.Validation("content is required")
	case len(post.Title) > maxTitleLen:
		return models.PostView{}, apperror.Validation("title is too long")
	case len(post.Category) > maxCategory:
		return models.PostView{}, apperror.Validation("category is too long")
	case len(post.Tags) > maxTagsLen:
		return models.PostView{}, apperror.Validation("tags are too long")
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.GetUser(ctx, ownerID); err != nil {
			return err
		}
		return tx.CreatePost(ctx, &post)
	})
	if err != nil {
		return models.PostView{}, err
	}
	s.logger.Info("post created", zap.Uint("post_id", post.ID), zap.Uint("owner_id", ownerID))
	return s.enricher.EnrichPost(ctx, &post, ownerID)
}

// CreateComment adds a flat comment to an existing post.
func (s *PostService) CreateComment(ctx context.Context, postID, ownerID uint, content string) (models.CommentView, error) {
	comment := models.Comment{
		PostID:  postID,
		OwnerID: ownerID,
		Content: strings.TrimSpace(utils.Sanitize(content)),
	}
	if comment.Content == "" {
		return models.CommentView{}, apperror.Validation("content is required")
	}
	if len(comment.Content) > maxCommentLen {
		return models.CommentView{}, apperror.Validation("comment is too long")
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.GetPost(ctx, postID); err != nil {
			return err
		}
		if _, err := tx.GetUser(ctx, ownerID); err != nil {
			return err
		}
		return tx.CreateComment(ctx, &comment)
	})
	if err != nil {
		return models.CommentView{}, err
	}
	views, err := s.enricher.EnrichComments(ctx, []models.Comment{comment})
	if err != nil {
		return models.CommentView{}, err
	}
	return views[0], nil
}

// ListComments returns a post's comments oldest first.
func (s *PostService) ListComments(ctx context.Context, postID uint, skip, limit int) ([]models.CommentView, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	skip, limit = NormalizePage(skip, limit)
	comments, err := s.store.ListComments(ctx, postID, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichComments(ctx, comments)
}

// ListCollected returns the posts userID has bookmarked, newest first.
func (s *PostService) ListCollected(ctx context.Context, userID, viewerID uint) ([]models.PostView, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.store.TargetsOf(ctx, store.RelationCollect, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.ListPostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichPosts(ctx, posts, viewerID)
}
