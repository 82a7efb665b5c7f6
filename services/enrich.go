package services

import (
	"context"

	"github.com/cppla/luntan/models"
	"github.com/cppla/luntan/store"
	"github.com/cppla/luntan/utils"
)

// UnknownOwner is shown when a post's owner row cannot be resolved.
const UnknownOwner = "Unknown"

// Enricher builds viewer-relative views of users, posts and comments.
// A viewerID of 0 means anonymous; every viewer flag is then false.
// Nothing it computes is written back.
type Enricher struct {
	store *store.Store
}

func NewEnricher(st *store.Store) *Enricher {
	return &Enricher{store: st}
}

// EnrichUser adds follower/following counts and whether viewerID follows the user.
func (e *Enricher) EnrichUser(ctx context.Context, user *models.User, viewerID uint) (models.UserView, error) {
	views, err := e.EnrichUsers(ctx, []models.User{*user}, viewerID)
	if err != nil {
		return models.UserView{}, err
	}
	return views[0], nil
}

// EnrichUsers is the batched form of EnrichUser.
func (e *Enricher) EnrichUsers(ctx context.Context, users []models.User, viewerID uint) ([]models.UserView, error) {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	followers, err := e.store.CountByTargets(ctx, store.RelationFollow, ids)
	if err != nil {
		return nil, err
	}
	following, err := e.store.CountByActors(ctx, store.RelationFollow, ids)
	if err != nil {
		return nil, err
	}
	followed := map[uint]bool{}
	if viewerID != 0 {
		if followed, err = e.store.ActorTargets(ctx, store.RelationFollow, viewerID, ids); err != nil {
			return nil, err
		}
	}

	out := make([]models.UserView, len(users))
	for i, u := range users {
		out[i] = models.UserView{
			ID:             u.ID,
			Username:       u.Username,
			Email:          u.Email,
			AvatarURL:      models.OptionalString(u.AvatarURL),
			IsActive:       u.IsActive,
			IsSuperuser:    u.IsSuperuser,
			Bio:            u.Bio,
			Gender:         u.Gender,
			Location:       u.Location,
			Website:        u.Website,
			CreatedAt:      u.CreatedAt,
			FollowersCount: followers[u.ID],
			FollowingCount: following[u.ID],
			IsFollowing:    followed[u.ID],
		}
	}
	return out, nil
}

// EnrichPost adds owner display fields, like/comment counts and the viewer's like/collect flags.
func (e *Enricher) EnrichPost(ctx context.Context, post *models.Post, viewerID uint) (models.PostView, error) {
	views, err := e.EnrichPosts(ctx, []models.Post{*post}, viewerID)
	if err != nil {
		return models.PostView{}, err
	}
	return views[0], nil
}

// EnrichPosts enriches a list with a fixed number of queries regardless of its length.
// Each element equals what EnrichPost would return for it.
func (e *Enricher) EnrichPosts(ctx context.Context, posts []models.Post, viewerID uint) ([]models.PostView, error) {
	if len(posts) == 0 {
		return []models.PostView{}, nil
	}
	ids := make([]uint, len(posts))
	ownerIDs := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		ownerIDs[i] = p.OwnerID
	}

	owners, err := e.store.GetUsersByIDs(ctx, utils.UniqueUint(ownerIDs))
	if err != nil {
		return nil, err
	}
	likes, err := e.store.CountByTargets(ctx, store.RelationLike, ids)
	if err != nil {
		return nil, err
	}
	comments, err := e.store.CountCommentsByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, collected := map[uint]bool{}, map[uint]bool{}
	if viewerID != 0 {
		if liked, err = e.store.ActorTargets(ctx, store.RelationLike, viewerID, ids); err != nil {
			return nil, err
		}
		if collected, err = e.store.ActorTargets(ctx, store.RelationCollect, viewerID, ids); err != nil {
			return nil, err
		}
	}

	out := make([]models.PostView, len(posts))
	for i, p := range posts {
		v := models.PostView{
			ID:            p.ID,
			Title:         p.Title,
			Content:       p.Content,
			ImageURL:      models.OptionalString(p.ImageURL),
			CreatedAt:     p.CreatedAt,
			OwnerID:       p.OwnerID,
			Views:         p.Views,
			Category:      p.Category,
			Tags:          p.Tags,
			IsPinned:      p.IsPinned,
			IsOriginal:    p.IsOriginal,
			OwnerUsername: UnknownOwner,
			LikesCount:    likes[p.ID],
			CommentsCount: comments[p.ID],
			IsLiked:       liked[p.ID],
			IsCollected:   collected[p.ID],
		}
		if owner, ok := owners[p.OwnerID]; ok {
			v.OwnerUsername = owner.Username
			v.OwnerAvatar = models.OptionalString(owner.AvatarURL)
		}
		out[i] = v
	}
	return out, nil
}

// EnrichComments attaches author username and avatar to each comment.
func (e *Enricher) EnrichComments(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	ownerIDs := make([]uint, len(comments))
	for i, c := range comments {
		ownerIDs[i] = c.OwnerID
	}
	owners, err := e.store.GetUsersByIDs(ctx, utils.UniqueUint(ownerIDs))
	if err != nil {
		return nil, err
	}

	out := make([]models.CommentView, len(comments))
	for i, c := range comments {
		v := models.CommentView{
			ID:            c.ID,
			PostID:        c.PostID,
			OwnerID:       c.OwnerID,
			Content:       c.Content,
			CreatedAt:     c.CreatedAt,
			OwnerUsername: UnknownOwner,
		}
		if owner, ok := owners[c.OwnerID]; ok {
			v.OwnerUsername = owner.Username
			v.OwnerAvatar = models.OptionalString(owner.AvatarURL)
		}
		out[i] = v
	}
	return out, nil
}
