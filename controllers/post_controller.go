package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/luntan/apperror"
	"github.com/cppla/luntan/middleware"
	"github.com/cppla/luntan/services"
	"github.com/cppla/luntan/utils"
)

// PostController manages posts, their comments and the like/collect toggles.
type PostController struct {
	posts     *services.PostService
	relations *services.RelationService
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostService, relations *services.RelationService) *PostController {
	return &PostController{posts: posts, relations: relations}
}

// ListPosts returns the feed, pinned posts first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	skip, limit := services.NormalizePage(parsePage(ctx))
	posts, err := p.posts.ListPosts(ctx.Request.Context(), services.ListPostsInput{
		Skip:     skip,
		Limit:    limit,
		Category: ctx.Query("category"),
		ViewerID: middleware.ViewerID(ctx),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.List(ctx, posts, skip, limit)
}

// GetPost returns one post and counts the view.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	post, err := p.posts.GetPost(ctx.Request.Context(), id, middleware.ViewerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// CreatePost allows authenticated users to create new posts.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title      string `json:"title" binding:"required"`
		Content    string `json:"content" binding:"required"`
		ImageURL   string `json:"image_url"`
		Category   string `json:"category"`
		Tags       string `json:"tags"`
		IsOriginal bool   `json:"is_original"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	post, err := p.posts.CreatePost(ctx.Request.Context(), middleware.ViewerID(ctx), services.CreatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		Category:   req.Category,
		Tags:       req.Tags,
		IsOriginal: req.IsOriginal,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, post)
}

// DeletePost allows the author or a superuser to delete a post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	post, err := p.posts.FindPost(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if post.OwnerID != middleware.ViewerID(ctx) && !middleware.IsSuperuser(ctx) {
		respondError(ctx, apperror.Forbidden("you can only delete your own posts"))
		return
	}

	deleted, err := p.posts.DeletePost(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !deleted {
		respondError(ctx, apperror.NotFound("post", id))
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// ToggleLike likes or unlikes the post for the caller.
func (p *PostController) ToggleLike(ctx *gin.Context) {
	p.toggle(ctx, p.relations.ToggleLike, "is_liked")
}

// ToggleCollect bookmarks or un-bookmarks the post for the caller.
func (p *PostController) ToggleCollect(ctx *gin.Context) {
	p.toggle(ctx, p.relations.ToggleCollect, "is_collected")
}

func (p *PostController) toggle(ctx *gin.Context, fn toggleFunc, field string) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	present, err := fn(ctx.Request.Context(), middleware.ViewerID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{field: present})
}

// ListComments returns the comments of a post, oldest first.
func (p *PostController) ListComments(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	skip, limit := services.NormalizePage(parsePage(ctx))
	comments, err := p.posts.ListComments(ctx.Request.Context(), id, skip, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.List(ctx, comments, skip, limit)
}

// CreateComment adds a comment by the caller.
func (p *PostController) CreateComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	comment, err := p.posts.CreateComment(ctx.Request.Context(), id, middleware.ViewerID(ctx), req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, comment)
}
