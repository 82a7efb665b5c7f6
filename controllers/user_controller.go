package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/cppla/luntan/middleware"
	"github.com/cppla/luntan/services"
	"github.com/cppla/luntan/utils"
)

type toggleFunc func(ctx context.Context, actorID, targetID uint) (bool, error)

// UserController serves public profiles and the follow graph.
type UserController struct {
	users     *services.UserService
	posts     *services.PostService
	relations *services.RelationService
}

func NewUserController(users *services.UserService, posts *services.PostService, relations *services.RelationService) *UserController {
	return &UserController{users: users, posts: posts, relations: relations}
}

func (u *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	user, err := u.users.GetUser(ctx.Request.Context(), id, middleware.ViewerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

func (u *UserController) GetUserByUsername(ctx *gin.Context) {
	user, err := u.users.GetUserByUsername(ctx.Request.Context(), ctx.Param("username"), middleware.ViewerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// ListPosts returns every post of the user, newest first.
func (u *UserController) ListPosts(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	posts, err := u.posts.ListPostsByOwner(ctx.Request.Context(), id, middleware.ViewerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

func (u *UserController) Followers(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	users, err := u.users.Followers(ctx.Request.Context(), id, middleware.ViewerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": users})
}

func (u *UserController) Following(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	users, err := u.users.Following(ctx.Request.Context(), id, middleware.ViewerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": users})
}

// Collections lists the posts the user bookmarked.
func (u *UserController) Collections(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	posts, err := u.posts.ListCollected(ctx.Request.Context(), id, middleware.ViewerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// ToggleFollow follows or unfollows the user for the caller.
func (u *UserController) ToggleFollow(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	present, err := u.relations.ToggleFollow(ctx.Request.Context(), middleware.ViewerID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"is_following": present})
}
