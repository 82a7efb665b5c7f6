package controllers

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/luntan/middleware"
	"github.com/cppla/luntan/services"
	"github.com/cppla/luntan/utils"
)

// ImageStore persists an uploaded image and returns its public reference.
type ImageStore interface {
	SaveImage(header *multipart.FileHeader) (string, error)
}

// AuthController handles registration, login and the caller's own account.
type AuthController struct {
	users     *services.UserService
	blacklist *utils.TokenBlacklist
	images    ImageStore
	secret    string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewAuthController creates an AuthController.
func NewAuthController(users *services.UserService, blacklist *utils.TokenBlacklist, images ImageStore, secret string, tokenTTL time.Duration, logger *zap.Logger) *AuthController {
	return &AuthController{
		users:     users,
		blacklist: blacklist,
		images:    images,
		secret:    secret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Register creates a local account.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}

	user, err := a.users.Register(ctx.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, user)
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.users.Authenticate(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	token, err := utils.GenerateToken(a.secret, user.ID, user.Username, a.tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	view, err := a.users.GetUser(ctx.Request.Context(), user.ID, user.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         view,
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	token, expiresAt, ok := middleware.BearerToken(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(a.tokenTTL)
	}
	if err := a.blacklist.Revoke(ctx.Request.Context(), token, expiresAt); err != nil {
		a.logger.Warn("token revoke failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to revoke token")
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	id := middleware.ViewerID(ctx)
	user, err := a.users.GetUser(ctx.Request.Context(), id, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// UpdateProfile changes only the fields present in the request body.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	var req struct {
		Email    *string `json:"email"`
		Bio      *string `json:"bio"`
		Gender   *string `json:"gender"`
		Location *string `json:"location"`
		Website  *string `json:"website"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	user, err := a.users.UpdateProfile(ctx.Request.Context(), middleware.ViewerID(ctx), services.ProfileInput{
		Email:    req.Email,
		Bio:      req.Bio,
		Gender:   req.Gender,
		Location: req.Location,
		Website:  req.Website,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// UploadAvatar stores an image and makes it the caller's avatar.
func (a *AuthController) UploadAvatar(ctx *gin.Context) {
	ref, ok := saveUpload(ctx, a.images)
	if !ok {
		return
	}
	user, err := a.users.UpdateAvatar(ctx.Request.Context(), middleware.ViewerID(ctx), ref)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// ListUsers is the superuser account listing.
func (a *AuthController) ListUsers(ctx *gin.Context) {
	skip, limit := parsePage(ctx)
	skip, limit = services.NormalizePage(skip, limit)
	users, err := a.users.ListUsers(ctx.Request.Context(), skip, limit, middleware.ViewerID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.List(ctx, users, skip, limit)
}
