package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/luntan/apperror"
	"github.com/cppla/luntan/models"
	"github.com/cppla/luntan/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextSuperuserKey marks requests made by a superuser.
	ContextSuperuserKey = "is_superuser"
	// ContextTokenKey and ContextTokenExpiryKey let logout revoke the presented token.
	ContextTokenKey       = "token"
	ContextTokenExpiryKey = "token_expiry"
)

// UserLookup resolves the account behind a token.
type UserLookup interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
}

// Authenticator validates bearer tokens against the signing secret, the
// revocation list and the current state of the account.
type Authenticator struct {
	secret    string
	blacklist *utils.TokenBlacklist
	users     UserLookup
}

func NewAuthenticator(secret string, blacklist *utils.TokenBlacklist, users UserLookup) *Authenticator {
	return &Authenticator{secret: secret, blacklist: blacklist, users: users}
}

type authFailure struct {
	status int
	code   int
	msg    string
}

func unauthorized(code int, msg string) *authFailure {
	return &authFailure{http.StatusUnauthorized, code, msg}
}

// resolve authenticates the request. The bool reports whether any credentials were presented.
func (a *Authenticator) resolve(ctx *gin.Context) (*authFailure, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return unauthorized(40101, "authorization header missing"), false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return unauthorized(40102, "invalid authorization header format"), true
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return unauthorized(40103, "empty bearer token"), true
	}

	if a.blacklist != nil && a.blacklist.IsRevoked(ctx.Request.Context(), tokenString) {
		return unauthorized(40104, "token revoked"), true
	}

	claims, err := utils.ParseToken(a.secret, tokenString)
	if err != nil {
		return unauthorized(40105, "invalid token"), true
	}

	user, err := a.users.FindUser(ctx.Request.Context(), claims.UserID)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return unauthorized(40106, "account unavailable"), true
	case err != nil:
		_ = ctx.Error(err)
		return &authFailure{http.StatusInternalServerError, 50000, "internal server error"}, true
	case !user.IsActive:
		return unauthorized(40106, "account unavailable"), true
	}

	ctx.Set(ContextUserIDKey, user.ID)
	ctx.Set(ContextUsernameKey, user.Username)
	ctx.Set(ContextSuperuserKey, user.IsSuperuser)
	ctx.Set(ContextTokenKey, tokenString)
	if claims.ExpiresAt != nil {
		ctx.Set(ContextTokenExpiryKey, claims.ExpiresAt.Time)
	}
	return nil, true
}

// AuthRequired ensures the request is authenticated via JWT.
func (a *Authenticator) AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if fail, _ := a.resolve(ctx); fail != nil {
			utils.Error(ctx, fail.status, fail.code, fail.msg)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// AuthOptional resolves the viewer when a token is sent. Requests without an
// Authorization header continue anonymously; malformed or revoked tokens are rejected.
func (a *Authenticator) AuthOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if fail, presented := a.resolve(ctx); fail != nil && presented {
			utils.Error(ctx, fail.status, fail.code, fail.msg)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// SuperuserRequired must run after AuthRequired.
func SuperuserRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !IsSuperuser(ctx) {
			utils.Error(ctx, http.StatusForbidden, 40301, "superuser required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// ViewerID returns the authenticated user id, or 0 for anonymous requests.
func ViewerID(ctx *gin.Context) uint {
	if v, ok := ctx.Get(ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func IsSuperuser(ctx *gin.Context) bool {
	return ctx.GetBool(ContextSuperuserKey)
}

// BearerToken returns the token used for this request and its expiry.
func BearerToken(ctx *gin.Context) (string, time.Time, bool) {
	tok := ctx.GetString(ContextTokenKey)
	if tok == "" {
		return "", time.Time{}, false
	}
	return tok, ctx.GetTime(ContextTokenExpiryKey), true
}
