package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cppla/luntan/config"
	"github.com/cppla/luntan/controllers"
	"github.com/cppla/luntan/middleware"
	"github.com/cppla/luntan/services"
	"github.com/cppla/luntan/store"
	"github.com/cppla/luntan/utils"
)

// Deps are the constructed collaborators the HTTP layer is wired to.
type Deps struct {
	Store     *store.Store
	Users     *services.UserService
	Posts     *services.PostService
	Relations *services.RelationService
	Stats     *services.StatsService
	Blacklist *utils.TokenBlacklist
	Images    controllers.ImageStore
	// AccessLog receives one line per request and recovered panics.
	AccessLog *zap.Logger
	Logger    *zap.Logger
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, d Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.Ginzap(d.AccessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(d.AccessLog, false))
	r.Use(middleware.Metrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		// wildcard origins cannot be combined with credentials
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static(cfg.UploadURLPrefix, cfg.UploadDir)

	authn := middleware.NewAuthenticator(cfg.JWTSecret, d.Blacklist, d.Users)
	authRequired := authn.AuthRequired()
	authOptional := authn.AuthOptional()
	writeLimit := middleware.NewRateLimiter(cfg.RateLimitPerMinute).Middleware()
	authLimit := middleware.NewRateLimiter(cfg.RateLimitPerMinute).Middleware()

	authController := controllers.NewAuthController(d.Users, d.Blacklist, d.Images, cfg.JWTSecret,
		time.Duration(cfg.TokenTTLHours)*time.Hour, d.Logger)
	postController := controllers.NewPostController(d.Posts, d.Relations)
	userController := controllers.NewUserController(d.Users, d.Posts, d.Relations)
	statsController := controllers.NewStatsController(d.Stats, d.Store)
	uploadController := controllers.NewUploadController(d.Images)

	r.GET("/health", statsController.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.GET("/stats", statsController.GetStats)

	authGroup := api.Group("/auth")
	authGroup.Use(authLimit)
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", authRequired, authController.Logout)
	authGroup.GET("/me", authRequired, authController.Me)
	authGroup.PATCH("/profile", authRequired, authController.UpdateProfile)
	authGroup.POST("/avatar", authRequired, authController.UploadAvatar)

	public := api.Group("")
	public.Use(authOptional)
	public.GET("/posts", postController.ListPosts)
	public.GET("/posts/:id", postController.GetPost)
	public.GET("/posts/:id/comments", postController.ListComments)
	public.GET("/users/:id", userController.GetUser)
	public.GET("/users/by-username/:username", userController.GetUserByUsername)
	public.GET("/users/:id/posts", userController.ListPosts)
	public.GET("/users/:id/followers", userController.Followers)
	public.GET("/users/:id/following", userController.Following)
	public.GET("/users/:id/collections", userController.Collections)

	protected := api.Group("")
	protected.Use(authRequired, writeLimit)
	protected.POST("/posts", postController.CreatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/like", postController.ToggleLike)
	protected.POST("/posts/:id/collect", postController.ToggleCollect)
	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.POST("/users/:id/follow", userController.ToggleFollow)
	protected.POST("/upload", uploadController.Upload)

	admin := api.Group("/admin")
	admin.Use(authRequired, middleware.SuperuserRequired())
	admin.GET("/users", authController.ListUsers)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
