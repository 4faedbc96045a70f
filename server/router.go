package server

import (
	"time"

	"idle-fm-api/domain/repository"
	"idle-fm-api/infrastructure/logger"
	httpHandler "idle-fm-api/interfaces/http"
	"idle-fm-api/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       httpHandler.IAuthHandler
	Activation httpHandler.IActivationHandler
	Playlist   httpHandler.IPlaylistHandler
	Catalog    httpHandler.ICatalogHandler
	Search     httpHandler.ISearchHandler
	Admin      httpHandler.IAdminHandler
	Health     httpHandler.IHealthHandler
}

type Options struct {
	SecretKey      string
	AllowedOrigins []string
	// TrustedProxies are the only peers whose X-Forwarded-For is honored.
	TrustedProxies []string
	SearchLimiter  middleware.RateLimiter
	RetryAfter     time.Duration
}

func InitiateRouter(h Handlers, userRepository repository.IUser, opts Options) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.GetLogger().WithField("error", err).Error("Invalid trusted proxies; ignoring forwarded headers")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := middleware.Auth(userRepository, opts.SecretKey)

	router.GET("/healthz", h.Health.Health)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", requireAuth, h.Auth.Me)
		auth.POST("/request-password-reset", h.Auth.RequestPasswordReset)
		auth.POST("/reset-password", h.Auth.ResetPassword)
	}

	activations := api.Group("/activations")
	{
		activations.GET("/activate", h.Activation.Activate)
		activations.POST("/resend", h.Activation.Resend)
	}

	api.GET("/tags", h.Catalog.Tags)
	api.GET("/gifs", h.Catalog.Gifs)
	api.GET("/videos", h.Catalog.Videos)

	search := []gin.HandlerFunc{}
	if opts.SearchLimiter != nil {
		search = append(search, middleware.RateLimit(opts.SearchLimiter, opts.RetryAfter))
	}
	api.GET("/youtube/search", append(search, h.Search.Search)...)

	playlists := api.Group("/playlists", requireAuth)
	{
		playlists.GET("", h.Playlist.List)
		playlists.POST("", h.Playlist.Create)
		playlists.GET("/:id", h.Playlist.Get)
		playlists.DELETE("/:id", h.Playlist.Delete)
		playlists.GET("/:id/items", h.Playlist.Items)
		playlists.POST("/:id/videos", h.Playlist.AddVideo)
		playlists.POST("/:id/gifs", h.Playlist.AddGif)
		playlists.PUT("/:id/order", h.Playlist.Reorder)
		playlists.DELETE("/:id/items/:itemId", h.Playlist.RemoveItem)
		playlists.POST("/:id/tags", h.Playlist.AddTags)
		playlists.GET("/:id/stream", h.Playlist.Stream)
	}

	admin := api.Group("/admin", requireAuth, middleware.AdminOnly())
	admin.POST("/generate-playlist", h.Admin.GeneratePlaylist)

	return router
}
