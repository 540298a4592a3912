// Package http - REST API Server
// Serves the catalog, identity and engagement endpoints behind gin, with the
// live reaction channel mounted alongside.
package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"animehub/internal/core"
	ws "animehub/internal/protocols/websocket"
	"animehub/pkg/config"
	"animehub/pkg/logger"
)

// Server manages the HTTP REST API server
type Server struct {
	router      *gin.Engine
	config      *config.Config
	authSvc     core.AuthService
	animeSvc    core.AnimeService
	episodeSvc  core.EpisodeService
	categorySvc core.CategoryService
	userSvc     core.UserService
	engSvc      core.EngagementService
	wsHandler   *ws.Handler
	uploads     *UploadStore
}

// NewServer creates a new HTTP server with all handlers wired
func NewServer(
	cfg *config.Config,
	authSvc core.AuthService,
	animeSvc core.AnimeService,
	episodeSvc core.EpisodeService,
	categorySvc core.CategoryService,
	userSvc core.UserService,
	engSvc core.EngagementService,
	wsHandler *ws.Handler,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())
	router.Use(RateLimitMiddleware(cfg.HTTP.RateLimit, cfg.HTTP.Burst))

	s := &Server{
		router:      router,
		config:      cfg,
		authSvc:     authSvc,
		animeSvc:    animeSvc,
		episodeSvc:  episodeSvc,
		categorySvc: categorySvc,
		userSvc:     userSvc,
		engSvc:      engSvc,
		wsHandler:   wsHandler,
		uploads:     NewUploadStore(cfg.Uploads.Dir, cfg.Uploads.BaseURL),
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	// Live reaction channel
	if s.wsHandler != nil {
		s.router.GET("/ws/animes/:id", s.wsHandler.HandleReactions)
		s.router.GET("/ws/animes/:id/status", s.wsHandler.RoomStatus)
	}

	v1 := s.router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", s.register)
			auth.POST("/login", s.login)
		}

		// Anime catalog (public reads)
		v1.GET("/animes", s.listAnimes)
		v1.GET("/animes/search", s.searchAnimes)
		v1.GET("/animes/:id", s.getAnime)
		v1.GET("/animes/:id/episodes", s.listAnimeEpisodes)
		v1.GET("/animes/:id/reactions", s.getReactions)

		// Episode catalog (public reads)
		v1.GET("/episodes", s.listEpisodes)
		v1.GET("/episodes/search", s.searchEpisodes)
		v1.GET("/episodes/:id", s.getEpisode)

		// Categories (public reads)
		v1.GET("/categories", s.listCategories)
		v1.GET("/categories/search", s.searchCategories)
		v1.GET("/categories/:id", s.getCategory)

		// Public user profiles and library views
		v1.GET("/users/:id", s.getUser)
		v1.GET("/users/:id/summary", s.getUserSummary)
		v1.GET("/users/:id/list/:status", s.getUserList)

		// Engagement mutations always re-verify the token server-side
		authed := v1.Group("", AuthMiddleware(s.authSvc))
		{
			authed.POST("/animes/:id/reaction", s.setReaction)
			authed.POST("/animes/:id/favourite", s.setFavourite)
			authed.PUT("/animes/:id/watch-state", s.setWatchState)
			authed.PUT("/animes/:id/progress", s.setProgress)
			authed.GET("/animes/:id/state", s.getAnimeState)

			authed.GET("/me", s.getMe)
			authed.PUT("/me", s.updateProfile)
		}

		// Admin CRUD over the catalog and user management
		admin := v1.Group("", AuthMiddleware(s.authSvc), AdminMiddleware())
		{
			admin.POST("/animes", s.createAnime)
			admin.PUT("/animes/:id", s.updateAnime)
			admin.DELETE("/animes/:id", s.deleteAnime)

			admin.POST("/episodes", s.createEpisode)
			admin.PUT("/episodes/:id", s.updateEpisode)
			admin.DELETE("/episodes/:id", s.deleteEpisode)

			admin.POST("/categories", s.createCategory)
			admin.PUT("/categories/:id", s.renameCategory)
			admin.DELETE("/categories/:id", s.deleteCategory)

			admin.GET("/users", s.listUsers)
			admin.GET("/users/search", s.searchUsers)
			admin.PUT("/users/:id/block", s.setUserBlocked)
			admin.DELETE("/users/:id", s.deleteUser)
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Router returns the gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// loggingMiddleware logs one line per request through the shared logger
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.HTTP(c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			int(time.Since(start).Milliseconds()))
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// healthCheck returns server health status
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
