package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"melomap/internal/config"
	database "melomap/internal/db"
	"melomap/internal/storage"

	"melomap/internal/api/handlers"
	"melomap/internal/api/middleware"
)

type Server struct {
	cfg       *config.Config
	db        *database.Client
	storage   *storage.Client
	assembler handlers.Assembler
	router    *gin.Engine
}

func New(cfg *config.Config, db *database.Client, storage *storage.Client, asm handlers.Assembler) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		db:        db,
		storage:   storage,
		assembler: asm,
		router:    gin.New(),
	}
	s.router.Use(middleware.SilentLogger(), gin.Recovery())

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

	// "Authorization" must be allowed so the frontend can send the JWT
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	secret := []byte(s.cfg.Auth.JWTSecret)

	authHandler := handlers.NewAuthHandler(s.db.DB, secret)
	userHandler := handlers.NewUserHandler(s.db.DB, s.storage)
	postHandler := handlers.NewPostHandler(s.db.DB, s.storage, s.assembler)
	songHandler := handlers.NewSongHandler(s.db.DB)

	// Health Check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "melomap"})
	})

	v1 := s.router.Group("/api/v1")
	{
		// ==========================================
		// PUBLIC ROUTES (No Token Required)
		// ==========================================
		v1.POST("/auth/signup", authHandler.Signup)
		v1.POST("/auth/login", authHandler.Login)

		// ==========================================
		// PROTECTED ROUTES (JWT Token Required)
		// ==========================================
		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(secret))
		{
			// --- UPLOAD PIPELINE ---
			protected.POST("/posts", postHandler.CreatePost)

			// --- POSTS
			protected.GET("/posts", postHandler.GetPosts)
			protected.GET("/posts/:id", postHandler.GetPost)
			protected.GET("/posts/:id/image", postHandler.GetPostImage)
			protected.DELETE("/posts/:id", postHandler.DeletePost)

			// --- USERS
			protected.GET("/users/:id", userHandler.GetProfile)
			protected.GET("/users/:id/posts", userHandler.GetUserPosts)
			protected.PUT("/me", userHandler.UpdateProfile)
			protected.PUT("/me/password", userHandler.ChangePassword)
			protected.DELETE("/me", userHandler.DeleteAccount)

			// --- SONGS & BOOKMARKS
			protected.GET("/search", songHandler.Search)
			protected.GET("/songs/:id", songHandler.GetSong)
			protected.POST("/bookmarks/:song_id", userHandler.ToggleBookmark)
			protected.GET("/bookmarks", userHandler.GetBookmarks)
		}
	}
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
