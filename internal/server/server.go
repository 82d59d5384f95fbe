package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harshitjain593/workree-chat/internal/config"
	"github.com/harshitjain593/workree-chat/internal/handler"
	"github.com/harshitjain593/workree-chat/internal/identity"
	"github.com/harshitjain593/workree-chat/internal/middleware"
	"github.com/harshitjain593/workree-chat/internal/redis"
	"github.com/harshitjain593/workree-chat/internal/transport/httpdto"
	ws "github.com/harshitjain593/workree-chat/internal/websocket"
	"github.com/harshitjain593/workree-chat/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Chat      *handler.ChatHandler
	Directory *handler.DirectoryHandler
	Upload    *handler.UploadHandler
	Auth      *handler.AuthHandler
	WS        *ws.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.Server.Mode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Mode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, parser *identity.TokenParser, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.GET("/ws", handlers.WS.Serve)

	if handlers.Auth != nil {
		s.engine.POST("/auth/dev-token", handlers.Auth.DevToken)
	}

	auth := middleware.AuthMiddleware(parser)

	v1 := s.engine.Group("/v1", auth)
	{
		conversations := v1.Group("/conversations")
		{
			conversations.GET("", handlers.Chat.List)
			conversations.GET("/active", handlers.Chat.Active)
			conversations.POST("/direct", handlers.Chat.CreateDirect)
			conversations.POST("/team", handlers.Chat.CreateTeam)
			conversations.POST("/:id/select", handlers.Chat.Select)
			conversations.POST("/:id/messages", middleware.MessageRateLimitMiddleware(limiter), handlers.Chat.SendMessage)
			conversations.POST("/:id/read", handlers.Chat.MarkRead)
			conversations.POST("/:id/typing", handlers.Chat.Typing)
			conversations.GET("/:id/typing", handlers.Chat.TypingUsers)
			conversations.DELETE("/:id", handlers.Chat.Delete)
		}

		v1.GET("/users/search", handlers.Directory.Search)
		v1.POST("/uploads/presign", handlers.Upload.Presign)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}
	return nil
}
