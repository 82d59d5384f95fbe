package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/harshitjain593/workree-chat/internal/chat"
	"github.com/harshitjain593/workree-chat/internal/config"
	"github.com/harshitjain593/workree-chat/internal/directory"
	"github.com/harshitjain593/workree-chat/internal/events"
	"github.com/harshitjain593/workree-chat/internal/handler"
	"github.com/harshitjain593/workree-chat/internal/identity"
	"github.com/harshitjain593/workree-chat/internal/presence"
	appredis "github.com/harshitjain593/workree-chat/internal/redis"
	"github.com/harshitjain593/workree-chat/internal/server"
	"github.com/harshitjain593/workree-chat/internal/storage"
	ws "github.com/harshitjain593/workree-chat/internal/websocket"
	"github.com/harshitjain593/workree-chat/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logMode := logger.DevelopmentMode
	if cfg.Server.Environment == "production" {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)
	defer l.Logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		publisher      events.Publisher = events.NopPublisher{}
		subscriber     events.Subscriber
		presenceSource presence.Source = presence.NewMemoryStore()
		limiter        *appredis.RateLimiter
	)
	if cfg.Redis.Enabled {
		client, err := appredis.NewClient(ctx, appredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			l.Errorf("Redis unavailable, falling back to in-process presence: %v", err)
		} else {
			bus := events.NewRedisBus(client, l)
			publisher = bus
			subscriber = bus
			presenceSource = presence.NewRedisStore(client, bus, 0)
			limiter = appredis.NewRateLimiter(client, appredis.DefaultRateLimitConfig())
		}
	}

	dir := directory.New()
	if cfg.Directory.SeedFile != "" {
		if err := dir.LoadSeedFile(cfg.Directory.SeedFile); err != nil {
			log.Fatalf("Failed to load directory seed %s: %v", cfg.Directory.SeedFile, err)
		}
	} else {
		dir.Seed(directory.DefaultSeed())
	}
	l.Infof("Directory seeded with %d users", dir.Len())

	registry := chat.NewRegistry(chat.Deps{
		Directory: dir,
		Presence:  presenceSource,
		Publisher: publisher,
		Logger:    l,
	})

	parser := identity.NewTokenParser(cfg.Auth.JWTSecret)

	hub := ws.NewHub()
	go hub.Run(ctx)

	if subscriber != nil {
		bridge := ws.NewRedisBridge(subscriber, registry, hub, l)
		go func() {
			if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
				l.Errorf("Event bridge stopped: %v", err)
			}
		}()
	}

	var s3Client *storage.Client
	if cfg.S3.Bucket != "" {
		s3Client, err = storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3.Region,
			Bucket:     cfg.S3.Bucket,
			AccessKey:  cfg.S3.AccessKey,
			SecretKey:  cfg.S3.SecretKey,
			Endpoint:   cfg.S3.Endpoint,
			PublicBase: cfg.S3.PublicBase,
			PresignTTL: cfg.S3.PresignTTL,
		})
		if err != nil {
			log.Fatalf("Failed to init S3 client: %v", err)
		}
	}

	handlers := &server.Handlers{
		Chat:      handler.NewChatHandler(registry, publisher),
		Directory: handler.NewDirectoryHandler(registry),
		Upload:    handler.NewUploadHandler(s3Client),
		WS:        ws.NewHandler(registry, hub, parser, presenceSource, publisher, l),
	}
	if cfg.Server.Environment != "production" {
		handlers.Auth = handler.NewAuthHandler(parser, dir)
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, parser, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
