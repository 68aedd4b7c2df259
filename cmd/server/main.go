package main // Entry point package

import (
	"context"
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/gracechapel/livestream/internal/chat"
	"github.com/gracechapel/livestream/internal/config"
	"github.com/gracechapel/livestream/internal/database"
	"github.com/gracechapel/livestream/internal/handler"
	"github.com/gracechapel/livestream/internal/middleware"
	"github.com/gracechapel/livestream/internal/queue"
	"github.com/gracechapel/livestream/internal/repository"
	"github.com/gracechapel/livestream/internal/router"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting, the response cache, reset tokens, viewer
	// counters and chat history.  A nil client disables those subsystems but
	// the API itself keeps serving.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting, caching and chat history disabled")
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	resets := repository.NewResetRepo(rdb)
	streams := repository.NewStreamRepo(db)
	events := repository.NewEventRepo(db)
	videos := repository.NewVideoRepo(db)

	// Chat hub runs for the lifetime of the process.
	hub := chat.NewHub(rdb)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// Background consumer appends stream lifecycle events to logs/stream.log.
	go func() {
		if err := queue.StartStreamEventConsumer(); err != nil {
			log.Printf("stream-consumer stopped: %v", err)
		}
	}()

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens, resets)
	adminH := handler.NewAdminHandler(users, events, videos)
	streamH := handler.NewStreamHandler(cfg, streams)
	publicH := handler.NewPublicHandler(streams, events, videos, rdb)
	chatH := handler.NewChatHandler(cfg, hub, users)

	// Rate limit buckets: the general bucket wraps the whole API, the auth
	// and static buckets are layered onto their route groups.  Each bucket
	// owns its own Redis key prefix.
	buckets := config.LoadRateLimitBuckets()
	generalLimit := middleware.NewTokenBucket(buckets.General, rdb)
	authLimit := middleware.NewTokenBucket(buckets.Auth, rdb)
	staticLimit := middleware.NewTokenBucket(buckets.Static, rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New() // Create Echo instance
	e.Use(generalLimit)

	router.RegisterRoutes(e) // health check (limiter-exempt by path)
	router.RegisterAuth(e, authH, cfg.JWTSecret, authLimit)
	router.RegisterPublic(e, publicH, chatH, staticLimit, cache)
	router.RegisterAdmin(e, adminH, streamH, users, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
