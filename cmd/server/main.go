package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/campus-lending/internal/config"     // Internal config loader
	"github.com/iliyamo/campus-lending/internal/database"   // MySQL connector
	"github.com/iliyamo/campus-lending/internal/handler"    // HTTP handlers
	"github.com/iliyamo/campus-lending/internal/middleware" // rate limiting / caching
	"github.com/iliyamo/campus-lending/internal/queue"      // background event consumer
	"github.com/iliyamo/campus-lending/internal/repository" // DB repositories
	"github.com/iliyamo/campus-lending/internal/router"     // Internal router setup
	"github.com/iliyamo/campus-lending/internal/service"    // borrow lifecycle service
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	// Connect to MySQL and verify the connection before serving traffic.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the response cache.  A nil client
	// disables both; the API still works without Redis.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: rate limiting and response cache disabled")
	}

	// Repositories and services
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	items := repository.NewItemRepo(db)
	borrows := repository.NewBorrowRepo(db)
	messages := repository.NewMessageRepo(db)
	borrowSvc := service.NewBorrowService(items, borrows)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	itemH := handler.NewItemHandler(items)
	borrowH := handler.NewBorrowHandler(borrowSvc)
	messageH := handler.NewMessageHandler(items, messages)
	recH := handler.NewRecommendationHandler(items)

	e := echo.New() // Create Echo instance

	// Token-bucket rate limiting applies to every route.  The response
	// cache only wraps public GET routes: cache keys do not include the
	// user, so caching authenticated responses would leak across users.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e) // health check
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, itemH, recH, cacheMW)
	router.RegisterLending(e, itemH, borrowH, messageH, cfg.JWTSecret)

	// Consume lifecycle events in the background and append them to
	// logs/lending.log.  The consumer reconnects on broker failures.
	go func() {
		if err := queue.StartBorrowEventConsumer(); err != nil {
			log.Printf("lending-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
