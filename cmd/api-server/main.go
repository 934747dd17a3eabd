package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"libraryhub/database"
	"libraryhub/internal/config"
	"libraryhub/internal/http-api/handler"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// Redis is optional, the cache degrades to a permanent miss without it
	bookCache, err := repository.NewBookRedisCache(cfg.RedisAddr, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
	if err != nil {
		logger.Warn("redis unavailable, running without book cache", "error", err)
		bookCache = repository.NoopBookCache()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	bookRepo := repository.NewBookRepository(db)
	borrowingRepo := repository.NewBorrowingRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db, logger)
	txRunner := repository.NewTxRunner(db)

	// Services
	policy := service.NewPolicy(cfg)
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo)
	bookService := service.NewBookService(txRunner, bookRepo, borrowingRepo, inventoryRepo, bookCache, cfg.CoverDataPath, logger)
	borrowingService := service.NewBorrowingService(txRunner, borrowingRepo, inventoryRepo, bookCache, policy, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, int64(cfg.AccessTokenTTL.Seconds()))
	userHandler := handler.NewUserHandler(userService)
	bookHandler := handler.NewBookHandler(bookService)
	borrowingHandler := handler.NewBorrowingHandler(borrowingService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// stored covers are served as static files
	r.Static("/covers", cfg.CoverDataPath)

	authRequired := middleware.AuthMiddleware(authService)

	api := r.Group("/api")
	authHandler.RegisterRoutes(api.Group("/auth"))
	bookHandler.RegisterRoutes(api.Group("/books"), authRequired)
	borrowingHandler.RegisterRoutes(api.Group("/borrowings", authRequired))
	userHandler.RegisterRoutes(api.Group("/users", authRequired))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("starting api server", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
