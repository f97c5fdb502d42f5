package main

import (
	"context"
	"net/http"
	"os"

	"github.com/happyhourhub/backend/internal/api"
	"github.com/happyhourhub/backend/internal/auth"
	"github.com/happyhourhub/backend/internal/cache"
	"github.com/happyhourhub/backend/internal/config"
	"github.com/happyhourhub/backend/internal/db"
	apperrors "github.com/happyhourhub/backend/internal/errors"
	"github.com/happyhourhub/backend/internal/health"
	"github.com/happyhourhub/backend/internal/logger"
	"github.com/happyhourhub/backend/internal/metrics"
	"github.com/happyhourhub/backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), "server")
	logger.SetDefault(log)
	ctx := context.Background()

	database, err := db.New(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		log.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(cfg.DatabaseURL()); err != nil {
		log.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	var listingCache *cache.Cache
	if cfg.RedisAddr != "" {
		listingCache, err = cache.New(cfg.RedisAddr)
		if err != nil {
			// Browsing works without the cache, just slower
			log.Warn(ctx, "cache unavailable, continuing without it", map[string]interface{}{
				"addr":  cfg.RedisAddr,
				"error": err.Error(),
			})
			listingCache = nil
		} else {
			defer listingCache.Close()
		}
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	userRepo := db.NewUserRepository(database)
	listingRepo := db.NewListingRepository(database)
	interestRepo := db.NewInterestRepository(database)

	authService := auth.NewService(userRepo, cfg.JWTSecret)
	authHandlers := auth.NewHandlers(authService, cfg.IsProduction())
	listingHandlers := api.NewListingHandlers(listingRepo, listingCache, collector)
	interestHandlers := api.NewInterestHandlers(interestRepo, listingRepo, collector)

	healthChecker := health.NewChecker(database.DB, redisClientOrNil(listingCache))

	router := api.NewRouter(authHandlers, authService, listingHandlers, interestHandlers, healthChecker, registry)

	handler := apperrors.RequestIDMiddleware(
		middleware.NewCORSMiddleware(cfg.CORSAllowedOrigin)(
			logger.LoggingMiddleware(
				collector.Middleware(router),
			),
		),
	)

	log.Info(ctx, "starting server", map[string]interface{}{
		"addr": cfg.ServerAddr,
		"env":  cfg.Env,
	})
	if err := http.ListenAndServe(cfg.ServerAddr, handler); err != nil {
		log.Error(ctx, "server failed", err)
		os.Exit(1)
	}
}

func redisClientOrNil(c *cache.Cache) *redis.Client {
	if c == nil {
		return nil
	}
	return c.Client()
}
