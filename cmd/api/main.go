package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"copilot-context/internal/config"
	"copilot-context/internal/db"
	apihttp "copilot-context/internal/http"
	"copilot-context/internal/repository"
	"copilot-context/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	health := map[string]apihttp.Pinger{}

	var resolver service.ContextResolver = service.NewStubResolver(logger, cfg.Prompt())
	if cfg.DatabaseURL != "" {
		var pool *pgxpool.Pool
		pool, err = db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		health["postgres"] = pool
		resolver = service.NewAttributeResolver(repository.NewPgAttributeRepository(pool), logger, cfg.Prompt())
		logger.Info("attribute resolver enabled")
	}
	resolver = service.NewTimeoutResolver(resolver, cfg.ResolveTimeout)

	var limiter service.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = service.NewMemoryRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
		if cfg.RedisAddr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			defer redisClient.Close()
			ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
			if err := redisClient.Ping(ctxPing).Err(); err != nil {
				logger.Warn("redis ping failed, using in-memory rate limiter", zap.Error(err))
			} else {
				limiter = service.NewRedisRateLimiter(redisClient, cfg.RateLimitPerMinute, cfg.RateLimitBurst)
				health["redis"] = redisPinger{redisClient}
			}
			cancel()
		}
	}

	contextHandler := apihttp.NewContextHandler(logger, resolver)
	healthHandler := apihttp.NewHealthHandler(logger, health)
	router, err := apihttp.NewRouter(logger, contextHandler, healthHandler, apihttp.RouterOptions{
		MaxBodyBytes:   cfg.MaxBodyBytes,
		RateLimiter:    limiter,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		logger.Fatal("router setup", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
