package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animehub/internal/cache"
	"animehub/internal/core"
	httpProtocol "animehub/internal/protocols/http"
	wsProtocol "animehub/internal/protocols/websocket"
	"animehub/internal/repository"
	"animehub/pkg/config"
	"animehub/pkg/database"
	"animehub/pkg/logger"
)

func main() {
	configPath := os.Getenv("ANIMEHUB_CONFIG")
	if configPath == "" {
		configPath = "./configs/development.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	logger.Info("Starting AnimeHub server...")

	pool, err := database.NewPGXPool(database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime.Std(),
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime.Std(),
		Timeout:         cfg.Database.Timeout.Std(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	logger.Info("Connected to PostgreSQL database")

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, pool); err != nil {
		migrateCancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	migrateCancel()

	logger.Info("Database schema up to date")

	// Redis is an accelerator only; a failed connection downgrades to
	// uncached tally reads instead of aborting the boot.
	var reactionCache core.ReactionCache
	if cfg.Redis.Enabled {
		redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := cache.NewRedisClient(redisCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		redisCancel()
		if err != nil {
			logger.Warnf("Redis unavailable, reaction tallies will be uncached: %v", err)
		} else {
			reactionCache = cache.NewReactionCache(redisClient)
			logger.Info("Connected to Redis reaction cache")
		}
	} else {
		logger.Info("Redis cache disabled by config")
	}

	userRepo := repository.NewUserRepository(pool)
	animeRepo := repository.NewAnimeRepository(pool)
	episodeRepo := repository.NewEpisodeRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	engRepo := repository.NewEngagementRepository(pool)
	seqRepo := repository.NewSequenceRepository(pool)

	logger.Info("Initialized all repositories")

	wsHub := wsProtocol.NewHub()

	authSvc := core.NewAuthService(userRepo, seqRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration.Std())
	animeSvc := core.NewAnimeService(animeRepo, seqRepo)
	episodeSvc := core.NewEpisodeService(episodeRepo, animeRepo, seqRepo)
	categorySvc := core.NewCategoryService(categoryRepo, seqRepo)
	userSvc := core.NewUserService(userRepo)
	engSvc := core.NewEngagementService(engRepo, animeRepo, seqRepo, reactionCache, wsHub)

	logger.Info("Initialized all core services")

	wsHandler := wsProtocol.NewHandler(wsHub, engSvc, animeSvc)

	httpServer := httpProtocol.NewServer(
		cfg,
		authSvc,
		animeSvc,
		episodeSvc,
		categorySvc,
		userSvc,
		engSvc,
		wsHandler,
	)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("HTTP server panic recovered: %v", r)
			}
		}()
		addr := cfg.HTTP.Addr()
		logger.Info(fmt.Sprintf("Starting HTTP server on %s", addr))
		if err := httpServer.Start(addr); err != nil {
			logger.Errorf("HTTP server error: %v", err)
		}
	}()

	logger.Info("Server started successfully")
	logger.Info("Press Ctrl+C to shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info(fmt.Sprintf("Received signal: %v", sig))

	logger.Info("Shutting down...")

	wsHub.Stop()
	logger.Info("WebSocket hub stopped")

	logger.Info("Shutdown complete")
}
