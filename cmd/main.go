package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mentorbridge/mentorbridge-backend/internal/cache"
	"github.com/mentorbridge/mentorbridge-backend/internal/db"
	"github.com/mentorbridge/mentorbridge-backend/internal/handlers"
	"github.com/mentorbridge/mentorbridge-backend/internal/logger"
	"github.com/mentorbridge/mentorbridge-backend/internal/middleware"
	"github.com/mentorbridge/mentorbridge-backend/internal/observability"
	"github.com/mentorbridge/mentorbridge-backend/internal/repos"
	"github.com/mentorbridge/mentorbridge-backend/internal/seed"
	"github.com/mentorbridge/mentorbridge-backend/internal/server"
	"github.com/mentorbridge/mentorbridge-backend/internal/services"
	"github.com/mentorbridge/mentorbridge-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	httpPort := utils.GetEnv("HTTP_PORT", "8080", log)
	seedFile := utils.GetEnv("SEED_FILE", "", log)

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "mentorbridge",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	challengeRepo := repos.NewChallengeRepo(thePG, log)
	objectiveItemRepo := repos.NewObjectiveItemRepo(thePG, log)
	challengeLinkRepo := repos.NewChallengeLinkRepo(thePG, log)
	challengeProgressRepo := repos.NewChallengeProgressRepo(thePG, log)

	// Cache (optional: missing REDIS_ADDR means no read cache to drop)
	var progressCache *cache.ProgressCache
	if pc, err := cache.NewProgressCache(log); err != nil {
		log.Warn("Progress cache disabled", "error", err)
	} else {
		progressCache = pc
		defer progressCache.Close()
	}

	// Seed
	if seedFile != "" {
		loader := seed.NewLoader(thePG, log, challengeRepo, objectiveItemRepo, challengeLinkRepo)
		if err := loader.LoadFile(context.Background(), seedFile); err != nil {
			log.Error("Seed load failed", "error", err, "file", seedFile)
			os.Exit(1)
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	var invalidator services.ProgressInvalidator
	if progressCache != nil {
		invalidator = progressCache
	}
	catalogService := services.NewCatalogService(thePG, log, challengeRepo, objectiveItemRepo, challengeLinkRepo)
	progressionService := services.NewProgressionService(thePG, log, challengeRepo, challengeLinkRepo, objectiveItemRepo, challengeProgressRepo, invalidator)
	syncService := services.NewSyncService(thePG, log, challengeRepo, challengeLinkRepo, objectiveItemRepo, challengeProgressRepo, progressionService, invalidator)

	// Handlers + middleware
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	var readCache handlers.ProgressReadCache
	if progressCache != nil {
		readCache = progressCache
	}
	progressionHandler := handlers.NewProgressionHandler(progressionService, syncService, readCache)
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:     authMiddleware,
		CatalogHandler:     catalogHandler,
		ProgressionHandler: progressionHandler,
	})

	srv := &http.Server{
		Addr:    ":" + httpPort,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", "port", httpPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", "error", err)
	}
	if otelShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Warn("otel shutdown failed", "error", err)
		}
	}
}
