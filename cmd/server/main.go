package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"greenride/internal/app"
	"greenride/internal/config"
	"greenride/internal/domain"
	"greenride/internal/handler"
	internalRedis "greenride/internal/redis"
	"greenride/internal/repository/postgres"
	"greenride/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	cacheStore := internalRedis.NewCacheStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)

	// Initialize repositories.
	rideRepo := postgres.NewRideRepository(db)
	statsRepo := postgres.NewStatsRepository(db)
	badgeRepo := postgres.NewBadgeRepository(db)
	txRunner := postgres.NewTxRunner(db)

	// Initialize services.
	events := service.NewEventService()
	auth := service.NewAuthorizer(cfg.Engine.AdminPrincipal, cfg.Engine.VerifierPrincipal)
	minter := service.NewMockMinter()
	issuer := service.NewMockBadgeIssuer()

	policy := service.EnginePolicy{
		AutoVerify:  cfg.Engine.AutoVerify,
		MinDistance: cfg.Engine.MinDistance,
		MaxDistance: cfg.Engine.MaxDistance,
		MinDuration: cfg.Engine.MinDuration,
	}
	rates := service.RateTable{
		DistanceUnit:        cfg.Engine.DistanceUnit,
		RatePerDistanceUnit: cfg.Engine.RatePerDistanceUnit,
		DurationUnit:        cfg.Engine.DurationUnit,
		RatePerDurationUnit: cfg.Engine.RatePerDurationUnit,
		CarbonUnit:          cfg.Engine.CarbonUnit,
		CarbonMultiplier:    cfg.Engine.CarbonMultiplier,
	}

	verification := service.NewVerificationService(rideRepo, txRunner, minter, auth, events, cacheStore, policy, rates)
	stats := service.NewStatsService(statsRepo, cacheStore)
	badges := service.NewBadgeService(badgeRepo, statsRepo, issuer, auth, events, lockStore, domain.DefaultMilestones())

	// Initialize handlers.
	rideHandler := handler.NewRideHandler(verification)
	statsHandler := handler.NewStatsHandler(stats)
	badgeHandler := handler.NewBadgeHandler(badges)
	adminHandler := handler.NewAdminHandler(verification, badges, auth)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:  rideHandler,
		StatsHandler: statsHandler,
		BadgeHandler: badgeHandler,
		AdminHandler: adminHandler,
		RedisClient:  redisClient,
		NewRelicApp:  nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
