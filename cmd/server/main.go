package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/placementboard/backend/docs"
	"github.com/placementboard/backend/internal/audit"
	"github.com/placementboard/backend/internal/config"
	"github.com/placementboard/backend/internal/database"
	"github.com/placementboard/backend/internal/handlers"
	"github.com/placementboard/backend/internal/logger"
	mW "github.com/placementboard/backend/internal/middleware"
	"github.com/placementboard/backend/internal/services"
	"github.com/placementboard/backend/internal/store"
	"github.com/placementboard/backend/internal/store/memory"
	"github.com/placementboard/backend/internal/store/postgres"
)

// @title Placement Board Bullets API
// @version 1.0
// @description Bullet credit ledger and listing boost activation
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type directory interface {
	services.IdentityDirectory
	services.CompanyDirectory
	services.ListingDirectory
}

type backend struct {
	ledger    store.LedgerStore
	boosts    store.BoostStore
	directory directory
	close     func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.InitLogger(cfg.Log.Level, cfg.Log.Format)

	// Initialize Swagger docs
	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
	docs.SwaggerInfo.BasePath = "/api/v1"

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to initialize store")
	}
	defer be.close()

	redisClient := database.InitRedis(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditLogger := audit.NewLogger(log)
	gate := services.NewAccessGate(be.directory, be.directory, log)
	pricing := services.NewTierPricing(cfg.Pricing.BoostTiers, cfg.Pricing.BoostPerDay)

	ledgerService := services.NewLedgerService(be.ledger, gate, auditLogger, log, services.LedgerConfig{
		StoreTimeout: cfg.Ledger.StoreTimeout,
		HistoryLimit: cfg.Ledger.HistoryLimit,
		BalanceLimit: cfg.Ledger.BalanceLimit,
	})
	boostService, err := services.NewBoostService(be.boosts, ledgerService, gate, be.directory, pricing,
		sweepLocker(redisClient), auditLogger, log, services.BoostConfig{
			DefaultDurationDays:  cfg.Boosts.DefaultDurationDays,
			MaxDurationDays:      cfg.Boosts.MaxDurationDays,
			StoreTimeout:         cfg.Ledger.StoreTimeout,
			CompensationTimeout:  cfg.Boosts.CompensationTimeout,
			CompensationAttempts: cfg.Boosts.CompensationAttempts,
			SweepLockTTL:         cfg.Boosts.SweepLockTTL,
		})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid boost configuration")
	}

	var revocations mW.RevocationChecker
	if redisClient != nil {
		revocations = database.NewRedisRevocationList(redisClient)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Ledger:         ledgerService,
		Boosts:         boostService,
		Tiers:          pricing,
		Auth:           mW.NewAuthenticator(cfg.JWT.SecretKey, revocations, log),
		CronSecret:     cfg.Boosts.CronSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	sweeper := services.NewSweeper(boostService, cfg.Boosts.SweepInterval, log)
	go sweeper.Start(ctx)

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.Info().Msg("server shutting down")
	sweeper.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	if cfg.Store.Driver == "memory" {
		mem := memory.New()
		for _, id := range cfg.Store.MemoryAdmins {
			mem.GrantAdmin(id)
		}
		log.Warn().Int("admins", len(cfg.Store.MemoryAdmins)).Msg("using in-memory store, data is not persisted")
		return &backend{ledger: mem, boosts: mem, directory: mem, close: func() error { return nil }}, nil
	}

	db, err := database.InitDB(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Msg("database migrations applied")
	}
	return postgresBackend(db), nil
}

func postgresBackend(db *sql.DB) *backend {
	return &backend{
		ledger:    postgres.NewLedgerStore(db),
		boosts:    postgres.NewBoostStore(db),
		directory: postgres.NewDirectory(db),
		close:     db.Close,
	}
}

// sweepLocker returns nil when Redis is unavailable so sweeps run unlocked.
func sweepLocker(client *redis.Client) services.Locker {
	if client == nil {
		return nil
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return database.NewRedisLocker(client, fmt.Sprintf("%s:%d", hostname, os.Getpid()))
}
