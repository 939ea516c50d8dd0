package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/cashify/ledger/internal/adapter/http"
	"github.com/cashify/ledger/internal/adapter/http/handler"
	"github.com/cashify/ledger/internal/adapter/http/middleware"
	postgresRepo "github.com/cashify/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/cashify/ledger/internal/adapter/repository/redis"
	"github.com/cashify/ledger/internal/infrastructure/config"
	"github.com/cashify/ledger/internal/infrastructure/locking"
	"github.com/cashify/ledger/internal/infrastructure/logger"
	"github.com/cashify/ledger/internal/infrastructure/metrics"
	"github.com/cashify/ledger/internal/infrastructure/postgres"
	"github.com/cashify/ledger/internal/infrastructure/redis"
	"github.com/cashify/ledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger
	zerolog.DefaultContextLogger = &appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	// Repositories and shared infrastructure
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(appLogger)
	locker := locking.NewKeyedLocker(cfg.LockTimeout)
	balanceCache := redisRepo.NewBalanceCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	appMetrics := metrics.New()

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, appMetrics)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, entryRepo, auditRepo, locker, idGen, balanceCache, retrier, appMetrics, appLogger)
	entryUC := usecase.NewEntryUseCase(txManager, accountRepo, entryRepo, auditRepo, locker, idGen, balanceCache, retrier, transferUC, appMetrics, appLogger)
	balanceUC := usecase.NewBalanceUseCase(accountRepo, entryRepo, balanceCache, cfg.BalanceCacheTTL, appMetrics, appLogger)
	reconUC := usecase.NewReconciliationUseCase(txManager, accountRepo, balanceUC, locker, balanceCache, appMetrics, appLogger)
	auditUC := usecase.NewAuditUseCase(auditRepo)

	// Handlers
	accountHandler := handler.NewAccountHandler(accountUC, balanceUC, reconUC)
	entryHandler := handler.NewEntryHandler(entryUC)
	transferHandler := handler.NewTransferHandler(transferUC)
	ledgerHandler := handler.NewLedgerHandler(reconUC)
	auditHandler := handler.NewAuditHandler(auditUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		EntryHandler:     entryHandler,
		TransferHandler:  transferHandler,
		LedgerHandler:    ledgerHandler,
		AuditHandler:     auditHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		Logger:           appLogger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
