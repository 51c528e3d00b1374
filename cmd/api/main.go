package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"settlement-ledger/config"
	httpHandler "settlement-ledger/internal/adapter/http/handler"
	pgStorage "settlement-ledger/internal/adapter/storage/postgres"
	redisStorage "settlement-ledger/internal/adapter/storage/redis"
	"settlement-ledger/internal/core/ports"
	"settlement-ledger/internal/service"
	"settlement-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Settlement Ledger")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	batchRepo := pgStorage.NewBatchRepo(pool)
	settlementRepo := pgStorage.NewSettlementRepo(pool)
	statsRepo := pgStorage.NewStatsRepo(pool)
	payoutRepo := pgStorage.NewPayoutRepo(pool)
	traderRepo := pgStorage.NewTraderRepo(pool)
	custodianRepo := pgStorage.NewCustodianRepo(pool)
	operatorRepo := pgStorage.NewOperatorRepo(pool)
	nonceRepo := pgStorage.NewNonceRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	batchCache := redisStorage.NewBatchCache(rdb)
	nonceStore := redisStorage.NewNonceStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	merkle := service.NewSHA256MerkleVerifier()

	// Initialize business services
	authSvc := service.NewAuthService(operatorRepo, hashSvc, encSvc, tokenSvc)
	notifier := service.NewNotifierService(operatorRepo, encSvc, sigSvc, &http.Client{Timeout: 10 * time.Second}, log)
	ledgerSvc := service.NewLedgerService(batchRepo, settlementRepo, statsRepo, batchCache, merkle, transactor, notifier, log)
	payoutSvc := service.NewPayoutService(
		ledgerSvc,
		payoutRepo,
		statsRepo,
		traderRepo,
		custodianRepo,
		operatorRepo,
		nonceRepo,
		sigSvc,
		encSvc,
		transactor,
		notifier,
		service.PayoutPolicy{
			SystemID:       cfg.Settlement.SystemID,
			PayoutCooldown: cfg.Settlement.PayoutCooldown,
			MinimumPayout:  cfg.Settlement.MinimumPayout,
		},
		log,
	)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		PayoutSvc:      payoutSvc,
		Custodian:      custodianRepo,
		OperatorRepo:   operatorRepo,
		EncSvc:         encSvc,
		SigSvc:         sigSvc,
		NonceStore:     nonceStore,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
