package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/greenova8-investment-ledger/internal/api_gateway"
	"github.com/greenova8-investment-ledger/internal/api_gateway/service"
	"github.com/greenova8-investment-ledger/internal/config"
	"github.com/greenova8-investment-ledger/internal/data/mongo"
	"github.com/greenova8-investment-ledger/internal/data/postgres"
	"github.com/greenova8-investment-ledger/internal/investment_ledger/components"
	ledgersvc "github.com/greenova8-investment-ledger/internal/investment_ledger/service"
	"github.com/greenova8-investment-ledger/internal/logger"
	"github.com/greenova8-investment-ledger/internal/platform/auth"
	"github.com/greenova8-investment-ledger/internal/platform/persistence"
	"github.com/greenova8-investment-ledger/internal/platform/pricing"
	"github.com/greenova8-investment-ledger/internal/platform/solana"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting API Gateway",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"version", cfg.Application.Version,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	if err := persistence.RunMigrations(log, &cfg.Postgres); err != nil {
		log.Error("Failed to apply PostgreSQL migrations", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	projectRepo := postgres.NewProjectRepository(log, postgresDB)
	investmentRepo := postgres.NewInvestmentRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	paymentRepo := postgres.NewPaymentRepository(log, postgresDB)
	ledgerRepo := mongo.NewLedgerRepository(log, mongoDB.Database())
	reportRepo := mongo.NewReconciliationRepository(log, mongoDB.Database())

	// Initialize the investment ledger
	ledgerService, err := components.CreateLedgerService(
		postgresDB,
		projectRepo,
		investmentRepo,
		outboxRepo,
		log,
		cfg,
	)
	if err != nil {
		log.Error("Failed to initialize ledger service", "error", err)
		os.Exit(1)
	}

	if wpService, ok := ledgerService.(*ledgersvc.WorkerPoolLedgerService); ok {
		log.Info("Investment worker pool ready", "capacity", wpService.Capacity())
	}

	// Initialize external clients
	fallbackPrice, err := decimal.NewFromString(cfg.Pricing.FallbackSolPrice)
	if err != nil {
		log.Error("Invalid fallback SOL price", "error", err)
		os.Exit(1)
	}
	priceProvider := pricing.NewCoinGeckoClient(
		log.With("component", "pricing"),
		cfg.Pricing.SolPriceURL,
		fallbackPrice,
		cfg.Pricing.Timeout,
		cfg.Pricing.CacheTTL,
	)
	solanaClient := solana.NewRPCClient(cfg.Solana.RPCURL, cfg.Solana.Timeout)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	// Initialize services
	services := api_gateway.Services{
		Ledger:   ledgerService,
		Projects: service.NewProjectService(log, projectRepo),
		Payments: service.NewPaymentService(log, priceProvider, solanaClient, paymentRepo, investmentRepo),
		Audit:    service.NewAuditService(log, ledgerRepo, projectRepo, reportRepo),
		Tokens:   tokens,
	}

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, services)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before draining the worker pool
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if wpService, ok := ledgerService.(*ledgersvc.WorkerPoolLedgerService); ok {
		wpService.Shutdown()
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
