package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/triplegarycodes/vyral-test-sub000/internal/api/middleware"
	"github.com/triplegarycodes/vyral-test-sub000/internal/api/rest"
	"github.com/triplegarycodes/vyral-test-sub000/internal/api/server"
	"github.com/triplegarycodes/vyral-test-sub000/internal/config"
	"github.com/triplegarycodes/vyral-test-sub000/internal/content"
	"github.com/triplegarycodes/vyral-test-sub000/internal/economy"
	"github.com/triplegarycodes/vyral-test-sub000/internal/logger"
	"github.com/triplegarycodes/vyral-test-sub000/internal/payments"
	"github.com/triplegarycodes/vyral-test-sub000/internal/progression"
	"github.com/triplegarycodes/vyral-test-sub000/internal/session"
	"github.com/triplegarycodes/vyral-test-sub000/internal/shop"
	"github.com/triplegarycodes/vyral-test-sub000/internal/sponsor"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Vyral API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Payment processor client
	processor := payments.NewClient(payments.Config{
		BaseURL:        cfg.Payments.BaseURL,
		SecretKey:      cfg.Payments.SecretKey,
		RequestTimeout: cfg.Payments.RequestTimeout,
		RetryBudget:    cfg.Payments.RetryBudget,
	})

	// Progression engine and session manager
	engine := economy.NewEngine(progression.DefaultConstants())
	sessions := session.NewManager(engine, dataStore, cfg.Session.FlushWorkers)
	defer sessions.StopAndWait()

	// Sponsor checkout and webhook reconciler
	tiers := sponsor.DefaultTiers()
	checkout := sponsor.NewCheckoutService(sponsor.CheckoutConfig{
		SuccessURL: cfg.Checkout.SuccessURL,
		CancelURL:  cfg.Checkout.CancelURL,
	}, dataStore, processor, tiers)
	reconciler := sponsor.NewReconciler(dataStore, processor)

	// Shop catalog and feed content
	catalog := shop.DefaultCatalog()
	generator := content.DefaultProvider(time.Now().UnixNano())

	handler := rest.NewHandler(
		sessions,
		engine,
		dataStore,
		catalog,
		generator,
		checkout,
		tiers,
		reconciler,
		cfg.Webhook.SigningSecret,
		cfg.Webhook.Tolerance,
	)

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTSecret: cfg.Auth.JWTSecret,
			APIKeys:   cfg.Auth.APIKeys,
		},
	}

	// Create and start server
	srv := server.New(serverConfig, handler)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
