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

	"github.com/gin-gonic/gin"

	"saldo/internal/config"
	"saldo/internal/database"
	"saldo/internal/events"
	"saldo/internal/export"
	"saldo/internal/logger"
	"saldo/internal/server"
	"saldo/internal/validator"
)

// @title           Saldo API
// @version         1.0
// @description     Saldo tracks accounts, categorized transactions, budgets and balance forecasts.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Operator key for /api/admin endpoints.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.SetLevel(appConfig.LogLevel); err != nil {
		return err
	}
	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if cerr := dbManager.Close(); cerr != nil {
			log.Warnw("failed to close database", "error", cerr)
		}
	}()

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	seeds, err := config.LoadCategorySeeds(appConfig.DefaultCategoriesFile)
	if err != nil {
		return fmt.Errorf("failed to load default categories: %w", err)
	}

	validator.Register()

	opts := server.OptionsFromConfig(appConfig)
	opts.CategorySeeds = seeds

	if appConfig.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP: %w", err)
		}
		defer publisher.Close()
		opts.Publisher = publisher
		log.Infow("publishing transaction events", "exchange", appConfig.AMQPExchange, "queue", appConfig.AMQPQueue)
	}

	if appConfig.ReportBucket != "" {
		uploader, err := export.NewGCSUploader(context.Background(), appConfig.ReportBucket)
		if err != nil {
			return fmt.Errorf("failed to create report uploader: %w", err)
		}
		defer uploader.Close()
		opts.Uploader = uploader
		log.Infow("report uploads enabled", "bucket", appConfig.ReportBucket)
	}

	router := server.New(dbManager.DB(), opts)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Saldo server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
