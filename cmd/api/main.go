package main

import (
	"fmt"
	"os"

	"vestora/internal/config"
	"vestora/internal/database"
	"vestora/internal/logger"
	"vestora/internal/server"
)

// @title           Vestora API
// @version         1.0
// @description     Vestora tracks investment portfolios: owners record assets, admins curate them, and per-owner balances are kept in sync with the live asset list.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey OpsKey
// @in header
// @name X-API-Key

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

	// Initialize database configuration
	dbConfig, err := database.NewConfig(appConfig)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	srv, err := server.New(appConfig, dbManager.DB())
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	scheduler, err := srv.Reconciler.Schedule(appConfig.ResyncSchedule)
	if err != nil {
		return fmt.Errorf("failed to schedule reconciliation: %w", err)
	}
	if scheduler != nil {
		scheduler.Start()
		defer scheduler.Stop()
		log.Infof("Balance reconciliation scheduled (%s)", appConfig.ResyncSchedule)
	}

	log.Infof("Starting Vestora server on port %s (record store: %s)", appConfig.Port, srv.StoreStatus)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return srv.Router.Run(":" + appConfig.Port)
}
