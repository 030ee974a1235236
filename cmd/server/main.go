package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/glamweave/dyebudget/configs"
	"github.com/glamweave/dyebudget/internal/application/services"
	"github.com/glamweave/dyebudget/internal/core/ports"
	"github.com/glamweave/dyebudget/internal/infrastructure/catalog"
	"github.com/glamweave/dyebudget/internal/infrastructure/health"
	"github.com/glamweave/dyebudget/internal/infrastructure/httpserver"
	"github.com/glamweave/dyebudget/internal/infrastructure/redis"
	"github.com/glamweave/dyebudget/internal/infrastructure/universalis"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting dyebudget service...")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Dye catalog is embedded reference data
	dyeCatalog, err := catalog.NewStaticCatalog()
	if err != nil {
		logger.Fatal("Failed to load dye catalog:", err)
	}
	logger.Infof("Loaded dye catalog with %d entries", len(dyeCatalog.GetAll()))

	// Wire the cache-aside price pipeline
	redisCache := redis.NewRedisCache(redisClient, cfg.Cache.KeyPrefix)
	priceCache := services.NewPriceCacheService(redisCache, &cfg.Cache, logger)
	priceSource := universalis.NewClient(&cfg.Universalis, logger)
	priceService := services.NewPriceService(priceCache, priceSource, logger)
	budgetService := services.NewBudgetService(dyeCatalog, priceService, logger)

	hcSlice := []ports.HealthChecker{
		health.NewRedisHealthChecker(redisClient),
		health.NewMarketAPIHealthChecker(priceSource),
	}

	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	deps := httpserver.ServerDeps{
		BudgetService:  budgetService,
		PriceService:   priceService,
		PriceCache:     priceCache,
		PriceSource:    priceSource,
		Catalog:        dyeCatalog,
		HealthCheckers: hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
