package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vastrakart/vastrakart-backend/config"
	"github.com/vastrakart/vastrakart-backend/internal/app/controller"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	"github.com/vastrakart/vastrakart-backend/internal/db"
	"github.com/vastrakart/vastrakart-backend/internal/events"
	"github.com/vastrakart/vastrakart-backend/internal/middleware"
	"github.com/vastrakart/vastrakart-backend/internal/router"
	"github.com/vastrakart/vastrakart-backend/internal/scheduler"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"github.com/vastrakart/vastrakart-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting VASTRAKART Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Cart persistence: Redis in production, in-process fallback otherwise
	var kv repository.KVStore
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer redis.Close()
		kv = redis.NewKV()
	} else {
		logger.Warn("Redis disabled; cart persistence is in-process only", nil)
		kv = repository.NewMemoryKV()
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(kv, cfg.Cart.GuestPartitionTTL)

	// Initialize services
	productService := service.NewProductService(productRepo)
	cartSessions := service.NewCartSessionManager(cartRepo)

	// Cart event stream (optional)
	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Events.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		defer publisher.Close()
		logger.Info("Cart event publishing enabled", map[string]interface{}{
			"brokers": cfg.Events.Brokers,
			"topic":   cfg.Events.Topic,
		})
	}

	// Initialize controllers
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartSessions, productService, publisher)
	checkoutController := controller.NewCheckoutController(cartSessions, productService, cfg.Checkout)

	// Initialize middleware
	identityMiddleware := middleware.NewIdentityMiddleware(cfg.JWT.Secret)

	// Session maintenance scheduler
	maintenance := scheduler.NewCartMaintenanceScheduler(cartSessions, cfg.Cart.FlushInterval, cfg.Cart.SessionIdleTTL)
	if err := maintenance.Start(); err != nil {
		logger.Fatal("Failed to start cart maintenance scheduler", err)
	}
	defer maintenance.Stop()

	// Setup router
	r := router.NewRouter(
		productController,
		cartController,
		checkoutController,
		identityMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	// Flush every live cart before exit; write-behind saves may still be in flight
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cartSessions.FlushAll(ctx)

	logger.Info("Server stopped successfully")
}
