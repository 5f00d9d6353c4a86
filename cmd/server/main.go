package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prasetyo/tokobarang-backend/config"
	"github.com/prasetyo/tokobarang-backend/internal/app/controller"
	"github.com/prasetyo/tokobarang-backend/internal/app/repository"
	"github.com/prasetyo/tokobarang-backend/internal/app/service"
	"github.com/prasetyo/tokobarang-backend/internal/db"
	"github.com/prasetyo/tokobarang-backend/internal/middleware"
	"github.com/prasetyo/tokobarang-backend/internal/router"
	"github.com/prasetyo/tokobarang-backend/internal/scheduler"
	"github.com/prasetyo/tokobarang-backend/internal/storage"
	"github.com/prasetyo/tokobarang-backend/pkg/logger"
	"github.com/prasetyo/tokobarang-backend/pkg/mailer"
	"github.com/prasetyo/tokobarang-backend/pkg/redis"
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

	logger.Info("Starting TOKOBARANG Backend Server", map[string]interface{}{
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

	// Token revocation store (optional)
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Token revocation store unavailable, continuing without it", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer redis.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	resetRepo := repository.NewPasswordResetRepository(db.GetDB())

	// Outbound email (optional)
	var mailSender mailer.Mailer
	if cfg.Mail.SendgridAPIKey != "" {
		mailSender = mailer.NewSendgridMailer(cfg.Mail.SendgridAPIKey, cfg.Mail.FromEmail, cfg.Mail.FromName)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, outbound email disabled", nil)
	}
	notificationService := service.NewNotificationService(mailSender)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, userRepo, notificationService, db.GetDB())
	resetService := service.NewPasswordResetService(resetRepo, userRepo, notificationService, cfg.Server.BaseURL)

	// One-time admin bootstrap on an empty user table
	if err := authService.BootstrapAdmin(
		cfg.Bootstrap.AdminUsername,
		cfg.Bootstrap.AdminEmail,
		cfg.Bootstrap.AdminPassword,
		cfg.Bootstrap.AdminName,
	); err != nil {
		logger.Fatal("Failed to bootstrap admin account", err)
	}

	// Initialize controllers
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)
	authController := controller.NewAuthController(authService, resetService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Reset token cleanup
	cleanupScheduler := scheduler.NewResetCleanupScheduler(resetService)
	if err := cleanupScheduler.Start(); err != nil {
		logger.Warn("Failed to start cleanup scheduler", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cleanupScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		cartController,
		orderController,
		uploadController,
		authMiddleware,
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
	logger.Info("Server stopped successfully")
}
