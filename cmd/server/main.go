package main

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/internal/app/controller"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/internal/router"
	"github.com/storefront/storefront-backend/internal/scheduler"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/payment/stripe"
	"github.com/storefront/storefront-backend/pkg/redis"
	"github.com/storefront/storefront-backend/pkg/util"
)

const (
	eventLockTTL    = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: logFormat == "console",
	})

	logger.Info("Starting storefront backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"db_driver":   cfg.Database.Driver,
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

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	sqlDB, err := db.GetDB().DB()
	if err != nil {
		logger.Fatal("Failed to get database handle", err)
	}

	// Redis is optional; without it concurrent deliveries rely on the event table alone
	var locker service.EventLocker
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, continuing without event locks", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close redis connection", err)
				}
			}()
			locker = redis.NewLocker(redis.GetClient(), "storefront:", eventLockTTL)
		}
	}

	// Payment processor
	var gateway service.PaymentGateway
	if cfg.Stripe.SecretKey != "" {
		client, err := stripe.NewClient(stripe.Config{
			SecretKey:         cfg.Stripe.SecretKey,
			APIBaseURL:        cfg.Stripe.APIBaseURL,
			Currency:          cfg.Stripe.Currency,
			SuccessURL:        cfg.Stripe.SuccessURL,
			CancelURL:         cfg.Stripe.CancelURL,
			MaxNetworkRetries: cfg.Stripe.MaxNetworkRetries,
		})
		if err != nil {
			logger.Fatal("Invalid stripe configuration", err)
		}
		gateway = client
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}

	var verifier controller.WebhookVerifier
	if cfg.Stripe.WebhookSecret != "" {
		verifier = stripe.NewWebhookVerifier(cfg.Stripe.WebhookSecret, cfg.Stripe.WebhookTolerance)
	} else {
		logger.Warn("STRIPE_WEBHOOK_SECRET not set, webhooks are acknowledged but not processed")
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	wishlistRepo := repository.NewWishlistRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	eventRepo := repository.NewPaymentEventRepository(db.GetDB())

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	checkoutService := service.NewCheckoutService(productRepo, cartRepo, gateway, service.CheckoutOptions{
		Currency:     cfg.Stripe.Currency,
		SuccessURL:   cfg.Stripe.SuccessURL,
		CancelURL:    cfg.Stripe.CancelURL,
		AssetBaseURL: cfg.Server.PublicURL,
	})
	orderService := service.NewOrderService(
		db.GetDB(),
		orderRepo,
		cartRepo,
		productRepo,
		eventRepo,
		locker,
		cfg.Stripe.Currency,
	)

	// Initialize controllers
	catalogController := controller.NewCatalogController(catalogService)
	cartController := controller.NewCartController(cartService)
	wishlistController := controller.NewWishlistController(wishlistService)
	checkoutController := controller.NewCheckoutController(checkoutService)
	webhookController := controller.NewWebhookController(orderService, verifier)
	orderController := controller.NewOrderController(orderService)

	authMiddleware := middleware.NewAuthMiddleware(util.TokenValidation{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	})

	// Setup router
	r := router.NewRouter(
		catalogController,
		cartController,
		wishlistController,
		checkoutController,
		webhookController,
		orderController,
		authMiddleware,
		sqlDB,
		cfg,
	)
	engine := r.Setup()

	// Housekeeping
	pruneScheduler := scheduler.NewPaymentEventScheduler(orderService, cfg.Scheduler.PaymentEventRetention)
	if err := pruneScheduler.Start(); err != nil {
		logger.Error("Failed to start payment event scheduler", err)
	} else {
		defer pruneScheduler.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
