package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Aman0246jploft/kudsun-backend/internal/carrier"
	"github.com/Aman0246jploft/kudsun-backend/internal/clients"
	"github.com/Aman0246jploft/kudsun-backend/internal/config"
	"github.com/Aman0246jploft/kudsun-backend/internal/db"
	"github.com/Aman0246jploft/kudsun-backend/internal/events"
	apphttp "github.com/Aman0246jploft/kudsun-backend/internal/http"
	"github.com/Aman0246jploft/kudsun-backend/internal/http/handlers"
	"github.com/Aman0246jploft/kudsun-backend/internal/metrics"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/Aman0246jploft/kudsun-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	disputeRepo := repositories.NewDisputeRepo(pool)
	walletRepo := repositories.NewWalletRepo(pool)
	withdrawRepo := repositories.NewWithdrawRepo(pool)
	revenueRepo := repositories.NewRevenueRepo(pool)
	bidRepo := repositories.NewBidRepo(pool)
	feeRepo := repositories.NewFeeRepo(pool)

	// Events + metrics
	publisher := events.NewRedisPublisher(rdb, log)
	m := metrics.New()

	// External collaborators
	inventory := clients.NewHTTPInventoryClient(cfg.InventoryBaseURL, log)
	notifier := clients.NewHTTPNotificationClient(cfg.NotifierBaseURL, log)
	tracker := carrier.NewTracker(cfg.CarrierTrackBaseURL, cfg.CarrierFetchTimeoutMS, cfg.CarrierFetchMaxRetries, log)

	// Services
	orderService := services.NewOrderService(pool, orderRepo, productRepo, revenueRepo, bidRepo, feeRepo, inventory, notifier, publisher, cfg, log, m)
	disputeService := services.NewDisputeService(pool, disputeRepo, orderRepo, notifier, publisher, cfg, log, m)
	walletService := services.NewWalletService(pool, walletRepo, withdrawRepo, revenueRepo, feeRepo, notifier, log, m)
	bidService := services.NewBidService(pool, bidRepo, productRepo, publisher, log, m)

	// Handlers
	userHandler := handlers.NewUserHandler(userRepo, log)
	orderHandler := handlers.NewOrderHandler(orderService, tracker, log)
	disputeHandler := handlers.NewDisputeHandler(disputeService, log)
	walletHandler := handlers.NewWalletHandler(walletService, log)
	bidHandler := handlers.NewBidHandler(bidService, log)
	feeHandler := handlers.NewFeeHandler(feeRepo, log)
	revenueHandler := handlers.NewRevenueHandler(revenueRepo, log)
	webhookHandler := handlers.NewWebhookHandler(orderService, cfg, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, userHandler, orderHandler, disputeHandler, walletHandler, bidHandler, feeHandler, revenueHandler, webhookHandler)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
