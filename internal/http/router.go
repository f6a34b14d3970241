package http

import (
	"time"

	"github.com/Aman0246jploft/kudsun-backend/internal/config"
	"github.com/Aman0246jploft/kudsun-backend/internal/http/handlers"
	"github.com/Aman0246jploft/kudsun-backend/internal/middleware"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	userHandler *handlers.UserHandler,
	orderHandler *handlers.OrderHandler,
	disputeHandler *handlers.DisputeHandler,
	walletHandler *handlers.WalletHandler,
	bidHandler *handlers.BidHandler,
	feeHandler *handlers.FeeHandler,
	revenueHandler *handlers.RevenueHandler,
	webhookHandler *handlers.WebhookHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Prometheus scrape endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	// Gateway webhooks (public, authenticated by shared secret header)
	api.Post("/webhooks/payment", webhookHandler.PaymentCallback)

	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)

	// Checkout + orders
	protected.Post("/checkout", orderHandler.Checkout)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Get("/orders/:id/history", orderHandler.GetHistory)
	protected.Get("/orders/:id/tracking", orderHandler.GetTracking)
	protected.Post("/orders/:id/confirm", orderHandler.ConfirmOrder)
	protected.Post("/orders/:id/cancel", orderHandler.CancelOrder)
	protected.Post("/orders/:id/ship", orderHandler.ShipOrder)
	protected.Post("/orders/:id/deliver", orderHandler.MarkDelivered)
	protected.Post("/orders/:id/confirm-receipt", orderHandler.ConfirmReceipt)
	protected.Post("/orders/:id/return", orderHandler.ReturnOrder)

	// Disputes
	protected.Post("/orders/:id/disputes", disputeHandler.CreateDispute)
	protected.Post("/disputes/:id/respond", disputeHandler.Respond)
	protected.Get("/disputes/:id", disputeHandler.GetDispute)

	// Wallet + withdrawals
	protected.Get("/wallet", walletHandler.GetWallet)
	protected.Get("/wallet/ledger", walletHandler.ListLedger)
	protected.Post("/withdrawals", walletHandler.CreateWithdrawal)
	protected.Get("/withdrawals", walletHandler.ListWithdrawals)

	// Bids
	protected.Post("/products/:id/bids", bidHandler.PlaceBid)
	protected.Get("/products/:id/bids", bidHandler.ListBids)

	// Fee settings
	protected.Get("/fees", feeHandler.ListFees)

	// Admin
	admin := protected.Group("", middleware.AdminMiddleware())
	admin.Get("/disputes", disputeHandler.ListDisputes)
	admin.Post("/disputes/:id/decide", disputeHandler.Decide)
	admin.Post("/disputes/:id/reject", disputeHandler.Reject)
	admin.Post("/disputes/:id/close", disputeHandler.Close)
	admin.Post("/withdrawals/:id/resolve", walletHandler.ResolveWithdrawal)
	admin.Get("/orders/:id/revenues", revenueHandler.ListOrderRevenues)
}
