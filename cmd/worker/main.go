package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aman0246jploft/kudsun-backend/internal/clients"
	"github.com/Aman0246jploft/kudsun-backend/internal/config"
	"github.com/Aman0246jploft/kudsun-backend/internal/db"
	"github.com/Aman0246jploft/kudsun-backend/internal/events"
	"github.com/Aman0246jploft/kudsun-backend/internal/metrics"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/Aman0246jploft/kudsun-backend/internal/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	orderRepo := repositories.NewOrderRepo(pool)
	disputeRepo := repositories.NewDisputeRepo(pool)
	walletRepo := repositories.NewWalletRepo(pool)
	withdrawRepo := repositories.NewWithdrawRepo(pool)
	revenueRepo := repositories.NewRevenueRepo(pool)
	feeRepo := repositories.NewFeeRepo(pool)

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)
	m := metrics.New()
	notifier := clients.NewHTTPNotificationClient(cfg.NotifierBaseURL, log)
	walletService := services.NewWalletService(pool, walletRepo, withdrawRepo, revenueRepo, feeRepo, notifier, log, m)
	settlementService := services.NewSettlementService(pool, orderRepo, disputeRepo, revenueRepo, feeRepo, walletService, publisher, cfg, log, m)

	// A resolved dispute should not wait for the next sweep tick: settle
	// (or finalize with the reduced base) as soon as the event lands.
	if err := subscriber.Subscribe(ctx, events.StreamDisputes, func(e events.Event) {
		if e.Type != events.EventDisputeResolved {
			return
		}
		raw, _ := e.Payload["order_id"].(string)
		orderID, err := uuid.Parse(raw)
		if err != nil {
			log.Warn("dispute event with bad order_id", zap.String("order_id", raw))
			return
		}
		if err := settlementService.SettleOrder(ctx, orderID); err != nil {
			log.Warn("settle after dispute resolution failed",
				zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}); err != nil {
		log.Fatal("failed to subscribe to dispute events", zap.Error(err))
	}

	log.Info("worker started")

	promoteTicker := time.NewTicker(5 * time.Minute)
	settleTicker := time.NewTicker(1 * time.Minute)
	defer promoteTicker.Stop()
	defer settleTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-promoteTicker.C:
			settlementService.PromoteShipped(ctx)
		case <-settleTicker.C:
			settlementService.SettleDelivered(ctx)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}
