package services

import (
	"context"
	"errors"
	"time"

	"github.com/Aman0246jploft/kudsun-backend/internal/config"
	"github.com/Aman0246jploft/kudsun-backend/internal/events"
	"github.com/Aman0246jploft/kudsun-backend/internal/metrics"
	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SettlementService runs the recurring sweeps that move orders through the
// time-driven part of their lifecycle and pay sellers out. Both sweeps are
// idempotent: the transition table rejects repeated moves and the ledger's
// duplicate-payout guard makes re-settling a no-op.
type SettlementService struct {
	pool        *pgxpool.Pool
	orderRepo   *repositories.OrderRepo
	disputeRepo *repositories.DisputeRepo
	revenueRepo *repositories.RevenueRepo
	feeRepo     *repositories.FeeRepo
	wallet      *WalletService
	publisher   events.Publisher
	cfg         *config.Config
	log         *zap.Logger
	metrics     *metrics.Metrics
}

func NewSettlementService(
	pool *pgxpool.Pool,
	orderRepo *repositories.OrderRepo,
	disputeRepo *repositories.DisputeRepo,
	revenueRepo *repositories.RevenueRepo,
	feeRepo *repositories.FeeRepo,
	wallet *WalletService,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
) *SettlementService {
	return &SettlementService{
		pool:        pool,
		orderRepo:   orderRepo,
		disputeRepo: disputeRepo,
		revenueRepo: revenueRepo,
		feeRepo:     feeRepo,
		wallet:      wallet,
		publisher:   publisher,
		cfg:         cfg,
		log:         log,
		metrics:     m,
	}
}

// PastGracePeriod reports whether a timestamp is older than graceDays.
func PastGracePeriod(ts, now time.Time, graceDays int) bool {
	return !ts.After(now.AddDate(0, 0, -graceDays))
}

// PromoteShipped advances shipped orders past the shipping grace period to
// delivered. One failed order logs and the sweep continues.
func (s *SettlementService) PromoteShipped(ctx context.Context) {
	started := time.Now()
	defer func() {
		s.metrics.SweepDuration.WithLabelValues("promote_shipped").Observe(time.Since(started).Seconds())
	}()
	deadline := started.Add(s.cfg.SweepMaxDuration)

	cutoff := started.AddDate(0, 0, -s.cfg.ShippedGraceDays)
	orders, err := s.orderRepo.ListShippedBefore(ctx, cutoff, s.cfg.SweepBatchSize)
	if err != nil {
		s.log.Error("promote sweep: listing shipped orders failed", zap.Error(err))
		s.metrics.SweepErrorsTotal.WithLabelValues("promote_shipped").Inc()
		return
	}

	for _, o := range orders {
		if time.Now().After(deadline) {
			s.log.Warn("promote sweep: time budget exhausted",
				zap.Int("remaining", len(orders)))
			return
		}
		if err := s.withRetry(ctx, func() error { return s.promoteOne(ctx, o.ID) }); err != nil {
			s.log.Error("promote sweep: order failed",
				zap.String("order_id", o.ID.String()), zap.Error(err))
			s.metrics.SweepErrorsTotal.WithLabelValues("promote_shipped").Inc()
		}
	}
}

func (s *SettlementService) promoteOne(ctx context.Context, orderID uuid.UUID) error {
	ob := events.NewOutbox(s.publisher, s.log)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	o, err := orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != models.OrderStatusShipped {
		return nil // another sweep got here first
	}

	now := time.Now()
	oldStatus := o.Status
	if err := orders.MarkDelivered(ctx, o.ID, now); err != nil {
		return err
	}
	note := "auto delivered after shipping grace period"
	if err := orders.InsertHistory(ctx, &models.OrderStatusHistory{
		OrderID:   o.ID,
		OldStatus: oldStatus,
		NewStatus: models.OrderStatusDelivered,
		ActorType: models.ActorSystem,
		Note:      &note,
	}); err != nil {
		return err
	}
	ob.Add(events.StreamOrders, events.Event{
		Type: events.EventOrderStatusChanged,
		Payload: map[string]any{
			"order_id":   o.ID.String(),
			"old_status": oldStatus,
			"new_status": models.OrderStatusDelivered,
			"actor_type": models.ActorSystem,
		},
	})

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	ob.Flush(ctx)
	s.metrics.RecordTransition(oldStatus, models.OrderStatusDelivered, models.ActorSystem)
	return nil
}

// SettleDelivered completes and pays out delivered orders past the
// processing grace period, plus orders the buyer already confirmed.
// Unresolved disputes and duplicate payouts are absorbed, not failures.
func (s *SettlementService) SettleDelivered(ctx context.Context) {
	started := time.Now()
	defer func() {
		s.metrics.SweepDuration.WithLabelValues("settle_delivered").Observe(time.Since(started).Seconds())
	}()
	deadline := started.Add(s.cfg.SweepMaxDuration)

	cutoff := started.AddDate(0, 0, -s.cfg.ProcessingDayLimit)
	due, err := s.orderRepo.ListDeliveredBefore(ctx, cutoff, s.cfg.SweepBatchSize)
	if err != nil {
		s.log.Error("settle sweep: listing delivered orders failed", zap.Error(err))
		s.metrics.SweepErrorsTotal.WithLabelValues("settle_delivered").Inc()
		return
	}
	confirmed, err := s.orderRepo.ListConfirmedReceipts(ctx, s.cfg.SweepBatchSize)
	if err != nil {
		s.log.Error("settle sweep: listing confirmed receipts failed", zap.Error(err))
		s.metrics.SweepErrorsTotal.WithLabelValues("settle_delivered").Inc()
		return
	}

	for _, o := range append(confirmed, due...) {
		if time.Now().After(deadline) {
			s.log.Warn("settle sweep: time budget exhausted")
			return
		}
		if err := s.withRetry(ctx, func() error { return s.SettleOrder(ctx, o.ID) }); err != nil {
			switch {
			case errors.Is(err, models.ErrDisputeUnresolved):
				s.log.Warn("settle sweep: order blocked by open dispute",
					zap.String("order_id", o.ID.String()))
			case errors.Is(err, models.ErrDuplicatePayout):
				s.log.Warn("settle sweep: payout already recorded",
					zap.String("order_id", o.ID.String()))
			default:
				s.log.Error("settle sweep: order failed",
					zap.String("order_id", o.ID.String()), zap.Error(err))
				s.metrics.SweepErrorsTotal.WithLabelValues("settle_delivered").Inc()
			}
		}
	}
}

// SettleOrder finishes one order: settlement base after any dispute
// adjustment, fee breakdown, seller credit, revenue rows and the completed
// transition, all in one transaction.
func (s *SettlementService) SettleOrder(ctx context.Context, orderID uuid.UUID) error {
	service, err := s.feeRepo.GetActive(ctx, models.FeeServiceCharge)
	if err != nil {
		return err
	}
	taxSetting, err := s.feeRepo.GetActive(ctx, models.FeeTax)
	if err != nil {
		return err
	}

	ob := events.NewOutbox(s.publisher, s.log)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	o, err := orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != models.OrderStatusDelivered && o.Status != models.OrderStatusConfirmReceipt {
		return nil // already settled or moved elsewhere
	}
	if o.PaymentStatus != models.PaymentStatusCompleted {
		return nil // unpaid orders never settle
	}

	var dispute *models.Dispute
	if o.DisputeID != nil {
		dispute, err = s.disputeRepo.WithTx(tx).GetByID(ctx, *o.DisputeID)
		if err != nil {
			return err
		}
	}
	base, adjusted, err := SettlementBaseFor(o.Subtotal, dispute)
	if err != nil {
		return err
	}
	breakdown := ComputeSettlementBreakdown(base, service, taxSetting)

	if _, err := s.wallet.CreditInTx(ctx, tx, o.SellerID, o.ID, breakdown); err != nil {
		return err
	}

	revenues := s.revenueRepo.WithTx(tx)
	if breakdown.ServiceSetting != nil && !breakdown.ServiceCharge.IsZero() {
		if err := revenues.Create(ctx, &models.PlatformRevenue{
			OrderID:          &o.ID,
			RevenueType:      models.FeeServiceCharge,
			Amount:           breakdown.ServiceCharge,
			CalculationType:  breakdown.ServiceSetting.Type,
			CalculationValue: breakdown.ServiceSetting.Value,
			BaseAmount:       base,
			Status:           models.RevenueStatusCompleted,
		}); err != nil {
			return err
		}
	}
	if breakdown.TaxSetting != nil && !breakdown.TaxCharge.IsZero() {
		if err := revenues.Create(ctx, &models.PlatformRevenue{
			OrderID:          &o.ID,
			RevenueType:      models.FeeTax,
			Amount:           breakdown.TaxCharge,
			CalculationType:  breakdown.TaxSetting.Type,
			CalculationValue: breakdown.TaxSetting.Value,
			BaseAmount:       base,
			Status:           models.RevenueStatusCompleted,
		}); err != nil {
			return err
		}
	}

	now := time.Now()
	oldStatus := o.Status
	if err := orders.MarkCompleted(ctx, o.ID, now); err != nil {
		return err
	}
	note := "settled"
	if adjusted {
		note = "settled with dispute adjustment"
	}
	if err := orders.InsertHistory(ctx, &models.OrderStatusHistory{
		OrderID:   o.ID,
		OldStatus: oldStatus,
		NewStatus: models.OrderStatusCompleted,
		ActorType: models.ActorSystem,
		Note:      &note,
	}); err != nil {
		return err
	}

	ob.Add(events.StreamSettlements, events.Event{
		Type: events.EventOrderSettled,
		Payload: map[string]any{
			"order_id":         o.ID.String(),
			"seller_id":        o.SellerID.String(),
			"net_amount":       breakdown.Net.String(),
			"dispute_adjusted": adjusted,
		},
	})
	ob.Add(events.StreamOrders, events.Event{
		Type: events.EventOrderStatusChanged,
		Payload: map[string]any{
			"order_id":   o.ID.String(),
			"old_status": oldStatus,
			"new_status": models.OrderStatusCompleted,
			"actor_type": models.ActorSystem,
		},
	})

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	ob.Flush(ctx)

	net, _ := breakdown.Net.Float64()
	s.metrics.RecordSettlement(net)
	s.metrics.RecordTransition(oldStatus, models.OrderStatusCompleted, models.ActorSystem)
	s.log.Info("order settled",
		zap.String("order_id", o.ID.String()),
		zap.String("seller_id", o.SellerID.String()),
		zap.String("net_amount", breakdown.Net.String()),
		zap.Bool("dispute_adjusted", adjusted),
	)
	return nil
}

// withRetry runs fn and retries once after the configured backoff. The
// idempotency guards make the retry safe.
func (s *SettlementService) withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil ||
		errors.Is(err, models.ErrDisputeUnresolved) ||
		errors.Is(err, models.ErrDuplicatePayout) {
		return err
	}
	select {
	case <-time.After(s.cfg.SweepRetryBackoff):
	case <-ctx.Done():
		return ctx.Err()
	}
	return fn()
}
