package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Aman0246jploft/kudsun-backend/internal/clients"
	"github.com/Aman0246jploft/kudsun-backend/internal/config"
	"github.com/Aman0246jploft/kudsun-backend/internal/events"
	"github.com/Aman0246jploft/kudsun-backend/internal/metrics"
	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DisputeService struct {
	pool        *pgxpool.Pool
	disputeRepo *repositories.DisputeRepo
	orderRepo   *repositories.OrderRepo
	notifier    clients.NotificationClient
	publisher   events.Publisher
	cfg         *config.Config
	log         *zap.Logger
	metrics     *metrics.Metrics
}

func NewDisputeService(
	pool *pgxpool.Pool,
	disputeRepo *repositories.DisputeRepo,
	orderRepo *repositories.OrderRepo,
	notifier clients.NotificationClient,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
) *DisputeService {
	return &DisputeService{
		pool:        pool,
		disputeRepo: disputeRepo,
		orderRepo:   orderRepo,
		notifier:    notifier,
		publisher:   publisher,
		cfg:         cfg,
		log:         log,
		metrics:     m,
	}
}

// WithinDisputeWindow reports whether now is still inside the dispute
// window that opens at deliveredAt. The boundary instant itself is outside.
func WithinDisputeWindow(deliveredAt, now time.Time, windowDays int) bool {
	return now.Before(deliveredAt.AddDate(0, 0, windowDays))
}

// Create raises a dispute on a delivered order. The order is forced into
// dispute status outside the normal transition table; resolution hands it
// back to the settlement path.
func (s *DisputeService) Create(ctx context.Context, orderID, buyerID uuid.UUID, claimType, description string, evidence []string) (*models.Dispute, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	disputes := s.disputeRepo.WithTx(tx)

	o, err := orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, models.ErrNotAuthorized
	}
	if o.DeliveredAt == nil || !WithinDisputeWindow(*o.DeliveredAt, time.Now(), s.cfg.DisputeWindowDays) {
		return nil, models.ErrWindowExpired
	}
	if models.IsTerminalStatus(o.Status) {
		return nil, models.ErrWindowExpired
	}

	if existing, err := disputes.GetUnresolvedByOrder(ctx, orderID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.ErrDuplicateDispute
	}

	d := &models.Dispute{
		OrderID:          orderID,
		RaisedBy:         buyerID,
		SellerID:         o.SellerID,
		ClaimType:        claimType,
		ClaimDescription: description,
		EvidenceURLs:     evidence,
		Status:           models.DisputeStatusPending,
	}
	if err := disputes.Create(ctx, d); err != nil {
		return nil, err
	}

	oldStatus := o.Status
	if err := orders.SetDispute(ctx, orderID, &d.ID, models.OrderStatusDispute); err != nil {
		return nil, err
	}
	note := "dispute raised: " + claimType
	if err := orders.InsertHistory(ctx, &models.OrderStatusHistory{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: models.OrderStatusDispute,
		ActorType: models.ActorBuyer,
		ActorID:   &buyerID,
		Note:      &note,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.metrics.DisputesOpenedTotal.Inc()
	s.notifier.Notify(ctx, o.SellerID, "dispute_opened", "Dispute opened",
		"The buyer opened a dispute on your order", map[string]any{
			"order_id":   orderID.String(),
			"dispute_id": d.ID.String(),
		})
	return d, nil
}

// SellerRespond records the seller's answer and moves the dispute to
// under_review.
func (s *DisputeService) SellerRespond(ctx context.Context, disputeID, sellerID uuid.UUID, responseType, description string, attachments []string) (*models.Dispute, error) {
	d, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d.SellerID != sellerID {
		return nil, models.ErrNotAuthorized
	}
	if d.Status != models.DisputeStatusPending {
		return nil, fmt.Errorf("dispute is %s, response expected while pending", d.Status)
	}

	d.ResponseType = &responseType
	d.ResponseDescription = &description
	d.ResponseAttachments = attachments
	d.Status = models.DisputeStatusUnderReview
	if err := s.disputeRepo.SetResponse(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Decide closes the review with a verdict. For buyer decisions the refund
// percent must be within [0,100]; seller decisions always store zero. The
// order returns to delivered so the scheduler picks it up on its next sweep.
func (s *DisputeService) Decide(ctx context.Context, disputeID, adminID uuid.UUID, decision string, refundPercent int, note *string) (*models.Dispute, error) {
	switch decision {
	case models.DisputeDecisionBuyer:
		if refundPercent < 0 || refundPercent > 100 {
			return nil, fmt.Errorf("refund percent %d out of range [0,100]", refundPercent)
		}
	case models.DisputeDecisionSeller:
		refundPercent = 0
	default:
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	disputes := s.disputeRepo.WithTx(tx)
	orders := s.orderRepo.WithTx(tx)

	d, err := disputes.GetByIDForUpdate(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !models.IsUnresolvedDisputeStatus(d.Status) {
		return nil, models.ErrAlreadyProcessed
	}

	d.Decision = &decision
	d.RefundPercent = refundPercent
	d.DecisionNote = note
	d.ResolvedBy = &adminID
	d.Status = models.DisputeStatusResolved
	if err := disputes.SetDecision(ctx, d); err != nil {
		return nil, err
	}
	if err := s.returnOrderToScheduler(ctx, orders, d, "dispute resolved for "+decision); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.metrics.DisputesResolvedTotal.WithLabelValues(decision).Inc()

	if err := s.publisher.Publish(ctx, events.StreamDisputes, events.Event{
		Type: events.EventDisputeResolved,
		Payload: map[string]any{
			"dispute_id":     d.ID.String(),
			"order_id":       d.OrderID.String(),
			"decision":       decision,
			"refund_percent": refundPercent,
		},
	}); err != nil {
		s.log.Warn("failed to publish dispute resolution", zap.Error(err))
	}
	return d, nil
}

// Reject dismisses the dispute without a verdict; Close archives one the
// parties settled themselves. Both hand the order back to the scheduler.
func (s *DisputeService) Reject(ctx context.Context, disputeID, adminID uuid.UUID, note *string) (*models.Dispute, error) {
	historyNote := "dispute rejected"
	if note != nil && *note != "" {
		historyNote = "dispute rejected: " + *note
	}
	return s.dismiss(ctx, disputeID, models.DisputeStatusRejected, historyNote)
}

func (s *DisputeService) Close(ctx context.Context, disputeID, adminID uuid.UUID) (*models.Dispute, error) {
	return s.dismiss(ctx, disputeID, models.DisputeStatusClosed, "dispute closed")
}

func (s *DisputeService) dismiss(ctx context.Context, disputeID uuid.UUID, status, note string) (*models.Dispute, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	disputes := s.disputeRepo.WithTx(tx)
	orders := s.orderRepo.WithTx(tx)

	d, err := disputes.GetByIDForUpdate(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !models.IsUnresolvedDisputeStatus(d.Status) {
		return nil, models.ErrAlreadyProcessed
	}

	d.Status = status
	if err := disputes.UpdateStatus(ctx, d.ID, status); err != nil {
		return nil, err
	}
	if err := s.returnOrderToScheduler(ctx, orders, d, note); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DisputeService) returnOrderToScheduler(ctx context.Context, orders *repositories.OrderRepo, d *models.Dispute, note string) error {
	o, err := orders.GetByIDForUpdate(ctx, d.OrderID)
	if err != nil {
		return err
	}
	if o.Status != models.OrderStatusDispute {
		return nil
	}
	if err := orders.UpdateStatus(ctx, o.ID, models.OrderStatusDelivered); err != nil {
		return err
	}
	return orders.InsertHistory(ctx, &models.OrderStatusHistory{
		OrderID:   o.ID,
		OldStatus: models.OrderStatusDispute,
		NewStatus: models.OrderStatusDelivered,
		ActorType: models.ActorSystem,
		Note:      &note,
	})
}

func (s *DisputeService) Get(ctx context.Context, disputeID, requesterID uuid.UUID, role string) (*models.Dispute, error) {
	d, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && d.RaisedBy != requesterID && d.SellerID != requesterID {
		return nil, models.ErrNotAuthorized
	}
	return d, nil
}

// SettlementBaseFor computes the amount settlement starts from given the
// order's latest dispute (nil when it never had one). An unresolved dispute
// blocks settlement entirely. Only buyer verdicts reduce the base.
func SettlementBaseFor(subtotal decimal.Decimal, d *models.Dispute) (decimal.Decimal, bool, error) {
	if d == nil {
		return subtotal, false, nil
	}
	if models.IsUnresolvedDisputeStatus(d.Status) {
		return decimal.Zero, false, models.ErrDisputeUnresolved
	}
	if d.Status == models.DisputeStatusResolved &&
		d.Decision != nil && *d.Decision == models.DisputeDecisionBuyer && d.RefundPercent > 0 {
		keep := decimal.NewFromInt(int64(100 - d.RefundPercent))
		return subtotal.Mul(keep).Div(oneHundred), true, nil
	}
	return subtotal, false, nil
}

func (s *DisputeService) List(ctx context.Context, f repositories.DisputeFilter) ([]models.Dispute, error) {
	return s.disputeRepo.List(ctx, f)
}

// SettlementBase resolves the order's dispute state and applies
// SettlementBaseFor.
func (s *DisputeService) SettlementBase(ctx context.Context, o *models.Order) (decimal.Decimal, bool, error) {
	var d *models.Dispute
	if o.DisputeID != nil {
		var err error
		d, err = s.disputeRepo.GetByID(ctx, *o.DisputeID)
		if err != nil {
			return decimal.Zero, false, err
		}
	}
	return SettlementBaseFor(o.Subtotal, d)
}
