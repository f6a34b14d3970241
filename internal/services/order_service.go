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

type OrderService struct {
	pool        *pgxpool.Pool
	orderRepo   *repositories.OrderRepo
	productRepo *repositories.ProductRepo
	revenueRepo *repositories.RevenueRepo
	bidRepo     *repositories.BidRepo
	feeRepo     *repositories.FeeRepo
	inventory   clients.InventoryClient
	notifier    clients.NotificationClient
	publisher   events.Publisher
	cfg         *config.Config
	log         *zap.Logger
	metrics     *metrics.Metrics
}

func NewOrderService(
	pool *pgxpool.Pool,
	orderRepo *repositories.OrderRepo,
	productRepo *repositories.ProductRepo,
	revenueRepo *repositories.RevenueRepo,
	bidRepo *repositories.BidRepo,
	feeRepo *repositories.FeeRepo,
	inventory clients.InventoryClient,
	notifier clients.NotificationClient,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
) *OrderService {
	return &OrderService{
		pool:        pool,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		revenueRepo: revenueRepo,
		bidRepo:     bidRepo,
		feeRepo:     feeRepo,
		inventory:   inventory,
		notifier:    notifier,
		publisher:   publisher,
		cfg:         cfg,
		log:         log,
		metrics:     m,
	}
}

// transition validates and performs a status move inside the caller's
// transaction: apply updates the order row (a plain status update when nil),
// then one history row is appended and one event queued on the outbox.
// Metrics are the caller's job, after the transaction commits.
func (s *OrderService) transition(
	ctx context.Context,
	repo *repositories.OrderRepo,
	ob *events.Outbox,
	o *models.Order,
	newStatus, actorType string,
	actorID *uuid.UUID,
	note *string,
	apply func() error,
) error {
	if !models.IsValidTransition(actorType, o.Status, newStatus) {
		return models.NewInvalidTransition(actorType, o.Status, newStatus)
	}

	oldStatus := o.Status
	if apply == nil {
		apply = func() error { return repo.UpdateStatus(ctx, o.ID, newStatus) }
	}
	if err := apply(); err != nil {
		return err
	}
	o.Status = newStatus

	if err := repo.InsertHistory(ctx, &models.OrderStatusHistory{
		OrderID:   o.ID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ActorType: actorType,
		ActorID:   actorID,
		Note:      note,
	}); err != nil {
		return err
	}

	ob.Add(events.StreamOrders, events.Event{
		Type: events.EventOrderStatusChanged,
		Payload: map[string]any{
			"order_id":   o.ID.String(),
			"old_status": oldStatus,
			"new_status": newStatus,
			"actor_type": actorType,
		},
	})
	return nil
}

type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// Checkout creates a pending order from the buyer's cart. Auction products
// must have a winning bid held by the buyer; their price comes from that
// bid, never from the listing. Inventory is reserved before the order row
// is written and released again if the write fails.
func (s *OrderService) Checkout(ctx context.Context, buyerID uuid.UUID, items []CheckoutItem, shipping decimal.Decimal) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("checkout requires at least one item")
	}

	var sellerID uuid.UUID
	var orderItems []models.OrderItem
	subtotal := decimal.Zero
	auction := false

	for _, item := range items {
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		p, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if p.SellerID == buyerID {
			return nil, models.ErrNotAuthorized
		}
		if sellerID == uuid.Nil {
			sellerID = p.SellerID
		} else if sellerID != p.SellerID {
			return nil, fmt.Errorf("all items in an order must belong to one seller")
		}

		price := p.Price
		if p.IsAuction {
			auction = true
			win, err := s.winningBid(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			if win == nil || win.BidderID != buyerID {
				return nil, models.ErrNotAuthorized
			}
			price = win.Amount
			item.Quantity = 1
		}

		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   p.ID,
			Quantity:    item.Quantity,
			UnitPrice:   price,
			LocalPickup: p.LocalPickup,
		})
	}

	protection, err := s.feeRepo.GetActive(ctx, models.FeeBuyerProtection)
	if err != nil {
		return nil, fmt.Errorf("load buyer protection fee: %w", err)
	}
	tax, err := s.feeRepo.GetActive(ctx, models.FeeTax)
	if err != nil {
		return nil, fmt.Errorf("load tax setting: %w", err)
	}
	totals := ComputeOrderTotals(subtotal, shipping, protection, tax)

	order := &models.Order{
		BuyerID:            buyerID,
		SellerID:           sellerID,
		Status:             models.OrderStatusPending,
		PaymentStatus:      models.PaymentStatusPending,
		Subtotal:           totals.Subtotal,
		ShippingCharge:     totals.ShippingCharge,
		BuyerProtectionFee: totals.BuyerProtectionFee,
		Tax:                totals.Tax,
		GrandTotal:         totals.GrandTotal,
		Items:              orderItems,
	}

	var reserved []models.OrderItem
	for _, it := range order.Items {
		if err := s.inventory.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
			s.releaseItems(ctx, reserved)
			return nil, fmt.Errorf("reserve inventory: %w", err)
		}
		reserved = append(reserved, it)
	}

	ob := events.NewOutbox(s.publisher, s.log)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.releaseItems(ctx, reserved)
		return nil, err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	revenues := s.revenueRepo.WithTx(tx)

	if err := orders.Create(ctx, order); err != nil {
		s.releaseItems(ctx, reserved)
		return nil, err
	}
	if err := s.insertOrderRevenues(ctx, revenues, order, protection, tax); err != nil {
		s.releaseItems(ctx, reserved)
		return nil, err
	}

	ob.Add(events.StreamOrders, events.Event{
		Type: events.EventOrderCreated,
		Payload: map[string]any{
			"order_id":    order.ID.String(),
			"buyer_id":    order.BuyerID.String(),
			"seller_id":   order.SellerID.String(),
			"grand_total": order.GrandTotal.String(),
		},
	})

	if err := tx.Commit(ctx); err != nil {
		s.releaseItems(ctx, reserved)
		return nil, err
	}
	ob.Flush(ctx)

	s.metrics.OrdersCreatedTotal.WithLabelValues(fmt.Sprintf("%t", auction)).Inc()
	s.notifier.Notify(ctx, sellerID, "order_created", "New order",
		"You have a new order awaiting confirmation", map[string]any{"order_id": order.ID.String()})
	return order, nil
}

func (s *OrderService) insertOrderRevenues(ctx context.Context, revenues *repositories.RevenueRepo, o *models.Order, protection, tax *models.FeeSetting) error {
	for _, rev := range []struct {
		setting *models.FeeSetting
		name    string
		amount  decimal.Decimal
	}{
		{protection, models.FeeBuyerProtection, o.BuyerProtectionFee},
		{tax, models.FeeTax, o.Tax},
	} {
		if rev.setting == nil || rev.amount.IsZero() {
			continue
		}
		if err := revenues.Create(ctx, &models.PlatformRevenue{
			OrderID:          &o.ID,
			RevenueType:      rev.name,
			Amount:           rev.amount,
			CalculationType:  rev.setting.Type,
			CalculationValue: rev.setting.Value,
			BaseAmount:       o.Subtotal,
			Status:           models.RevenueStatusPending,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) releaseItems(ctx context.Context, items []models.OrderItem) {
	for _, it := range items {
		if err := s.inventory.Release(ctx, it.ProductID, it.Quantity); err != nil {
			s.log.Warn("failed to release inventory",
				zap.String("product_id", it.ProductID.String()), zap.Error(err))
		}
	}
}

func (s *OrderService) winningBid(ctx context.Context, productID uuid.UUID) (*models.Bid, error) {
	bids, err := s.bidRepo.ListByProduct(ctx, productID, 1, 0)
	if err != nil {
		return nil, err
	}
	for _, b := range bids {
		if b.IsWinning {
			return &b, nil
		}
	}
	return nil, nil
}

// ConfirmOrder moves pending -> confirmed (seller).
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID, sellerID uuid.UUID) (*models.Order, error) {
	return s.sellerTransition(ctx, orderID, sellerID, models.OrderStatusConfirmed, nil, nil)
}

// CancelOrder moves pending/confirmed -> cancelled (seller) and releases
// the reserved inventory.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, sellerID uuid.UUID, reason *string) (*models.Order, error) {
	ob := events.NewOutbox(s.publisher, s.log)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	o, err := orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID {
		return nil, models.ErrNotAuthorized
	}

	from := o.Status
	err = s.transition(ctx, orders, ob, o, models.OrderStatusCancelled, models.ActorSeller, &sellerID, reason, func() error {
		return orders.MarkCancelled(ctx, o.ID, models.ActorSeller, reason)
	})
	if err != nil {
		return nil, err
	}
	if err := s.revenueRepo.WithTx(tx).UpdateStatusByOrder(ctx, o.ID, models.RevenueStatusCancelled); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	ob.Flush(ctx)
	s.metrics.RecordTransition(from, models.OrderStatusCancelled, models.ActorSeller)
	s.releaseItems(ctx, o.Items)
	s.notifier.Notify(ctx, o.BuyerID, "order_cancelled", "Order cancelled",
		"The seller cancelled your order", map[string]any{"order_id": o.ID.String()})
	return o, nil
}

// ShipOrder moves confirmed -> shipped (seller). A carrier reference is
// required; local-pickup orders use MarkDelivered instead.
func (s *OrderService) ShipOrder(ctx context.Context, orderID, sellerID uuid.UUID, carrierRef string) (*models.Order, error) {
	if carrierRef == "" {
		return nil, fmt.Errorf("carrier reference is required to ship")
	}

	ob := events.NewOutbox(s.publisher, s.log)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	o, err := orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID {
		return nil, models.ErrNotAuthorized
	}

	now := time.Now()
	from := o.Status
	err = s.transition(ctx, orders, ob, o, models.OrderStatusShipped, models.ActorSeller, &sellerID, nil, func() error {
		return orders.MarkShipped(ctx, o.ID, &carrierRef, now)
	})
	if err != nil {
		return nil, err
	}
	o.CarrierRef = &carrierRef
	o.ShippedAt = &now

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	ob.Flush(ctx)
	s.metrics.RecordTransition(from, models.OrderStatusShipped, models.ActorSeller)
	s.notifier.Notify(ctx, o.BuyerID, "order_shipped", "Order shipped",
		"Your order is on its way", map[string]any{"order_id": o.ID.String(), "carrier_ref": carrierRef})
	return o, nil
}

// MarkDelivered moves confirmed/shipped -> delivered. From confirmed it is
// a seller hand-off allowed only when every item is local pickup; from
// shipped it is normally the scheduler's move.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID, actorType string, actorID *uuid.UUID) (*models.Order, error) {
	ob := events.NewOutbox(s.publisher, s.log)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	o, err := orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorType == models.ActorSeller {
		if actorID == nil || o.SellerID != *actorID {
			return nil, models.ErrNotAuthorized
		}
		if o.Status == models.OrderStatusConfirmed && !o.AllItemsLocalPickup() {
			return nil, models.NewInvalidTransition(actorType, o.Status, models.OrderStatusDelivered)
		}
	}

	now := time.Now()
	from := o.Status
	err = s.transition(ctx, orders, ob, o, models.OrderStatusDelivered, actorType, actorID, nil, func() error {
		return orders.MarkDelivered(ctx, o.ID, now)
	})
	if err != nil {
		return nil, err
	}
	o.DeliveredAt = &now

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	ob.Flush(ctx)
	s.metrics.RecordTransition(from, models.OrderStatusDelivered, actorType)
	s.notifier.Notify(ctx, o.BuyerID, "order_delivered", "Order delivered",
		"Your order was delivered", map[string]any{"order_id": o.ID.String()})
	return o, nil
}

// ConfirmReceipt is the buyer acknowledging delivery. From shipped, the
// delivery step is recorded on the way through so the history stays
// complete.
func (s *OrderService) ConfirmReceipt(ctx context.Context, orderID, buyerID uuid.UUID) (*models.Order, error) {
	ob := events.NewOutbox(s.publisher, s.log)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	o, err := orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, models.ErrNotAuthorized
	}

	viaShipped := o.Status == models.OrderStatusShipped
	if viaShipped {
		if !models.IsValidTransition(models.ActorBuyer, o.Status, models.OrderStatusConfirmReceipt) {
			return nil, models.NewInvalidTransition(models.ActorBuyer, o.Status, models.OrderStatusConfirmReceipt)
		}
		now := time.Now()
		note := "delivery implied by receipt confirmation"
		err = s.transition(ctx, orders, ob, o, models.OrderStatusDelivered, models.ActorSystem, nil, &note, func() error {
			return orders.MarkDelivered(ctx, o.ID, now)
		})
		if err != nil {
			return nil, err
		}
		o.DeliveredAt = &now
	}

	from := o.Status
	err = s.transition(ctx, orders, ob, o, models.OrderStatusConfirmReceipt, models.ActorBuyer, &buyerID, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	ob.Flush(ctx)
	if viaShipped {
		s.metrics.RecordTransition(models.OrderStatusShipped, models.OrderStatusDelivered, models.ActorSystem)
	}
	s.metrics.RecordTransition(from, models.OrderStatusConfirmReceipt, models.ActorBuyer)
	return o, nil
}

// ReturnOrder moves delivered -> returned (buyer) and releases inventory.
func (s *OrderService) ReturnOrder(ctx context.Context, orderID, buyerID uuid.UUID, reason *string) (*models.Order, error) {
	ob := events.NewOutbox(s.publisher, s.log)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	o, err := orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, models.ErrNotAuthorized
	}

	from := o.Status
	err = s.transition(ctx, orders, ob, o, models.OrderStatusReturned, models.ActorBuyer, &buyerID, reason, nil)
	if err != nil {
		return nil, err
	}
	if err := s.revenueRepo.WithTx(tx).UpdateStatusByOrder(ctx, o.ID, models.RevenueStatusCancelled); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	ob.Flush(ctx)
	s.metrics.RecordTransition(from, models.OrderStatusReturned, models.ActorBuyer)
	s.releaseItems(ctx, o.Items)
	s.notifier.Notify(ctx, o.SellerID, "order_returned", "Order returned",
		"The buyer returned the order", map[string]any{"order_id": o.ID.String()})
	return o, nil
}

// HandlePaymentCallback applies the gateway's verdict. A failed payment
// fails the order and releases its inventory; a completed one marks the
// pending revenue rows collectable.
func (s *OrderService) HandlePaymentCallback(ctx context.Context, orderID uuid.UUID, paymentStatus string, paymentID *string) error {
	ob := events.NewOutbox(s.publisher, s.log)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	revenues := s.revenueRepo.WithTx(tx)
	o, err := orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return err
	}

	var failedFrom string
	switch paymentStatus {
	case models.PaymentStatusCompleted:
		if o.PaymentStatus == models.PaymentStatusCompleted {
			return nil // webhook retry
		}
		if err := orders.UpdatePayment(ctx, o.ID, models.PaymentStatusCompleted, paymentID); err != nil {
			return err
		}
		if err := revenues.UpdateStatusByOrder(ctx, o.ID, models.RevenueStatusCompleted); err != nil {
			return err
		}
		ob.Add(events.StreamOrders, events.Event{
			Type: events.EventPaymentReceived,
			Payload: map[string]any{
				"order_id": o.ID.String(),
				"amount":   o.GrandTotal.String(),
			},
		})
	case models.PaymentStatusFailed:
		if err := orders.UpdatePayment(ctx, o.ID, models.PaymentStatusFailed, paymentID); err != nil {
			return err
		}
		note := "payment failed"
		failedFrom = o.Status
		if err := s.transition(ctx, orders, ob, o, models.OrderStatusFailed, models.ActorSystem, nil, &note, nil); err != nil {
			return err
		}
		if err := revenues.UpdateStatusByOrder(ctx, o.ID, models.RevenueStatusCancelled); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown payment status %q", paymentStatus)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	ob.Flush(ctx)
	if paymentStatus == models.PaymentStatusFailed {
		s.metrics.RecordTransition(failedFrom, models.OrderStatusFailed, models.ActorSystem)
		s.releaseItems(ctx, o.Items)
	}
	return nil
}

// sellerTransition handles the simple seller moves that need no extra row
// updates beyond the status itself.
func (s *OrderService) sellerTransition(ctx context.Context, orderID, sellerID uuid.UUID, newStatus string, note *string, apply func(*repositories.OrderRepo, *models.Order) error) (*models.Order, error) {
	ob := events.NewOutbox(s.publisher, s.log)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	orders := s.orderRepo.WithTx(tx)
	o, err := orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID {
		return nil, models.ErrNotAuthorized
	}

	var applyFn func() error
	if apply != nil {
		applyFn = func() error { return apply(orders, o) }
	}
	from := o.Status
	if err := s.transition(ctx, orders, ob, o, newStatus, models.ActorSeller, &sellerID, note, applyFn); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	ob.Flush(ctx)
	s.metrics.RecordTransition(from, newStatus, models.ActorSeller)
	return o, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, role string) (*models.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && o.BuyerID != requesterID && o.SellerID != requesterID {
		return nil, models.ErrNotAuthorized
	}
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context, f repositories.OrderFilter) ([]models.Order, error) {
	return s.orderRepo.List(ctx, f)
}

func (s *OrderService) GetHistory(ctx context.Context, orderID, requesterID uuid.UUID, role string) ([]models.OrderStatusHistory, error) {
	if _, err := s.GetOrder(ctx, orderID, requesterID, role); err != nil {
		return nil, err
	}
	return s.orderRepo.ListHistory(ctx, orderID)
}
