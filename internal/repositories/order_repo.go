package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderCols = `
	id, buyer_id, seller_id, status, payment_status, payment_id,
	subtotal::text, shipping_charge::text, buyer_protection_fee::text, tax::text, grand_total::text,
	carrier_ref, dispute_id, cancelled_by, cancel_reason,
	shipped_at, delivered_at, completed_at, created_at, updated_at`

type OrderRepo struct {
	db DB
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: pool}
}

func (r *OrderRepo) WithTx(tx pgx.Tx) *OrderRepo {
	return &OrderRepo{db: tx}
}

func scanOrder(rw row) (*models.Order, error) {
	var o models.Order
	var subtotal, shipping, protection, tax, total string
	err := rw.Scan(
		&o.ID, &o.BuyerID, &o.SellerID, &o.Status, &o.PaymentStatus, &o.PaymentID,
		&subtotal, &shipping, &protection, &tax, &total,
		&o.CarrierRef, &o.DisputeID, &o.CancelledBy, &o.CancelReason,
		&o.ShippedAt, &o.DeliveredAt, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if o.Subtotal, err = parseDecimal(subtotal); err != nil {
		return nil, fmt.Errorf("parse subtotal: %w", err)
	}
	if o.ShippingCharge, err = parseDecimal(shipping); err != nil {
		return nil, fmt.Errorf("parse shipping_charge: %w", err)
	}
	if o.BuyerProtectionFee, err = parseDecimal(protection); err != nil {
		return nil, fmt.Errorf("parse buyer_protection_fee: %w", err)
	}
	if o.Tax, err = parseDecimal(tax); err != nil {
		return nil, fmt.Errorf("parse tax: %w", err)
	}
	if o.GrandTotal, err = parseDecimal(total); err != nil {
		return nil, fmt.Errorf("parse grand_total: %w", err)
	}
	return &o, nil
}

func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (buyer_id, seller_id, status, payment_status,
		                    subtotal, shipping_charge, buyer_protection_fee, tax, grand_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, o.BuyerID, o.SellerID, o.Status, o.PaymentStatus,
		o.Subtotal, o.ShippingCharge, o.BuyerProtectionFee, o.Tax, o.GrandTotal,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err = r.db.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, local_pickup)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.LocalPickup).Scan(&it.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	if o.Items, err = r.listItems(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByIDForUpdate locks the order row for the rest of the transaction.
// Items are loaded too since the local-pickup rule needs them.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	if o.Items, err = r.listItems(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price::text, local_pickup
		FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		var price string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price, &it.LocalPickup); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = parseDecimal(price); err != nil {
			return nil, fmt.Errorf("parse unit_price: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type OrderFilter struct {
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   *string
	Limit    int
	Offset   int
}

func (r *OrderRepo) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	query := `SELECT ` + orderCols + ` FROM orders WHERE deleted_at IS NULL`
	args := []any{}
	argIdx := 1

	if f.BuyerID != nil {
		query += fmt.Sprintf(" AND buyer_id = $%d", argIdx)
		args = append(args, *f.BuyerID)
		argIdx++
	}
	if f.SellerID != nil {
		query += fmt.Sprintf(" AND seller_id = $%d", argIdx)
		args = append(args, *f.SellerID)
		argIdx++
	}
	if f.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *f.Status)
		argIdx++
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (r *OrderRepo) MarkShipped(ctx context.Context, id uuid.UUID, carrierRef *string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $1, carrier_ref = $2, shipped_at = $3, updated_at = now()
		WHERE id = $4
	`, models.OrderStatusShipped, carrierRef, at, id)
	return err
}

func (r *OrderRepo) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $1, delivered_at = $2, updated_at = now()
		WHERE id = $3
	`, models.OrderStatusDelivered, at, id)
	return err
}

func (r *OrderRepo) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $1, completed_at = $2, updated_at = now()
		WHERE id = $3
	`, models.OrderStatusCompleted, at, id)
	return err
}

func (r *OrderRepo) MarkCancelled(ctx context.Context, id uuid.UUID, by string, reason *string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $1, cancelled_by = $2, cancel_reason = $3, updated_at = now()
		WHERE id = $4
	`, models.OrderStatusCancelled, by, reason, id)
	return err
}

func (r *OrderRepo) UpdatePayment(ctx context.Context, id uuid.UUID, paymentStatus string, paymentID *string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders SET payment_status = $1, payment_id = $2, updated_at = now()
		WHERE id = $3
	`, paymentStatus, paymentID, id)
	return err
}

func (r *OrderRepo) SetDispute(ctx context.Context, id uuid.UUID, disputeID *uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders SET dispute_id = $1, status = $2, updated_at = now()
		WHERE id = $3
	`, disputeID, status, id)
	return err
}

// ListShippedBefore finds shipped orders whose grace period has elapsed,
// oldest first, for the promotion sweep.
func (r *OrderRepo) ListShippedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	return r.listByStatusBefore(ctx, models.OrderStatusShipped, "shipped_at", cutoff, limit)
}

// ListDeliveredBefore finds delivered orders past the dispute window, oldest
// first, for the settlement sweep.
func (r *OrderRepo) ListDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	return r.listByStatusBefore(ctx, models.OrderStatusDelivered, "delivered_at", cutoff, limit)
}

// ListConfirmedReceipts finds orders the buyer has confirmed, which settle on
// the next sweep regardless of the dispute window.
func (r *OrderRepo) ListConfirmedReceipts(ctx context.Context, limit int) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE status = $1 AND deleted_at IS NULL
		ORDER BY updated_at ASC
		LIMIT $2
	`, models.OrderStatusConfirmReceipt, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *OrderRepo) listByStatusBefore(ctx context.Context, status, tsCol string, cutoff time.Time, limit int) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE status = $1 AND `+tsCol+` < $2 AND deleted_at IS NULL
		ORDER BY `+tsCol+` ASC
		LIMIT $3
	`, status, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// --- Status history ---

func (r *OrderRepo) InsertHistory(ctx context.Context, h *models.OrderStatusHistory) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO order_status_history (order_id, old_status, new_status, actor_type, actor_id, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, h.OrderID, h.OldStatus, h.NewStatus, h.ActorType, h.ActorID, h.Note).Scan(&h.ID, &h.CreatedAt)
}

func (r *OrderRepo) ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, old_status, new_status, actor_type, actor_id, note, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hist []models.OrderStatusHistory
	for rows.Next() {
		var h models.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.OldStatus, &h.NewStatus, &h.ActorType, &h.ActorID, &h.Note, &h.CreatedAt); err != nil {
			return nil, err
		}
		hist = append(hist, h)
	}
	return hist, rows.Err()
}
