package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusShipped        = "shipped"
	OrderStatusDelivered      = "delivered"
	OrderStatusConfirmReceipt = "confirm_receipt"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
	OrderStatusReturned       = "returned"
	OrderStatusFailed         = "failed"
	OrderStatusDispute        = "dispute"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Transition actors
const (
	ActorBuyer  = "buyer"
	ActorSeller = "seller"
	ActorSystem = "system"
)

// Valid state transitions per actor: actor -> from -> []to.
// The local-pickup restriction on confirmed -> delivered/shipped and the
// out-of-band dispute transition are enforced by the order service on top
// of this table.
var ValidOrderTransitions = map[string]map[string][]string{
	ActorSeller: {
		OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed: {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
		OrderStatusShipped:   {OrderStatusDelivered},
	},
	ActorBuyer: {
		OrderStatusShipped:   {OrderStatusConfirmReceipt},
		OrderStatusDelivered: {OrderStatusConfirmReceipt, OrderStatusReturned},
	},
	ActorSystem: {
		OrderStatusPending:        {OrderStatusFailed},
		OrderStatusShipped:        {OrderStatusDelivered},
		OrderStatusDelivered:      {OrderStatusCompleted},
		OrderStatusConfirmReceipt: {OrderStatusCompleted},
	},
}

func IsValidTransition(actor, from, to string) bool {
	table, ok := ValidOrderTransitions[actor]
	if !ok {
		return false
	}
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminalStatus(status string) bool {
	switch status {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusReturned, OrderStatusFailed:
		return true
	}
	return false
}

type Order struct {
	ID                 uuid.UUID       `json:"id"`
	BuyerID            uuid.UUID       `json:"buyer_id"`
	SellerID           uuid.UUID       `json:"seller_id"`
	Status             string          `json:"status"`
	PaymentStatus      string          `json:"payment_status"`
	PaymentID          *string         `json:"payment_id,omitempty"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	ShippingCharge     decimal.Decimal `json:"shipping_charge"`
	BuyerProtectionFee decimal.Decimal `json:"buyer_protection_fee"`
	Tax                decimal.Decimal `json:"tax"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
	CarrierRef         *string         `json:"carrier_ref,omitempty"`
	DisputeID          *uuid.UUID      `json:"dispute_id,omitempty"`
	CancelledBy        *string         `json:"cancelled_by,omitempty"`
	CancelReason       *string         `json:"cancel_reason,omitempty"`
	ShippedAt          *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt        *time.Time      `json:"delivered_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Items              []OrderItem     `json:"items,omitempty"`
}

// AllItemsLocalPickup reports whether every line item is picked up locally,
// which lets the seller mark the order delivered without shipping it.
func (o *Order) AllItemsLocalPickup() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, it := range o.Items {
		if !it.LocalPickup {
			return false
		}
	}
	return true
}

type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"` // price at purchase time
	LocalPickup bool            `json:"local_pickup"`
}

// OrderStatusHistory rows are append-only; they are the replay log for
// reconciliation and are never updated or deleted.
type OrderStatusHistory struct {
	ID        uuid.UUID  `json:"id"`
	OrderID   uuid.UUID  `json:"order_id"`
	OldStatus string     `json:"old_status"`
	NewStatus string     `json:"new_status"`
	ActorType string     `json:"actor_type"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	Note      *string    `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
