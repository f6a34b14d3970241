package events

import "context"

// Streams
const (
	StreamOrders      = "events:orders"
	StreamSettlements = "events:settlements"
	StreamDisputes    = "events:disputes"
	StreamBids        = "events:bids"
)

// Event types
const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventOrderSettled       = "order_settled"
	EventDisputeResolved    = "dispute_resolved"
	EventBidPlaced          = "bid_placed"
	EventPaymentReceived    = "payment_received"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
