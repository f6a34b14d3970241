package dto

type CheckoutItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items       []CheckoutItemRequest `json:"items"`
	ShippingFee string                `json:"shipping_fee,omitempty"`
}

type CancelOrderRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type ShipOrderRequest struct {
	CarrierRef string `json:"carrier_ref"`
}

type ReturnOrderRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type PaymentWebhookRequest struct {
	OrderID       string  `json:"order_id"`
	PaymentStatus string  `json:"payment_status"` // completed / failed
	PaymentID     *string `json:"payment_id,omitempty"`
}

type CreateDisputeRequest struct {
	ClaimType   string   `json:"claim_type"` // not_received / damaged / not_as_described / other
	Description string   `json:"description"`
	Evidence    []string `json:"evidence,omitempty"`
}

type DisputeResponseRequest struct {
	ResponseType string   `json:"response_type"`
	Description  string   `json:"description"`
	Attachments  []string `json:"attachments,omitempty"`
}

type DisputeDecisionRequest struct {
	Decision      string  `json:"decision"` // buyer / seller
	RefundPercent int     `json:"refund_percent"`
	Note          *string `json:"note,omitempty"`
}

type DisputeRejectRequest struct {
	Note *string `json:"note,omitempty"`
}

type CreateWithdrawalRequest struct {
	Amount          string `json:"amount"`
	PayoutMethodRef string `json:"payout_method_ref"`
}

type ResolveWithdrawalRequest struct {
	Approve   bool    `json:"approve"`
	AdminNote *string `json:"admin_note,omitempty"`
}

type PlaceBidRequest struct {
	Amount string `json:"amount"`
}
