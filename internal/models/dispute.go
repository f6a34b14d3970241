package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute statuses
const (
	DisputeStatusPending     = "pending"
	DisputeStatusUnderReview = "under_review"
	DisputeStatusResolved    = "resolved"
	DisputeStatusRejected    = "rejected"
	DisputeStatusClosed      = "closed"
)

// Adjudicator decisions
const (
	DisputeDecisionBuyer  = "buyer"
	DisputeDecisionSeller = "seller"
)

// IsUnresolvedDisputeStatus reports whether a dispute in this status still
// blocks settlement of its order.
func IsUnresolvedDisputeStatus(status string) bool {
	return status == DisputeStatusPending || status == DisputeStatusUnderReview
}

type Dispute struct {
	ID               uuid.UUID `json:"id"`
	OrderID          uuid.UUID `json:"order_id"`
	RaisedBy         uuid.UUID `json:"raised_by"` // buyer
	SellerID         uuid.UUID `json:"seller_id"`
	ClaimType        string    `json:"claim_type"`
	ClaimDescription string    `json:"claim_description"`
	EvidenceURLs     []string  `json:"evidence_urls,omitempty"`

	ResponseType        *string  `json:"response_type,omitempty"`
	ResponseDescription *string  `json:"response_description,omitempty"`
	ResponseAttachments []string `json:"response_attachments,omitempty"`
	RespondedAt         *time.Time `json:"responded_at,omitempty"`

	Decision      *string    `json:"decision,omitempty"` // buyer / seller
	RefundPercent int        `json:"refund_percent"`     // applied only for buyer decisions
	DecisionNote  *string    `json:"decision_note,omitempty"`
	ResolvedBy    *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
