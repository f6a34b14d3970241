package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Charge names
const (
	FeeBuyerProtection = "buyer_protection_fee"
	FeeServiceCharge   = "service_charge"
	FeeTax             = "tax"
	FeeWithdrawal      = "withdrawal_fee"
)

// Pricing types
const (
	FeeTypeFixed      = "fixed"
	FeeTypePercentage = "percentage"
)

// FeeSetting rows are administered outside the core and treated as
// read-only here.
type FeeSetting struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Value     decimal.Decimal `json:"value"`
	Active    bool            `json:"active"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Platform revenue types mirror the charge names.
const (
	RevenueStatusPending   = "pending"
	RevenueStatusCompleted = "completed"
	RevenueStatusCancelled = "cancelled"
)

// PlatformRevenue tracks what the platform earned from an order or a
// withdrawal; its status follows the originating transaction's lifecycle.
type PlatformRevenue struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         *uuid.UUID      `json:"order_id,omitempty"`
	WithdrawalID    *uuid.UUID      `json:"withdrawal_id,omitempty"`
	RevenueType     string          `json:"revenue_type"`
	Amount          decimal.Decimal `json:"amount"`
	CalculationType string          `json:"calculation_type"` // fixed / percentage
	CalculationValue decimal.Decimal `json:"calculation_value"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
