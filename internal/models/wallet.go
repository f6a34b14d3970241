package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger entry kinds
const (
	LedgerKindCredit     = "credit"
	LedgerKindWithdrawal = "withdrawal"
)

// Ledger entry statuses
const (
	LedgerStatusPending   = "pending"
	LedgerStatusCompleted = "completed"
	LedgerStatusRejected  = "rejected"
)

// Withdrawal request statuses
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// Wallet balances are derived fields maintained exclusively by the wallet
// service inside its transactions; no other component writes them.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type WalletLedgerEntry struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`      // set for credit entries
	WithdrawalID *uuid.UUID `json:"withdrawal_id,omitempty"` // set for withdrawal entries
	Kind         string     `json:"kind"`

	GrossAmount decimal.Decimal `json:"gross_amount"`
	NetAmount   decimal.Decimal `json:"net_amount"`

	ServiceCharge     decimal.Decimal `json:"service_charge"`
	ServiceChargeType *string         `json:"service_charge_type,omitempty"`
	TaxCharge         decimal.Decimal `json:"tax_charge"`
	TaxChargeType     *string         `json:"tax_charge_type,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SellerWithdrawal freezes amount+fee at creation; resolution always uses
// the stored fee so a later fee-setting change never skews the reversal.
type SellerWithdrawal struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	PayoutMethodRef string          `json:"payout_method_ref"`
	Amount          decimal.Decimal `json:"amount"`
	Fee             decimal.Decimal `json:"fee"`
	FeeType         *string         `json:"fee_type,omitempty"`
	Status          string          `json:"status"`
	AdminNote       *string         `json:"admin_note,omitempty"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
