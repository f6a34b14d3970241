package services

import (
	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// ComputeFee returns the charge amount for base under setting s. A nil
// setting means the charge is disabled and contributes zero. No rounding
// happens here; amounts are rounded once at presentation.
func ComputeFee(base decimal.Decimal, s *models.FeeSetting) decimal.Decimal {
	if s == nil || !s.Active {
		return decimal.Zero
	}
	if s.Type == models.FeeTypePercentage {
		return base.Mul(s.Value).Div(oneHundred)
	}
	return s.Value
}

// OrderTotals is the buyer-facing price breakdown computed at checkout and
// frozen onto the order row.
type OrderTotals struct {
	Subtotal           decimal.Decimal
	ShippingCharge     decimal.Decimal
	BuyerProtectionFee decimal.Decimal
	Tax                decimal.Decimal
	GrandTotal         decimal.Decimal
}

// ComputeOrderTotals derives the buyer-side charges from the subtotal.
// Both the protection fee and the tax are computed on the item subtotal,
// not on each other.
func ComputeOrderTotals(subtotal, shipping decimal.Decimal, protection, tax *models.FeeSetting) OrderTotals {
	t := OrderTotals{
		Subtotal:           subtotal,
		ShippingCharge:     shipping,
		BuyerProtectionFee: ComputeFee(subtotal, protection),
		Tax:                ComputeFee(subtotal, tax),
	}
	t.GrandTotal = subtotal.Add(shipping).Add(t.BuyerProtectionFee).Add(t.Tax)
	return t
}

// SettlementBreakdown is the seller-side deduction math applied when an
// order settles. Base is the settlement base after any dispute adjustment;
// Net is what lands in the seller wallet.
type SettlementBreakdown struct {
	Base           decimal.Decimal
	ServiceCharge  decimal.Decimal
	ServiceSetting *models.FeeSetting
	TaxCharge      decimal.Decimal
	TaxSetting     *models.FeeSetting
	Net            decimal.Decimal
}

func ComputeSettlementBreakdown(base decimal.Decimal, service, tax *models.FeeSetting) SettlementBreakdown {
	b := SettlementBreakdown{
		Base:           base,
		ServiceCharge:  ComputeFee(base, service),
		ServiceSetting: service,
		TaxCharge:      ComputeFee(base, tax),
		TaxSetting:     tax,
	}
	b.Net = base.Sub(b.ServiceCharge).Sub(b.TaxCharge)
	return b
}
