package services

import (
	"testing"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func pctSetting(name, value string) *models.FeeSetting {
	return &models.FeeSetting{Name: name, Type: models.FeeTypePercentage, Value: dec(value), Active: true}
}

func fixedSetting(name, value string) *models.FeeSetting {
	return &models.FeeSetting{Name: name, Type: models.FeeTypeFixed, Value: dec(value), Active: true}
}

func TestComputeFee(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		setting *models.FeeSetting
		want    string
	}{
		{"percentage", "1000", pctSetting("service_charge", "7"), "70"},
		{"percentage fraction", "99.99", pctSetting("tax", "5"), "4.9995"},
		{"fixed", "1000", fixedSetting("withdrawal_fee", "10"), "10"},
		{"nil setting", "1000", nil, "0"},
		{"inactive setting", "1000", &models.FeeSetting{Type: models.FeeTypePercentage, Value: dec("7")}, "0"},
		{"zero base", "0", pctSetting("tax", "7"), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFee(dec(tt.base), tt.setting)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("ComputeFee(%s) = %s, want %s", tt.base, got, tt.want)
			}
		})
	}
}

func TestComputeOrderTotals(t *testing.T) {
	// 1000 subtotal, 5% protection, 7% tax, 20 shipping.
	got := ComputeOrderTotals(dec("1000"), dec("20"),
		pctSetting(models.FeeBuyerProtection, "5"), pctSetting(models.FeeTax, "7"))

	if !got.BuyerProtectionFee.Equal(dec("50")) {
		t.Errorf("BuyerProtectionFee = %s, want 50", got.BuyerProtectionFee)
	}
	if !got.Tax.Equal(dec("70")) {
		t.Errorf("Tax = %s, want 70", got.Tax)
	}
	if !got.GrandTotal.Equal(dec("1140")) {
		t.Errorf("GrandTotal = %s, want 1140", got.GrandTotal)
	}
}

func TestComputeOrderTotalsDisabledCharges(t *testing.T) {
	got := ComputeOrderTotals(dec("500"), dec("0"), nil, nil)
	if !got.GrandTotal.Equal(dec("500")) {
		t.Errorf("GrandTotal = %s, want 500", got.GrandTotal)
	}
}

func TestComputeOrderTotalsNoIntermediateRounding(t *testing.T) {
	// 333.33 at 5% and 7% keeps the exact products until presentation.
	got := ComputeOrderTotals(dec("333.33"), dec("0"),
		pctSetting(models.FeeBuyerProtection, "5"), pctSetting(models.FeeTax, "7"))
	if !got.BuyerProtectionFee.Equal(dec("16.6665")) {
		t.Errorf("BuyerProtectionFee = %s, want 16.6665", got.BuyerProtectionFee)
	}
	if !got.GrandTotal.Equal(dec("333.33").Add(dec("16.6665")).Add(dec("23.3331"))) {
		t.Errorf("GrandTotal = %s", got.GrandTotal)
	}
}

func TestComputeSettlementBreakdown(t *testing.T) {
	got := ComputeSettlementBreakdown(dec("1000"),
		pctSetting(models.FeeServiceCharge, "7"), pctSetting(models.FeeTax, "7"))
	if !got.ServiceCharge.Equal(dec("70")) {
		t.Errorf("ServiceCharge = %s, want 70", got.ServiceCharge)
	}
	if !got.TaxCharge.Equal(dec("70")) {
		t.Errorf("TaxCharge = %s, want 70", got.TaxCharge)
	}
	if !got.Net.Equal(dec("860")) {
		t.Errorf("Net = %s, want 860", got.Net)
	}
}

func TestComputeSettlementBreakdownReducedBase(t *testing.T) {
	// Settlement base already reduced to 70% of a 1000 subtotal.
	got := ComputeSettlementBreakdown(dec("700"),
		pctSetting(models.FeeServiceCharge, "7"), nil)
	if !got.ServiceCharge.Equal(dec("49")) {
		t.Errorf("ServiceCharge = %s, want 49", got.ServiceCharge)
	}
	if !got.Net.Equal(dec("651")) {
		t.Errorf("Net = %s, want 651", got.Net)
	}
}
