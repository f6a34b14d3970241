package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
)

func TestWithinDisputeWindow(t *testing.T) {
	delivered := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		days int
		want bool
	}{
		{"just delivered", delivered.Add(time.Minute), 7, true},
		{"one second before boundary", delivered.AddDate(0, 0, 7).Add(-time.Second), 7, true},
		{"exactly at boundary", delivered.AddDate(0, 0, 7), 7, false},
		{"after boundary", delivered.AddDate(0, 0, 8), 7, false},
		{"zero window", delivered.Add(time.Minute), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinDisputeWindow(delivered, tt.now, tt.days); got != tt.want {
				t.Errorf("WithinDisputeWindow(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestSettlementBaseFor(t *testing.T) {
	subtotal := dec("1000")

	t.Run("no dispute", func(t *testing.T) {
		base, adjusted, err := SettlementBaseFor(subtotal, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if adjusted || !base.Equal(subtotal) {
			t.Errorf("base = %s adjusted = %v, want full unadjusted", base, adjusted)
		}
	})

	t.Run("unresolved blocks settlement", func(t *testing.T) {
		for _, status := range []string{models.DisputeStatusPending, models.DisputeStatusUnderReview} {
			_, _, err := SettlementBaseFor(subtotal, &models.Dispute{Status: status})
			if !errors.Is(err, models.ErrDisputeUnresolved) {
				t.Errorf("status %s: err = %v, want ErrDisputeUnresolved", status, err)
			}
		}
	})

	t.Run("buyer decision reduces base", func(t *testing.T) {
		d := &models.Dispute{
			Status:        models.DisputeStatusResolved,
			Decision:      strPtr(models.DisputeDecisionBuyer),
			RefundPercent: 30,
		}
		base, adjusted, err := SettlementBaseFor(subtotal, d)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !adjusted {
			t.Error("expected adjusted = true")
		}
		if !base.Equal(dec("700")) {
			t.Errorf("base = %s, want 700", base)
		}
	})

	t.Run("full refund settles zero", func(t *testing.T) {
		d := &models.Dispute{
			Status:        models.DisputeStatusResolved,
			Decision:      strPtr(models.DisputeDecisionBuyer),
			RefundPercent: 100,
		}
		base, _, err := SettlementBaseFor(subtotal, d)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !base.IsZero() {
			t.Errorf("base = %s, want 0", base)
		}
	})

	t.Run("seller decision keeps full base", func(t *testing.T) {
		d := &models.Dispute{
			Status:   models.DisputeStatusResolved,
			Decision: strPtr(models.DisputeDecisionSeller),
		}
		base, adjusted, err := SettlementBaseFor(subtotal, d)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if adjusted || !base.Equal(subtotal) {
			t.Errorf("base = %s adjusted = %v, want full unadjusted", base, adjusted)
		}
	})

	t.Run("rejected and closed keep full base", func(t *testing.T) {
		for _, status := range []string{models.DisputeStatusRejected, models.DisputeStatusClosed} {
			base, adjusted, err := SettlementBaseFor(subtotal, &models.Dispute{Status: status})
			if err != nil {
				t.Fatalf("status %s: unexpected error: %v", status, err)
			}
			if adjusted || !base.Equal(subtotal) {
				t.Errorf("status %s: base = %s adjusted = %v", status, base, adjusted)
			}
		}
	})
}
