package services

import (
	"testing"
	"time"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
)

func TestPastGracePeriod(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		ts        time.Time
		graceDays int
		want      bool
	}{
		{"four days old against three-day grace", now.AddDate(0, 0, -4), 3, true},
		{"one day old against three-day grace", now.AddDate(0, 0, -1), 3, false},
		{"exactly at the boundary", now.AddDate(0, 0, -3), 3, true},
		{"just inside the boundary", now.AddDate(0, 0, -3).Add(time.Second), 3, false},
		{"zero grace settles immediately", now.Add(-time.Minute), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PastGracePeriod(tt.ts, now, tt.graceDays); got != tt.want {
				t.Errorf("PastGracePeriod(%v, %d) = %v, want %v", tt.ts, tt.graceDays, got, tt.want)
			}
		})
	}
}

func TestWithdrawalFeeLockArithmetic(t *testing.T) {
	// 500 requested with a fixed fee of 10 against a 600 balance: 510 is
	// frozen, 90 stays available. Rejection restores the full 600 using
	// the fee stored on the request.
	available := dec("600")
	amount := dec("500")
	fee := ComputeFee(amount, fixedSetting(models.FeeWithdrawal, "10"))
	total := amount.Add(fee)

	if !fee.Equal(dec("10")) {
		t.Fatalf("fee = %s, want 10", fee)
	}
	if total.GreaterThan(available) {
		t.Fatal("expected 510 to fit in a 600 balance")
	}

	frozen := total
	remaining := available.Sub(total)
	if !remaining.Equal(dec("90")) || !frozen.Equal(dec("510")) {
		t.Errorf("after reserve: available = %s frozen = %s, want 90/510", remaining, frozen)
	}

	restored := remaining.Add(frozen)
	if !restored.Equal(dec("600")) {
		t.Errorf("after reject: available = %s, want 600", restored)
	}
}

func TestWithdrawalOverBalance(t *testing.T) {
	available := dec("600")
	amount := dec("595")
	fee := ComputeFee(amount, fixedSetting(models.FeeWithdrawal, "10"))
	if !amount.Add(fee).GreaterThan(available) {
		t.Error("expected 595+10 to exceed a 600 balance")
	}
}
