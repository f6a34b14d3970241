package carrier

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Delivered", StatusDelivered},
		{"Package delivered to recipient", StatusDelivered},
		{"Out for delivery", StatusOutForDelivery},
		{"In Transit", StatusInTransit},
		{"Picked up by courier", StatusInTransit},
		{"Departed sorting facility", StatusInTransit},
		{"Arrived at hub", StatusInTransit},
		{"Delivery exception", StatusException},
		{"Failed delivery attempt", StatusException},
		{"Returned to sender", StatusException},
		{"", StatusUnknown},
		{"Label created", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeStatus(tt.input); got != tt.expected {
				t.Errorf("normalizeStatus(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

const trackingPageHTML = `
<html><body>
<div class="tracking-status">In Transit</div>
<div class="tracking-events">
  <div class="tracking-event">
    <span class="event-time">2025-06-02 08:15</span>
    <span class="event-location">Bangkok Hub</span>
    <span class="event-description">Departed sorting facility</span>
  </div>
  <div class="tracking-event">
    <span class="event-time">2025-06-01 19:40</span>
    <span class="event-location">Chiang Mai</span>
    <span class="event-description">Picked up by courier</span>
  </div>
  <div class="tracking-event"></div>
</div>
</body></html>`

func TestParseTrackingDoc(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trackingPageHTML))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	info := parseTrackingDoc(doc, "KEX123456789")
	if info.CarrierRef != "KEX123456789" {
		t.Errorf("CarrierRef = %q", info.CarrierRef)
	}
	if info.Status != StatusInTransit {
		t.Errorf("Status = %q, want %q", info.Status, StatusInTransit)
	}
	if len(info.Checkpoints) != 2 {
		t.Fatalf("Checkpoints = %d, want 2 (empty event skipped)", len(info.Checkpoints))
	}
	first := info.Checkpoints[0]
	if first.Location != "Bangkok Hub" || first.Description != "Departed sorting facility" {
		t.Errorf("first checkpoint = %+v", first)
	}
}

func TestParseTrackingDocEmptyPage(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	info := parseTrackingDoc(doc, "KEX000")
	if info.Status != StatusUnknown {
		t.Errorf("Status = %q, want %q", info.Status, StatusUnknown)
	}
	if len(info.Checkpoints) != 0 {
		t.Errorf("Checkpoints = %d, want 0", len(info.Checkpoints))
	}
}
