package models

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		actor    string
		from     string
		to       string
		expected bool
	}{
		// Seller happy path
		{ActorSeller, OrderStatusPending, OrderStatusConfirmed, true},
		{ActorSeller, OrderStatusPending, OrderStatusCancelled, true},
		{ActorSeller, OrderStatusConfirmed, OrderStatusShipped, true},
		{ActorSeller, OrderStatusConfirmed, OrderStatusDelivered, true}, // local pickup only, gated by service
		{ActorSeller, OrderStatusConfirmed, OrderStatusCancelled, true},
		{ActorSeller, OrderStatusShipped, OrderStatusDelivered, true},

		// Buyer
		{ActorBuyer, OrderStatusShipped, OrderStatusConfirmReceipt, true},
		{ActorBuyer, OrderStatusDelivered, OrderStatusConfirmReceipt, true},
		{ActorBuyer, OrderStatusDelivered, OrderStatusReturned, true},

		// System (scheduler + payment failure)
		{ActorSystem, OrderStatusPending, OrderStatusFailed, true},
		{ActorSystem, OrderStatusShipped, OrderStatusDelivered, true},
		{ActorSystem, OrderStatusDelivered, OrderStatusCompleted, true},
		{ActorSystem, OrderStatusConfirmReceipt, OrderStatusCompleted, true},

		// Actor mixups
		{ActorBuyer, OrderStatusPending, OrderStatusConfirmed, false},
		{ActorBuyer, OrderStatusPending, OrderStatusCancelled, false},
		{ActorSeller, OrderStatusDelivered, OrderStatusCompleted, false},
		{ActorSeller, OrderStatusShipped, OrderStatusConfirmReceipt, false},
		{ActorSystem, OrderStatusPending, OrderStatusConfirmed, false},
		{ActorSystem, OrderStatusDelivered, OrderStatusReturned, false},

		// Terminal statuses never move
		{ActorSeller, OrderStatusCompleted, OrderStatusShipped, false},
		{ActorSeller, OrderStatusCancelled, OrderStatusConfirmed, false},
		{ActorBuyer, OrderStatusReturned, OrderStatusConfirmReceipt, false},
		{ActorSystem, OrderStatusFailed, OrderStatusPending, false},
		{ActorSystem, OrderStatusCompleted, OrderStatusDelivered, false},

		// Skipping steps
		{ActorSeller, OrderStatusPending, OrderStatusShipped, false},
		{ActorSeller, OrderStatusPending, OrderStatusDelivered, false},
		{ActorBuyer, OrderStatusConfirmed, OrderStatusConfirmReceipt, false},
		{ActorSystem, OrderStatusPending, OrderStatusCompleted, false},

		// Unknown inputs
		{"admin", OrderStatusPending, OrderStatusConfirmed, false},
		{ActorSeller, "nonexistent", OrderStatusConfirmed, false},
		{ActorSeller, OrderStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.actor+":"+tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.actor, tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q, %q) = %v, want %v", tt.actor, tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	terminal := []string{OrderStatusCompleted, OrderStatusCancelled, OrderStatusReturned, OrderStatusFailed}
	for _, status := range terminal {
		if !IsTerminalStatus(status) {
			t.Errorf("expected %q to be terminal", status)
		}
	}

	open := []string{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusConfirmReceipt, OrderStatusDispute,
	}
	for _, status := range open {
		if IsTerminalStatus(status) {
			t.Errorf("expected %q to be non-terminal", status)
		}
	}
}

func TestTerminalStatusesHaveNoOutgoingTransitions(t *testing.T) {
	for actor, table := range ValidOrderTransitions {
		for from, tos := range table {
			if IsTerminalStatus(from) && len(tos) != 0 {
				t.Errorf("terminal status %q has outgoing transitions for actor %q: %v", from, actor, tos)
			}
		}
	}
}

func TestAllItemsLocalPickup(t *testing.T) {
	tests := []struct {
		name     string
		items    []OrderItem
		expected bool
	}{
		{"no items", nil, false},
		{"all pickup", []OrderItem{{LocalPickup: true}, {LocalPickup: true}}, true},
		{"mixed", []OrderItem{{LocalPickup: true}, {LocalPickup: false}}, false},
		{"none pickup", []OrderItem{{LocalPickup: false}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{Items: tt.items}
			if got := o.AllItemsLocalPickup(); got != tt.expected {
				t.Errorf("AllItemsLocalPickup() = %v, want %v", got, tt.expected)
			}
		})
	}
}
