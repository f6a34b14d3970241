package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Aman0246jploft/kudsun-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func webhookApp(secret string) *fiber.App {
	app := fiber.New()
	h := NewWebhookHandler(nil, &config.Config{GatewayWebhookSecret: secret}, zap.NewNop())
	app.Post("/webhooks/payment", h.PaymentCallback)
	return app
}

func TestPaymentWebhookRefusesWithoutConfiguredSecret(t *testing.T) {
	app := webhookApp("")

	req := httptest.NewRequest("POST", "/webhooks/payment", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("unset secret = %d, want %d", resp.StatusCode, fiber.StatusServiceUnavailable)
	}
}

func TestPaymentWebhookRejectsBadSecret(t *testing.T) {
	app := webhookApp("topsecret")

	req := httptest.NewRequest("POST", "/webhooks/payment", nil)
	req.Header.Set("X-Gateway-Secret", "wrong")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("bad secret = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}

	// A request missing the header entirely must not pass either.
	req = httptest.NewRequest("POST", "/webhooks/payment", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("missing secret = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
}

func TestPaymentWebhookValidatesBody(t *testing.T) {
	app := webhookApp("topsecret")

	req := httptest.NewRequest("POST", "/webhooks/payment",
		strings.NewReader(`{"order_id":"not-a-uuid","payment_status":"completed"}`))
	req.Header.Set("X-Gateway-Secret", "topsecret")
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("bad order_id = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
}
