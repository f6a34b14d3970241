package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func TestRejectDisputeRoute(t *testing.T) {
	app := fiber.New()
	h := NewDisputeHandler(nil, zap.NewNop())
	app.Post("/disputes/:id/reject", h.Reject)

	resp, err := app.Test(httptest.NewRequest("POST", "/disputes/not-a-uuid/reject", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("reject with bad id = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
}
