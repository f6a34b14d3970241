package handlers

import (
	"crypto/subtle"

	"github.com/Aman0246jploft/kudsun-backend/internal/config"
	"github.com/Aman0246jploft/kudsun-backend/internal/http/dto"
	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/Aman0246jploft/kudsun-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebhookHandler receives payment gateway callbacks. The gateway signs
// requests with a shared secret header; anything else is rejected
// before the body is even parsed.
type WebhookHandler struct {
	orderService *services.OrderService
	cfg          *config.Config
	log          *zap.Logger
}

func NewWebhookHandler(orderService *services.OrderService, cfg *config.Config, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{orderService: orderService, cfg: cfg, log: log}
}

func (h *WebhookHandler) PaymentCallback(c *fiber.Ctx) error {
	// An empty configured secret would make the compare below accept
	// unsigned requests; refuse to serve instead.
	if h.cfg.GatewayWebhookSecret == "" {
		h.log.Error("payment webhook called but GATEWAY_WEBHOOK_SECRET is not set")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "payment webhook is not configured"})
	}

	secret := c.Get("X-Gateway-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.GatewayWebhookSecret)) != 1 {
		h.log.Warn("payment webhook with bad secret", zap.String("ip", c.IP()))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.PaymentWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order_id"})
	}

	switch req.PaymentStatus {
	case models.PaymentStatusCompleted, models.PaymentStatusFailed:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "unknown payment_status"})
	}

	if err := h.orderService.HandlePaymentCallback(c.Context(), orderID, req.PaymentStatus, req.PaymentID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}
