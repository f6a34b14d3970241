package handlers

import (
	"strconv"

	"github.com/Aman0246jploft/kudsun-backend/internal/carrier"
	"github.com/Aman0246jploft/kudsun-backend/internal/http/dto"
	"github.com/Aman0246jploft/kudsun-backend/internal/middleware"
	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/Aman0246jploft/kudsun-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService *services.OrderService
	tracker      *carrier.Tracker
	log          *zap.Logger
}

func NewOrderHandler(orderService *services.OrderService, tracker *carrier.Tracker, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, tracker: tracker, log: log}
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "items are required"})
	}

	items := make([]services.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product_id"})
		}
		items = append(items, services.CheckoutItem{ProductID: productID, Quantity: it.Quantity})
	}

	shipping := decimal.Zero
	if req.ShippingFee != "" {
		var err error
		shipping, err = decimal.NewFromString(req.ShippingFee)
		if err != nil || shipping.IsNegative() {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid shipping_fee"})
		}
	}

	buyerID := middleware.GetUserID(c)
	order, err := h.orderService.Checkout(c.Context(), buyerID, items, shipping)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: order})
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	filter := repositories.OrderFilter{Limit: 20, Offset: 0}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}

	switch c.Query("role") {
	case "seller":
		filter.SellerID = &userID
	default:
		filter.BuyerID = &userID
	}

	orders, err := h.orderService.ListOrders(c.Context(), filter)
	if err != nil {
		h.log.Error("list orders failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: orders})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	order, err := h.orderService.GetOrder(c.Context(), orderID, middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: order})
}

func (h *OrderHandler) GetHistory(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	history, err := h.orderService.GetHistory(c.Context(), orderID, middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: history})
}

func (h *OrderHandler) ConfirmOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	order, err := h.orderService.ConfirmOrder(c.Context(), orderID, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: order})
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	var req dto.CancelOrderRequest
	_ = c.BodyParser(&req)

	order, err := h.orderService.CancelOrder(c.Context(), orderID, middleware.GetUserID(c), req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: order})
}

func (h *OrderHandler) ShipOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	var req dto.ShipOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.CarrierRef == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "carrier_ref is required"})
	}

	order, err := h.orderService.ShipOrder(c.Context(), orderID, middleware.GetUserID(c), req.CarrierRef)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: order})
}

func (h *OrderHandler) MarkDelivered(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	sellerID := middleware.GetUserID(c)
	order, err := h.orderService.MarkDelivered(c.Context(), orderID, models.ActorSeller, &sellerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: order})
}

func (h *OrderHandler) ConfirmReceipt(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	order, err := h.orderService.ConfirmReceipt(c.Context(), orderID, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: order})
}

func (h *OrderHandler) ReturnOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	var req dto.ReturnOrderRequest
	_ = c.BodyParser(&req)

	order, err := h.orderService.ReturnOrder(c.Context(), orderID, middleware.GetUserID(c), req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: order})
}

// GetTracking proxies the carrier tracking page for the order's carrier
// reference. Only parties to the order may look it up.
func (h *OrderHandler) GetTracking(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	order, err := h.orderService.GetOrder(c.Context(), orderID, middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	if order.CarrierRef == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "order has not been shipped with a carrier reference"})
	}

	info, err := h.tracker.Track(c.Context(), *order.CarrierRef)
	if err != nil {
		h.log.Warn("carrier lookup failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "carrier lookup failed"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: info})
}
