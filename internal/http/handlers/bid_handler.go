package handlers

import (
	"strconv"

	"github.com/Aman0246jploft/kudsun-backend/internal/http/dto"
	"github.com/Aman0246jploft/kudsun-backend/internal/middleware"
	"github.com/Aman0246jploft/kudsun-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BidHandler struct {
	bidService *services.BidService
	log        *zap.Logger
}

func NewBidHandler(bidService *services.BidService, log *zap.Logger) *BidHandler {
	return &BidHandler{bidService: bidService, log: log}
}

func (h *BidHandler) PlaceBid(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}

	var req dto.PlaceBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid amount"})
	}

	bid, err := h.bidService.PlaceBid(c.Context(), productID, middleware.GetUserID(c), amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: bid})
}

func (h *BidHandler) ListBids(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}

	limit, offset := 20, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	bids, err := h.bidService.ListBids(c.Context(), productID, limit, offset)
	if err != nil {
		h.log.Error("list bids failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: bids})
}
