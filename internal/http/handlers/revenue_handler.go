package handlers

import (
	"github.com/Aman0246jploft/kudsun-backend/internal/http/dto"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RevenueHandler struct {
	revenueRepo *repositories.RevenueRepo
	log         *zap.Logger
}

func NewRevenueHandler(revenueRepo *repositories.RevenueRepo, log *zap.Logger) *RevenueHandler {
	return &RevenueHandler{revenueRepo: revenueRepo, log: log}
}

// ListOrderRevenues returns the platform fee rows booked against an
// order, pending and settled alike.
func (h *RevenueHandler) ListOrderRevenues(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	revenues, err := h.revenueRepo.ListByOrder(c.Context(), orderID)
	if err != nil {
		h.log.Error("list order revenues failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: revenues})
}
