package handlers

import (
	"github.com/Aman0246jploft/kudsun-backend/internal/http/dto"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FeeHandler struct {
	feeRepo *repositories.FeeRepo
	log     *zap.Logger
}

func NewFeeHandler(feeRepo *repositories.FeeRepo, log *zap.Logger) *FeeHandler {
	return &FeeHandler{feeRepo: feeRepo, log: log}
}

func (h *FeeHandler) ListFees(c *fiber.Ctx) error {
	fees, err := h.feeRepo.List(c.Context())
	if err != nil {
		h.log.Error("list fee settings failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: fees})
}
