package handlers

import (
	"strconv"

	"github.com/Aman0246jploft/kudsun-backend/internal/http/dto"
	"github.com/Aman0246jploft/kudsun-backend/internal/middleware"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/Aman0246jploft/kudsun-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DisputeHandler struct {
	disputeService *services.DisputeService
	log            *zap.Logger
}

func NewDisputeHandler(disputeService *services.DisputeService, log *zap.Logger) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService, log: log}
}

func (h *DisputeHandler) CreateDispute(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid order id"})
	}

	var req dto.CreateDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.ClaimType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "claim_type is required"})
	}

	buyerID := middleware.GetUserID(c)
	dispute, err := h.disputeService.Create(c.Context(), orderID, buyerID, req.ClaimType, req.Description, req.Evidence)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

func (h *DisputeHandler) Respond(c *fiber.Ctx) error {
	disputeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid dispute id"})
	}

	var req dto.DisputeResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.ResponseType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "response_type is required"})
	}

	sellerID := middleware.GetUserID(c)
	dispute, err := h.disputeService.SellerRespond(c.Context(), disputeID, sellerID, req.ResponseType, req.Description, req.Attachments)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

func (h *DisputeHandler) Decide(c *fiber.Ctx) error {
	disputeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid dispute id"})
	}

	var req dto.DisputeDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	adminID := middleware.GetUserID(c)
	dispute, err := h.disputeService.Decide(c.Context(), disputeID, adminID, req.Decision, req.RefundPercent, req.Note)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

func (h *DisputeHandler) Reject(c *fiber.Ctx) error {
	disputeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid dispute id"})
	}

	var req dto.DisputeRejectRequest
	_ = c.BodyParser(&req)

	adminID := middleware.GetUserID(c)
	dispute, err := h.disputeService.Reject(c.Context(), disputeID, adminID, req.Note)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

func (h *DisputeHandler) Close(c *fiber.Ctx) error {
	disputeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid dispute id"})
	}

	adminID := middleware.GetUserID(c)
	dispute, err := h.disputeService.Close(c.Context(), disputeID, adminID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

func (h *DisputeHandler) GetDispute(c *fiber.Ctx) error {
	disputeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid dispute id"})
	}

	dispute, err := h.disputeService.Get(c.Context(), disputeID, middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

func (h *DisputeHandler) ListDisputes(c *fiber.Ctx) error {
	filter := repositories.DisputeFilter{Limit: 20, Offset: 0}

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

	disputes, err := h.disputeService.List(c.Context(), filter)
	if err != nil {
		h.log.Error("list disputes failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: disputes})
}
