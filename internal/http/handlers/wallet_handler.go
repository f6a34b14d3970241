package handlers

import (
	"strconv"

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

type WalletHandler struct {
	walletService *services.WalletService
	log           *zap.Logger
}

func NewWalletHandler(walletService *services.WalletService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{walletService: walletService, log: log}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	wallet, err := h.walletService.Balance(c.Context(), middleware.GetUserID(c))
	if err != nil {
		h.log.Error("get wallet failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: wallet})
}

func (h *WalletHandler) ListLedger(c *fiber.Ctx) error {
	filter := repositories.LedgerFilter{Limit: 20, Offset: 0}

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
	if v := c.Query("kind"); v != "" {
		filter.Kind = &v
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}

	entries, err := h.walletService.ListEntries(c.Context(), middleware.GetUserID(c), filter)
	if err != nil {
		h.log.Error("list ledger failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *WalletHandler) CreateWithdrawal(c *fiber.Ctx) error {
	var req dto.CreateWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid amount"})
	}

	withdrawal, err := h.walletService.ReserveForWithdrawal(c.Context(), middleware.GetUserID(c), amount, req.PayoutMethodRef)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: withdrawal})
}

func (h *WalletHandler) ResolveWithdrawal(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid withdrawal id"})
	}

	var req dto.ResolveWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	withdrawal, err := h.walletService.ResolveWithdrawal(c.Context(), requestID, req.Approve, req.AdminNote)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: withdrawal})
}

func (h *WalletHandler) ListWithdrawals(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	filter := repositories.WithdrawalFilter{Limit: 20, Offset: 0}

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

	// Admins may inspect any user's requests; everyone else sees their own.
	if middleware.GetRole(c) == models.RoleAdmin {
		if v := c.Query("user_id"); v != "" {
			if id, err := uuid.Parse(v); err == nil {
				filter.UserID = &id
			}
		}
	} else {
		filter.UserID = &userID
	}

	withdrawals, err := h.walletService.ListWithdrawals(c.Context(), filter)
	if err != nil {
		h.log.Error("list withdrawals failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: withdrawals})
}
