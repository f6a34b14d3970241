package handlers

import (
	"errors"

	"github.com/Aman0246jploft/kudsun-backend/internal/http/dto"
	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// statusForError maps domain errors onto HTTP codes: missing resources
// are 404, authorization failures 403, state conflicts 409 and
// everything else falls through as a 400 validation failure.
func statusForError(err error) int {
	var tr *models.InvalidTransitionError
	switch {
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrDisputeNotFound),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrWithdrawalNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.As(err, &tr),
		errors.Is(err, models.ErrAlreadyProcessed),
		errors.Is(err, models.ErrDuplicateDispute),
		errors.Is(err, models.ErrDuplicatePayout),
		errors.Is(err, models.ErrDisputeUnresolved):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
}
