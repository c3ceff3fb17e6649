package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"prizewheel/models"
	"prizewheel/services"
	"prizewheel/utils"
)

// respondError maps engine errors onto HTTP responses
func respondError(c *fiber.Ctx, op string, err error) error {
	var ne *services.NotEligibleError
	var se *services.StoreError

	switch {
	case errors.As(err, &ne):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   ne.Message,
			"reason":  ne.Reason,
		})
	case errors.Is(err, services.ErrCreditsExhausted):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"success": false,
			"error":   services.ReasonCreditsExhausted.Message(),
			"reason":  services.ReasonCreditsExhausted,
		})
	case errors.Is(err, services.ErrCampaignNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	case errors.Is(err, services.ErrLeadNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	case errors.Is(err, services.ErrOperatorNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Operator not found", nil)
	case errors.Is(err, services.ErrInvalidIdentity), errors.Is(err, services.ErrInvalidCampaign):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, services.ErrOutcomeNotDrawn):
		return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity, "No matching prize was won", nil)
	case errors.Is(err, services.ErrAlreadyRedeemed), errors.Is(err, services.ErrTransitionNotAllowed):
		return utils.ErrorResponse(c, fiber.StatusConflict, err.Error(), nil)
	case errors.Is(err, services.ErrRedemptionExpired):
		return utils.ErrorResponse(c, fiber.StatusGone, "Redemption window has expired", nil)
	case errors.As(err, &se):
		utils.LogError("store_error", err, map[string]interface{}{"operation": op, "path": c.Path()})
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Temporarily unavailable, please retry", nil)
	}

	utils.LogError("internal_error", err, map[string]interface{}{"operation": op, "path": c.Path()})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", nil)
}

// outcomeOf labels an error for play metrics
func outcomeOf(err error) string {
	var ne *services.NotEligibleError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ne):
		return "not_eligible"
	case errors.Is(err, services.ErrCreditsExhausted):
		return "credits_exhausted"
	case errors.Is(err, services.ErrCampaignNotFound):
		return "not_found"
	case errors.Is(err, services.ErrInvalidIdentity), errors.Is(err, services.ErrOutcomeNotDrawn):
		return "invalid"
	}
	return "error"
}

func currentOperator(c *fiber.Ctx) *models.Operator {
	op, _ := c.Locals("operator").(*models.Operator)
	return op
}
