package controller

import (
	"github.com/gofiber/fiber/v2"

	"prizewheel/utils"
)

// CreateCampaign stores a draft campaign, spending one campaign credit
func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	operator := currentOperator(c)

	var input campaignInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	campaign := input.toModel()
	if err := cc.Manager.Create(c.UserContext(), operator.ID, campaign); err != nil {
		return respondError(c, "create_campaign", err)
	}

	utils.LogEvent("campaign_created", map[string]interface{}{
		"operator_id": operator.ID,
		"campaign_id": campaign.ID,
	})
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(campaignView(campaign, cc.Manager.Now())))
}
