package controller

import (
	"github.com/gofiber/fiber/v2"

	"prizewheel/utils"
)

// GetCampaignStats returns play, lead and redemption counts
func (cc *CampaignController) GetCampaignStats(c *fiber.Ctx) error {
	operator := currentOperator(c)
	campaignID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	stats, err := cc.Manager.Stats(c.UserContext(), operator.ID, campaignID)
	if err != nil {
		return respondError(c, "campaign_stats", err)
	}
	return c.JSON(utils.SuccessResponse(stats))
}
