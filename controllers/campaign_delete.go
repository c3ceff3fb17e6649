package controller

import (
	"github.com/gofiber/fiber/v2"

	"prizewheel/utils"
)

// DeleteCampaign soft-deletes a campaign; its leads stay available
func (cc *CampaignController) DeleteCampaign(c *fiber.Ctx) error {
	operator := currentOperator(c)
	campaignID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	if err := cc.Manager.Delete(c.UserContext(), operator.ID, campaignID); err != nil {
		return respondError(c, "delete_campaign", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Campaign deleted successfully",
	})
}
