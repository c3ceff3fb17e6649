package controller

import (
	"github.com/gofiber/fiber/v2"

	"prizewheel/utils"
)

// UpdateCampaign replaces the editable configuration
func (cc *CampaignController) UpdateCampaign(c *fiber.Ctx) error {
	operator := currentOperator(c)
	campaignID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	var input campaignInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	campaign, err := cc.Manager.Update(c.UserContext(), operator.ID, campaignID, input.toModel())
	if err != nil {
		return respondError(c, "update_campaign", err)
	}
	return c.JSON(utils.SuccessResponse(campaignView(campaign, cc.Manager.Now())))
}

// PublishCampaign makes the campaign visible to participants
func (cc *CampaignController) PublishCampaign(c *fiber.Ctx) error {
	return cc.setPublished(c, true)
}

// UnpublishCampaign hides the campaign from participants
func (cc *CampaignController) UnpublishCampaign(c *fiber.Ctx) error {
	return cc.setPublished(c, false)
}

func (cc *CampaignController) setPublished(c *fiber.Ctx, published bool) error {
	operator := currentOperator(c)
	campaignID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	campaign, err := cc.Manager.SetPublished(c.UserContext(), operator.ID, campaignID, published)
	if err != nil {
		return respondError(c, "publish_campaign", err)
	}
	return c.JSON(utils.SuccessResponse(campaignView(campaign, cc.Manager.Now())))
}

// TransitionCampaign applies activate, pause or end when the lifecycle allows it
func (cc *CampaignController) TransitionCampaign(c *fiber.Ctx) error {
	operator := currentOperator(c)
	campaignID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}
	action := c.Params("action")

	campaign, res, err := cc.Manager.Transition(c.UserContext(), operator.ID, campaignID, action)
	if err != nil {
		return respondError(c, "transition_campaign", err)
	}

	utils.LogEvent("campaign_transition", map[string]interface{}{
		"operator_id": operator.ID,
		"campaign_id": campaign.ID,
		"action":      action,
		"status":      res.EffectiveStatus,
	})
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"campaign":  campaign,
		"lifecycle": res,
	}))
}
