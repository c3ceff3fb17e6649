package controller

import (
	"github.com/gofiber/fiber/v2"

	"prizewheel/services"
	"prizewheel/utils"
)

// GetCampaigns returns a page of the operator's campaigns
func (cc *CampaignController) GetCampaigns(c *fiber.Ctx) error {
	operator := currentOperator(c)
	page, limit := c.QueryInt("page", 1), c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	campaigns, total, err := cc.Manager.List(c.UserContext(), operator.ID, limit, (page-1)*limit)
	if err != nil {
		return respondError(c, "list_campaigns", err)
	}

	now := cc.Manager.Now()
	items := make([]fiber.Map, 0, len(campaigns))
	for i := range campaigns {
		items = append(items, campaignView(&campaigns[i], now))
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"campaigns": items,
		"total":     total,
		"page":      page,
		"limit":     limit,
	}))
}

// GetCampaign returns one campaign with its resolved lifecycle
func (cc *CampaignController) GetCampaign(c *fiber.Ctx) error {
	operator := currentOperator(c)
	campaignID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	campaign, err := cc.Manager.Get(c.UserContext(), operator.ID, campaignID)
	if err != nil {
		return respondError(c, "get_campaign", err)
	}
	return c.JSON(utils.SuccessResponse(campaignView(campaign, cc.Manager.Now())))
}

// GetCampaignLifecycle exposes the resolver alone for dashboards polling status
func (cc *CampaignController) GetCampaignLifecycle(c *fiber.Ctx) error {
	operator := currentOperator(c)
	campaignID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	campaign, err := cc.Manager.Get(c.UserContext(), operator.ID, campaignID)
	if err != nil {
		return respondError(c, "get_lifecycle", err)
	}
	return c.JSON(utils.SuccessResponse(services.Resolve(campaign, cc.Manager.Now())))
}
