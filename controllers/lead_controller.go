package controller

import (
	"github.com/gofiber/fiber/v2"

	"prizewheel/services"
	"prizewheel/utils"
)

type LeadController struct {
	Book *services.LeadBook
}

func NewLeadController(book *services.LeadBook) *LeadController {
	return &LeadController{Book: book}
}

// GetLeads lists captured participants with optional campaign, state and search filters
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	operator := currentOperator(c)
	page, limit := c.QueryInt("page", 1), c.QueryInt("limit", 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	state := c.Query("state")
	switch state {
	case "", "captured", "claimed", "redeemed":
	default:
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "state must be one of captured, claimed, redeemed", nil)
	}

	leads, total, err := lc.Book.List(c.UserContext(), operator.ID, services.LeadFilter{
		CampaignID: uint(c.QueryInt("campaign_id", 0)),
		State:      state,
		Search:     c.Query("search"),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return respondError(c, "list_leads", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"leads": leads,
		"total": total,
		"page":  page,
		"limit": limit,
	}))
}

// GetLeadByReference looks up the code a participant shows at redemption
func (lc *LeadController) GetLeadByReference(c *fiber.Ctx) error {
	operator := currentOperator(c)

	lead, err := lc.Book.ByReference(c.UserContext(), operator.ID, c.Params("reference"))
	if err != nil {
		return respondError(c, "lead_by_reference", err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"lead":  lead,
		"state": lead.State(),
	}))
}

// RedeemLead marks the prize as handed over; a second call is a conflict
func (lc *LeadController) RedeemLead(c *fiber.Ctx) error {
	operator := currentOperator(c)
	leadID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lead ID", nil)
	}

	lead, err := lc.Book.Redeem(c.UserContext(), operator.ID, leadID)
	if err != nil {
		return respondError(c, "redeem_lead", err)
	}

	utils.LogEvent("lead_redeemed", map[string]interface{}{
		"operator_id": operator.ID,
		"lead_id":     lead.ID,
		"campaign_id": lead.CampaignID,
	})
	return c.JSON(utils.SuccessResponse(lead))
}
