package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"prizewheel/metrics"
	"prizewheel/models"
	"prizewheel/services"
	"prizewheel/utils"
)

// PlayController serves the participant-facing game endpoints
type PlayController struct {
	Engine *services.Engine
}

func NewPlayController(engine *services.Engine) *PlayController {
	return &PlayController{Engine: engine}
}

type playInput struct {
	Email             string `json:"email" validate:"omitempty,max=255"`
	Phone             string `json:"phone" validate:"omitempty,max=50"`
	DeviceFingerprint string `json:"device_fingerprint" validate:"omitempty,max=255"`
	// Ignored by spin; the server draws the outcome
	PrizeLabel string `json:"prize_label" validate:"omitempty,max=100"`
}

type claimInput struct {
	Email             string `json:"email" validate:"required,max=255"`
	Name              string `json:"name" validate:"omitempty,max=100"`
	Phone             string `json:"phone" validate:"omitempty,max=50"`
	DeviceFingerprint string `json:"device_fingerprint" validate:"omitempty,max=255"`
	PrizeLabel        string `json:"prize_label" validate:"omitempty,max=100"`
}

// publicSegment is the widget view of a prize segment
type publicSegment struct {
	Label     string `json:"label"`
	PrizeType string `json:"prize_type,omitempty"`
	Color     string `json:"color,omitempty"`
	IsNoWin   bool   `json:"is_no_win"`
}

func (pc *PlayController) identity(c *fiber.Ctx, email, phone, device string) services.Identity {
	if device == "" {
		device = c.Get("X-Device-Fingerprint")
	}
	return services.Identity{
		Email:             email,
		Phone:             phone,
		IP:                c.IP(),
		DeviceFingerprint: device,
	}
}

// GetCampaign returns the public view the game widget renders
func (pc *PlayController) GetCampaign(c *fiber.Ctx) error {
	campaign, err := pc.Engine.PublicCampaign(c.UserContext(), c.Params("publicID"))
	if err != nil {
		return respondError(c, "get_campaign", err)
	}
	if !campaign.IsPublished {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	segments := make([]publicSegment, 0, len(campaign.PrizeSegments))
	for _, seg := range campaign.PrizeSegments {
		segments = append(segments, publicSegment{
			Label:     seg.Label,
			PrizeType: seg.PrizeType,
			Color:     seg.Color,
			IsNoWin:   seg.IsNoWin,
		})
	}
	res := services.Resolve(campaign, pc.Engine.Now())

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"public_id":   campaign.PublicID,
		"name":        campaign.Name,
		"description": campaign.Description,
		"game_type":   campaign.GameType,
		"status":      res.EffectiveStatus,
		"start_at":    campaign.StartAt,
		"end_at":      campaign.EndAt,
		"segments":    segments,
	}))
}

// CheckSpin reports whether the participant may play, without recording anything
func (pc *PlayController) CheckSpin(c *fiber.Ctx) error {
	start := time.Now()

	var input playInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	decision, err := pc.Engine.CheckSpin(c.UserContext(), c.Params("publicID"),
		pc.identity(c, input.Email, input.Phone, input.DeviceFingerprint))
	outcome := outcomeOf(err)
	if err == nil && !decision.Allowed {
		outcome = "not_eligible"
	}
	metrics.RecordPlay("check_spin", outcome, time.Since(start).Seconds())
	if err != nil {
		return respondError(c, "check_spin", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"can_spin": decision.Allowed,
		"reason":   decision.Reason,
		"message":  decision.Message,
	}))
}

// Spin draws and records one play
func (pc *PlayController) Spin(c *fiber.Ctx) error {
	start := time.Now()

	var input playInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	result, err := pc.Engine.Spin(c.UserContext(), c.Params("publicID"),
		pc.identity(c, input.Email, input.Phone, input.DeviceFingerprint))
	metrics.RecordPlay("spin", outcomeOf(err), time.Since(start).Seconds())
	if err != nil {
		return respondError(c, "spin", err)
	}

	return c.JSON(utils.SuccessResponse(result))
}

// ClaimPrize stores the participant's contact details against their win
func (pc *PlayController) ClaimPrize(c *fiber.Ctx) error {
	start := time.Now()

	var input claimInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	result, err := pc.Engine.ClaimPrize(c.UserContext(), c.Params("publicID"), services.ClaimRequest{
		Identity:   pc.identity(c, input.Email, input.Phone, input.DeviceFingerprint),
		Name:       strings.TrimSpace(input.Name),
		PrizeLabel: input.PrizeLabel,
	})
	metrics.RecordPlay("claim_prize", outcomeOf(err), time.Since(start).Seconds())
	if err != nil {
		return respondError(c, "claim_prize", err)
	}

	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(utils.SuccessResponse(claimView(result.Lead)))
}

func claimView(lead *models.Lead) fiber.Map {
	return fiber.Map{
		"reference_number":      lead.ReferenceNumber,
		"prize":                 lead.PrizeWon,
		"redemption_expires_at": lead.RedemptionExpiresAt,
		"is_redeemed":           lead.IsRedeemed,
		"state":                 lead.State(),
	}
}
