package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"prizewheel/models"
	"prizewheel/services"
)

type CampaignController struct {
	Manager *services.CampaignManager
}

func NewCampaignController(manager *services.CampaignManager) *CampaignController {
	return &CampaignController{Manager: manager}
}

type segmentInput struct {
	Label     string `json:"label" validate:"required,max=100"`
	PrizeType string `json:"prize_type" validate:"omitempty,max=50"`
	Color     string `json:"color" validate:"omitempty,max=20"`
	IsNoWin   bool   `json:"is_no_win"`
}

// campaignInput is the editable configuration shared by create and update
type campaignInput struct {
	Name                 string         `json:"name" validate:"required,min=1,max=200"`
	Description          string         `json:"description" validate:"omitempty,max=2000"`
	GameType             string         `json:"game_type" validate:"omitempty,oneof=wheel scratch"`
	StartAt              *time.Time     `json:"start_at"`
	EndAt                *time.Time     `json:"end_at"`
	PrizeSegments        []segmentInput `json:"prize_segments" validate:"max=24,dive"`
	LimitPerEmail        *int           `json:"limit_per_email" validate:"omitempty,min=0"`
	LimitPerPhone        *int           `json:"limit_per_phone" validate:"omitempty,min=0"`
	LimitPerIP           *int           `json:"limit_per_ip" validate:"omitempty,min=0"`
	LimitPerDevice       *int           `json:"limit_per_device" validate:"omitempty,min=0"`
	LimitPerDay          *int           `json:"limit_per_day" validate:"omitempty,min=0"`
	LimitPerWeek         *int           `json:"limit_per_week" validate:"omitempty,min=0"`
	LimitTotal           *int           `json:"limit_total" validate:"omitempty,min=0"`
	CooldownHours        *int           `json:"cooldown_hours" validate:"omitempty,min=0"`
	RedemptionExpiryDays int            `json:"redemption_expiry_days" validate:"omitempty,min=1,max=3650"`
}

func (in campaignInput) toModel() *models.Campaign {
	gameType := in.GameType
	if gameType == "" {
		gameType = models.GameWheel
	}
	segments := make([]models.PrizeSegment, 0, len(in.PrizeSegments))
	for _, seg := range in.PrizeSegments {
		segments = append(segments, models.PrizeSegment{
			Label:     seg.Label,
			PrizeType: seg.PrizeType,
			Color:     seg.Color,
			IsNoWin:   seg.IsNoWin,
		})
	}
	return &models.Campaign{
		Name:                 in.Name,
		Description:          in.Description,
		GameType:             gameType,
		StartAt:              in.StartAt,
		EndAt:                in.EndAt,
		PrizeSegments:        segments,
		LimitPerEmail:        in.LimitPerEmail,
		LimitPerPhone:        in.LimitPerPhone,
		LimitPerIP:           in.LimitPerIP,
		LimitPerDevice:       in.LimitPerDevice,
		LimitPerDay:          in.LimitPerDay,
		LimitPerWeek:         in.LimitPerWeek,
		LimitTotal:           in.LimitTotal,
		CooldownHours:        in.CooldownHours,
		RedemptionExpiryDays: in.RedemptionExpiryDays,
	}
}

// campaignView adds the derived lifecycle to the stored campaign
func campaignView(c *models.Campaign, now time.Time) fiber.Map {
	return fiber.Map{
		"campaign":  c,
		"lifecycle": services.Resolve(c, now),
	}
}
