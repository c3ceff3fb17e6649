package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"prizewheel/models"
	"prizewheel/services"
	"prizewheel/utils"
)

type DashboardController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db, Now: time.Now}
}

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type DashboardStats struct {
	Range       TimeRange `json:"range"`
	TotalSpins  int64     `json:"total_spins"`
	TotalWins   int64     `json:"total_wins"`
	NewLeads    int64     `json:"new_leads"`
	Redemptions int64     `json:"redemptions"`
	WinRate     float64   `json:"win_rate"`
	RedeemRate  float64   `json:"redeem_rate"`
}

type TimeSeriesData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

type CampaignSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Spins       int    `json:"spins"`
	Leads       int    `json:"leads"`
	PublicID    string `json:"public_id"`
	IsPublished bool   `json:"is_published"`
}

func (dc *DashboardController) timeRange(frame string) TimeRange {
	now := dc.Now().UTC()
	switch frame {
	case "day":
		return TimeRange{Start: now.Add(-24 * time.Hour), End: now}
	case "month":
		return TimeRange{Start: now.AddDate(0, 0, -30), End: now}
	default:
		return TimeRange{Start: now.AddDate(0, 0, -7), End: now}
	}
}

func (dc *DashboardController) operatorAttempts(operatorID uint, tr TimeRange) *gorm.DB {
	return dc.DB.Model(&models.SpinAttempt{}).
		Joins("JOIN campaigns ON campaigns.id = spin_attempts.campaign_id").
		Where("campaigns.operator_id = ?", operatorID).
		Where("spin_attempts.attempted_at >= ? AND spin_attempts.attempted_at <= ?", tr.Start, tr.End)
}

// GetDashboardStats returns summary statistics for the dashboard cards
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	operator := currentOperator(c)
	tr := dc.timeRange(c.Query("time_frame", "week"))
	stats := DashboardStats{Range: tr}

	if err := dc.operatorAttempts(operator.ID, tr).Count(&stats.TotalSpins).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count spins", err)
	}
	if err := dc.operatorAttempts(operator.ID, tr).Where("spin_attempts.is_win = ?", true).Count(&stats.TotalWins).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count wins", err)
	}
	if err := dc.DB.Model(&models.Lead{}).
		Where("operator_id = ? AND created_at >= ? AND created_at <= ?", operator.ID, tr.Start, tr.End).
		Count(&stats.NewLeads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count leads", err)
	}
	if err := dc.DB.Model(&models.Lead{}).
		Where("operator_id = ? AND redeemed_at >= ? AND redeemed_at <= ?", operator.ID, tr.Start, tr.End).
		Count(&stats.Redemptions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count redemptions", err)
	}

	if stats.TotalSpins > 0 {
		stats.WinRate = float64(stats.TotalWins) / float64(stats.TotalSpins) * 100
	}
	if stats.NewLeads > 0 {
		stats.RedeemRate = float64(stats.Redemptions) / float64(stats.NewLeads) * 100
	}
	return c.JSON(utils.SuccessResponse(stats))
}

// GetPlaysOverTime returns daily spin and win counts for charting
func (dc *DashboardController) GetPlaysOverTime(c *fiber.Ctx) error {
	operator := currentOperator(c)
	tr := dc.timeRange(c.Query("time_frame", "week"))

	var rows []struct {
		AttemptedAt time.Time
		IsWin       bool
	}
	if err := dc.operatorAttempts(operator.ID, tr).
		Select("spin_attempts.attempted_at, spin_attempts.is_win").
		Scan(&rows).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch plays", err)
	}

	var labels []string
	index := make(map[string]int)
	for day := tr.Start.Truncate(24 * time.Hour); !day.After(tr.End); day = day.Add(24 * time.Hour) {
		label := day.Format("2006-01-02")
		index[label] = len(labels)
		labels = append(labels, label)
	}
	spins := make([]float64, len(labels))
	wins := make([]float64, len(labels))
	for _, row := range rows {
		i, ok := index[row.AttemptedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		spins[i]++
		if row.IsWin {
			wins[i]++
		}
	}

	return c.JSON(utils.SuccessResponse(TimeSeriesData{
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Spins", Data: spins},
			{Label: "Wins", Data: wins},
		},
	}))
}

// GetRecentCampaigns returns the five most recently created campaigns
func (dc *DashboardController) GetRecentCampaigns(c *fiber.Ctx) error {
	operator := currentOperator(c)

	var campaigns []models.Campaign
	if err := dc.DB.Where("operator_id = ?", operator.ID).Order("created_at DESC").Limit(5).Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", err)
	}

	now := dc.Now()
	summaries := make([]CampaignSummary, 0, len(campaigns))
	for _, campaign := range campaigns {
		summaries = append(summaries, CampaignSummary{
			ID:          campaign.ID,
			Name:        campaign.Name,
			Status:      services.Resolve(&campaign, now).EffectiveStatus,
			Spins:       campaign.SpinsCount,
			Leads:       campaign.LeadsCount,
			PublicID:    campaign.PublicID,
			IsPublished: campaign.IsPublished,
		})
	}
	return c.JSON(utils.SuccessResponse(summaries))
}
