package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prizewheel/models"
)

// Operator actions accepted by Transition
const (
	ActionActivate = "activate"
	ActionPause    = "pause"
	ActionEnd      = "end"
)

// CampaignManager holds the operator-side campaign operations
type CampaignManager struct {
	DB     *gorm.DB
	Ledger *Ledger
	Now    func() time.Time
}

func NewCampaignManager(db *gorm.DB, ledger *Ledger) *CampaignManager {
	return &CampaignManager{DB: db, Ledger: ledger, Now: time.Now}
}

// CampaignStats summarises a campaign for its operator
type CampaignStats struct {
	CampaignID    uint       `json:"campaign_id"`
	Resolution    Resolution `json:"lifecycle"`
	IsPublished   bool       `json:"is_published"`
	SpinsCount    int        `json:"spins_count"`
	LeadsCount    int        `json:"leads_count"`
	Wins          int64      `json:"wins"`
	ClaimedLeads  int64      `json:"claimed_leads"`
	RedeemedLeads int64      `json:"redeemed_leads"`
	LeadCredits   int        `json:"lead_credits_remaining"`
}

// ValidateCampaign checks the configuration an operator may edit
func ValidateCampaign(c *models.Campaign) error {
	if c.HasDateWindow() && !c.EndAt.After(*c.StartAt) {
		return fmt.Errorf("%w: end_at must be after start_at", ErrInvalidCampaign)
	}
	limits := map[string]*int{
		"limit_per_email":  c.LimitPerEmail,
		"limit_per_phone":  c.LimitPerPhone,
		"limit_per_ip":     c.LimitPerIP,
		"limit_per_device": c.LimitPerDevice,
		"limit_per_day":    c.LimitPerDay,
		"limit_per_week":   c.LimitPerWeek,
		"limit_total":      c.LimitTotal,
		"cooldown_hours":   c.CooldownHours,
	}
	for name, limit := range limits {
		if limit != nil && *limit < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidCampaign, name)
		}
	}
	if c.RedemptionExpiryDays < 0 {
		return fmt.Errorf("%w: redemption_expiry_days must not be negative", ErrInvalidCampaign)
	}
	seen := make(map[string]bool, len(c.PrizeSegments))
	for _, seg := range c.PrizeSegments {
		if seg.Label == "" {
			return fmt.Errorf("%w: prize segment label is required", ErrInvalidCampaign)
		}
		if seen[seg.Label] {
			return fmt.Errorf("%w: duplicate prize segment %q", ErrInvalidCampaign, seg.Label)
		}
		seen[seg.Label] = true
	}
	return nil
}

// Create stores a new draft campaign and spends one campaign credit
func (m *CampaignManager) Create(ctx context.Context, operatorID uint, c *models.Campaign) error {
	if err := ValidateCampaign(c); err != nil {
		return err
	}
	c.ID = 0
	c.OperatorID = operatorID
	c.PublicID = uuid.NewString()
	c.Status = models.StatusDraft
	c.IsPublished = false
	c.SpinsCount = 0
	c.LeadsCount = 0

	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		campaignID := c.ID
		return m.Ledger.TryReserve(ctx, tx, operatorID, models.CreditCampaign, Usage{
			CampaignID: &campaignID,
			Action:     ActionCreateCampaign,
		})
	})
	return storeErr("create campaign", err)
}

// Get loads a campaign owned by operatorID
func (m *CampaignManager) Get(ctx context.Context, operatorID, campaignID uint) (*models.Campaign, error) {
	var c models.Campaign
	err := m.DB.WithContext(ctx).Where("id = ? AND operator_id = ?", campaignID, operatorID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, storeErr("load campaign", err)
	}
	return &c, nil
}

// List returns the operator's campaigns, newest first
func (m *CampaignManager) List(ctx context.Context, operatorID uint, limit, offset int) ([]models.Campaign, int64, error) {
	var (
		campaigns []models.Campaign
		total     int64
	)
	q := m.DB.WithContext(ctx).Model(&models.Campaign{}).Where("operator_id = ?", operatorID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, storeErr("count campaigns", err)
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&campaigns).Error; err != nil {
		return nil, 0, storeErr("list campaigns", err)
	}
	return campaigns, total, nil
}

// Update replaces the editable configuration; counters and lifecycle are untouched
func (m *CampaignManager) Update(ctx context.Context, operatorID, campaignID uint, patch *models.Campaign) (*models.Campaign, error) {
	if err := ValidateCampaign(patch); err != nil {
		return nil, err
	}
	c, err := m.Get(ctx, operatorID, campaignID)
	if err != nil {
		return nil, err
	}

	err = m.DB.WithContext(ctx).Model(c).Select(
		"name", "description", "game_type", "start_at", "end_at", "prize_segments",
		"limit_per_email", "limit_per_phone", "limit_per_ip", "limit_per_device",
		"limit_per_day", "limit_per_week", "limit_total", "cooldown_hours",
		"redemption_expiry_days",
	).Updates(&models.Campaign{
		Name:                 patch.Name,
		Description:          patch.Description,
		GameType:             patch.GameType,
		StartAt:              patch.StartAt,
		EndAt:                patch.EndAt,
		PrizeSegments:        patch.PrizeSegments,
		LimitPerEmail:        patch.LimitPerEmail,
		LimitPerPhone:        patch.LimitPerPhone,
		LimitPerIP:           patch.LimitPerIP,
		LimitPerDevice:       patch.LimitPerDevice,
		LimitPerDay:          patch.LimitPerDay,
		LimitPerWeek:         patch.LimitPerWeek,
		LimitTotal:           patch.LimitTotal,
		CooldownHours:        patch.CooldownHours,
		RedemptionExpiryDays: patch.RedemptionExpiryDays,
	}).Error
	if err != nil {
		return nil, storeErr("update campaign", err)
	}
	return m.Get(ctx, operatorID, campaignID)
}

// Delete soft-deletes a campaign; spent credits are not refunded
func (m *CampaignManager) Delete(ctx context.Context, operatorID, campaignID uint) error {
	result := m.DB.WithContext(ctx).Where("id = ? AND operator_id = ?", campaignID, operatorID).Delete(&models.Campaign{})
	if result.Error != nil {
		return storeErr("delete campaign", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// SetPublished toggles participant visibility
func (m *CampaignManager) SetPublished(ctx context.Context, operatorID, campaignID uint, published bool) (*models.Campaign, error) {
	c, err := m.Get(ctx, operatorID, campaignID)
	if err != nil {
		return nil, err
	}
	if published && len(c.PrizeSegments) == 0 {
		return nil, fmt.Errorf("%w: add at least one prize segment before publishing", ErrInvalidCampaign)
	}
	if err := m.DB.WithContext(ctx).Model(c).Update("is_published", published).Error; err != nil {
		return nil, storeErr("publish campaign", err)
	}
	c.IsPublished = published
	return c, nil
}

// Transition applies an operator action if the resolver permits it right now
func (m *CampaignManager) Transition(ctx context.Context, operatorID, campaignID uint, action string) (*models.Campaign, Resolution, error) {
	c, err := m.Get(ctx, operatorID, campaignID)
	if err != nil {
		return nil, Resolution{}, err
	}
	now := m.Now().UTC()
	res := Resolve(c, now)

	var (
		allowed bool
		target  string
	)
	switch action {
	case ActionActivate:
		allowed, target = res.CanActivate, models.StatusActive
	case ActionPause:
		allowed, target = res.CanPause, models.StatusPaused
	case ActionEnd:
		allowed, target = res.CanEnd, models.StatusEnded
	default:
		return nil, res, fmt.Errorf("%w: unknown action %q", ErrTransitionNotAllowed, action)
	}
	if !allowed {
		if res.Reason != "" {
			return nil, res, fmt.Errorf("%w: %s", ErrTransitionNotAllowed, res.Reason)
		}
		return nil, res, ErrTransitionNotAllowed
	}

	if err := m.DB.WithContext(ctx).Model(c).Update("status", target).Error; err != nil {
		return nil, res, storeErr("transition campaign", err)
	}
	c.Status = target
	return c, Resolve(c, now), nil
}

// Stats aggregates counters and lead states
func (m *CampaignManager) Stats(ctx context.Context, operatorID, campaignID uint) (*CampaignStats, error) {
	c, err := m.Get(ctx, operatorID, campaignID)
	if err != nil {
		return nil, err
	}
	db := m.DB.WithContext(ctx)
	stats := &CampaignStats{
		CampaignID:  c.ID,
		Resolution:  Resolve(c, m.Now().UTC()),
		IsPublished: c.IsPublished,
		SpinsCount:  c.SpinsCount,
		LeadsCount:  c.LeadsCount,
	}
	if err := db.Model(&models.SpinAttempt{}).Where("campaign_id = ? AND is_win = ?", c.ID, true).Count(&stats.Wins).Error; err != nil {
		return nil, storeErr("count wins", err)
	}
	if err := db.Model(&models.Lead{}).Where("campaign_id = ? AND claimed_at IS NOT NULL", c.ID).Count(&stats.ClaimedLeads).Error; err != nil {
		return nil, storeErr("count claimed leads", err)
	}
	if err := db.Model(&models.Lead{}).Where("campaign_id = ? AND is_redeemed = ?", c.ID, true).Count(&stats.RedeemedLeads).Error; err != nil {
		return nil, storeErr("count redeemed leads", err)
	}
	balance, err := m.Ledger.Balance(ctx, db, operatorID)
	if err != nil {
		return nil, storeErr("load balance", err)
	}
	stats.LeadCredits = balance.LeadCredits
	return stats, nil
}
