package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"prizewheel/models"
)

// LeadFilter narrows an operator's lead listing
type LeadFilter struct {
	CampaignID uint
	State      string // captured, claimed, redeemed
	Search     string
	Limit      int
	Offset     int
}

// LeadBook holds the operator-side participant record operations
type LeadBook struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewLeadBook(db *gorm.DB) *LeadBook {
	return &LeadBook{DB: db, Now: time.Now}
}

// List returns the operator's leads matching filter, newest first
func (b *LeadBook) List(ctx context.Context, operatorID uint, filter LeadFilter) ([]models.Lead, int64, error) {
	q := b.DB.WithContext(ctx).Model(&models.Lead{}).Where("operator_id = ?", operatorID)
	if filter.CampaignID != 0 {
		q = q.Where("campaign_id = ?", filter.CampaignID)
	}
	switch filter.State {
	case "redeemed":
		q = q.Where("is_redeemed = ?", true)
	case "claimed":
		q = q.Where("is_redeemed = ? AND claimed_at IS NOT NULL", false)
	case "captured":
		q = q.Where("is_redeemed = ? AND claimed_at IS NULL", false)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR reference_number = ?)", like, like, strings.ToUpper(s))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, storeErr("count leads", err)
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	var leads []models.Lead
	if err := q.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&leads).Error; err != nil {
		return nil, 0, storeErr("list leads", err)
	}
	return leads, total, nil
}

// ByReference finds a lead by the code the participant presents
func (b *LeadBook) ByReference(ctx context.Context, operatorID uint, reference string) (*models.Lead, error) {
	var lead models.Lead
	err := b.DB.WithContext(ctx).
		Where("operator_id = ? AND reference_number = ?", operatorID, strings.ToUpper(strings.TrimSpace(reference))).
		First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, storeErr("load lead", err)
	}
	return &lead, nil
}

// Redeem marks a lead's prize as handed over. It succeeds once.
func (b *LeadBook) Redeem(ctx context.Context, operatorID, leadID uint) (*models.Lead, error) {
	now := b.Now().UTC()

	var lead models.Lead
	err := b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND operator_id = ?", leadID, operatorID).First(&lead).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeadNotFound
			}
			return err
		}
		if lead.IsRedeemed {
			return ErrAlreadyRedeemed
		}
		if lead.PrizeWon == nil {
			return ErrOutcomeNotDrawn
		}
		if lead.RedemptionExpiresAt != nil && now.After(*lead.RedemptionExpiresAt) {
			return ErrRedemptionExpired
		}

		result := tx.Model(&models.Lead{}).
			Where("id = ? AND is_redeemed = ?", lead.ID, false).
			Updates(map[string]interface{}{"is_redeemed": true, "redeemed_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyRedeemed
		}
		lead.IsRedeemed = true
		lead.RedeemedAt = &now
		return nil
	})
	if err != nil {
		return nil, storeErr("redeem lead", err)
	}
	return &lead, nil
}
