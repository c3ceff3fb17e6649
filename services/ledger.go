package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"prizewheel/models"
)

// Credit debit actions recorded in CreditUsage
const (
	ActionCreateCampaign = "create_campaign"
	ActionCaptureLead    = "capture_lead"
)

var creditColumns = map[string]string{
	models.CreditCampaign: "campaign_credits",
	models.CreditLead:     "lead_credits",
}

// Usage describes what a debit paid for
type Usage struct {
	CampaignID  *uint
	Action      string
	TargetEmail string
}

// Balance is an operator's remaining prepaid credits
type Balance struct {
	OperatorID      uint   `json:"operator_id"`
	CampaignCredits int    `json:"campaign_credits"`
	LeadCredits     int    `json:"lead_credits"`
	PlanType        string `json:"plan_type"`
}

// Ledger owns the operator credit counters. A debit is a single conditional
// decrement so concurrent callers can never push a counter below zero.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// TryReserve debits one credit of kind and records the usage.
// Returns ErrCreditsExhausted when the balance is already zero.
func (l *Ledger) TryReserve(ctx context.Context, tx *gorm.DB, operatorID uint, kind string, usage Usage) error {
	column, ok := creditColumns[kind]
	if !ok {
		return fmt.Errorf("unknown credit kind %q", kind)
	}

	result := tx.WithContext(ctx).Model(&models.Operator{}).
		Where("id = ? AND "+column+" > 0", operatorID).
		Update(column, gorm.Expr(column+" - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.WithContext(ctx).Model(&models.Operator{}).Where("id = ?", operatorID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrOperatorNotFound
		}
		return ErrCreditsExhausted
	}

	return tx.WithContext(ctx).Create(&models.CreditUsage{
		OperatorID:  operatorID,
		CampaignID:  usage.CampaignID,
		CreditType:  kind,
		Amount:      1,
		Action:      usage.Action,
		TargetEmail: usage.TargetEmail,
	}).Error
}

// Available reports whether at least one credit of kind remains, without reserving it
func (l *Ledger) Available(ctx context.Context, db *gorm.DB, operatorID uint, kind string) (bool, error) {
	column, ok := creditColumns[kind]
	if !ok {
		return false, fmt.Errorf("unknown credit kind %q", kind)
	}
	var count int64
	err := db.WithContext(ctx).Model(&models.Operator{}).
		Where("id = ? AND "+column+" > 0", operatorID).
		Count(&count).Error
	return count > 0, err
}

// Balance returns the operator's current counters
func (l *Ledger) Balance(ctx context.Context, db *gorm.DB, operatorID uint) (*Balance, error) {
	var op models.Operator
	err := db.WithContext(ctx).
		Select("id", "campaign_credits", "lead_credits", "plan_type").
		First(&op, operatorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Balance{
		OperatorID:      op.ID,
		CampaignCredits: op.CampaignCredits,
		LeadCredits:     op.LeadCredits,
		PlanType:        op.PlanType,
	}, nil
}

// Grant adds credits to an operator and writes the matching CreditTransaction
func (l *Ledger) Grant(ctx context.Context, db *gorm.DB, txn *models.CreditTransaction) error {
	if txn.CampaignCredits < 0 || txn.LeadCredits < 0 {
		return errors.New("grant amounts must not be negative")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Operator{}).Where("id = ?", txn.OperatorID).Updates(map[string]interface{}{
			"campaign_credits": gorm.Expr("campaign_credits + ?", txn.CampaignCredits),
			"lead_credits":     gorm.Expr("lead_credits + ?", txn.LeadCredits),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOperatorNotFound
		}
		return tx.Create(txn).Error
	})
}

// GrantPlan credits an operator with a plan's bundle
func (l *Ledger) GrantPlan(ctx context.Context, db *gorm.DB, operatorID uint, planName string, grantedBy *uint, referenceID string) (*models.CreditTransaction, error) {
	var plan models.Plan
	if err := db.WithContext(ctx).Where("name = ?", planName).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("plan %q not found", planName)
		}
		return nil, err
	}

	txn := &models.CreditTransaction{
		OperatorID:      operatorID,
		PlanID:          &plan.ID,
		CampaignCredits: plan.CampaignCredits,
		LeadCredits:     plan.LeadCredits,
		Description:     fmt.Sprintf("%s plan credits", plan.Name),
		ReferenceID:     referenceID,
		GrantedBy:       grantedBy,
	}
	if err := l.Grant(ctx, db, txn); err != nil {
		return nil, err
	}
	return txn, nil
}
