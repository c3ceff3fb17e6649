package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"prizewheel/models"
)

// Entitlement is the plan context that decides whether leads are metered
type Entitlement struct {
	PlanType           string
	SubscriptionStatus string
	PlanExpiresAt      *time.Time
}

// ChargesPerLead reports whether a new lead debits a lead credit
func (e Entitlement) ChargesPerLead(now time.Time) bool {
	if e.PlanType != models.PlanPaid {
		return true
	}
	if e.SubscriptionStatus != models.SubscriptionActive && e.SubscriptionStatus != models.SubscriptionTrialing {
		return true
	}
	return e.PlanExpiresAt != nil && now.After(*e.PlanExpiresAt)
}

// EntitlementLookup resolves an operator's plan context inside the caller's transaction
type EntitlementLookup interface {
	Lookup(ctx context.Context, db *gorm.DB, operatorID uint) (Entitlement, error)
}

// OperatorEntitlements reads entitlement from the operator row
type OperatorEntitlements struct{}

func (OperatorEntitlements) Lookup(ctx context.Context, db *gorm.DB, operatorID uint) (Entitlement, error) {
	var op models.Operator
	err := db.WithContext(ctx).
		Select("id", "plan_type", "subscription_status", "plan_expires_at").
		First(&op, operatorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entitlement{}, ErrOperatorNotFound
	}
	if err != nil {
		return Entitlement{}, err
	}
	return Entitlement{
		PlanType:           op.PlanType,
		SubscriptionStatus: op.SubscriptionStatus,
		PlanExpiresAt:      op.PlanExpiresAt,
	}, nil
}
