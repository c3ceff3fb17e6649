package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan types
const (
	PlanFree = "free"
	PlanPaid = "paid"
)

// Subscription statuses reported by the billing provider
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
	SubscriptionNone     = "none"
)

// Operator represents a business account running campaigns
type Operator struct {
	gorm.Model

	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	Name         *string `json:"name,omitempty"`
	Company      *string `json:"company,omitempty"`
	Timezone     string  `gorm:"default:'UTC'" json:"timezone"`
	TokenVersion int     `gorm:"default:0" json:"-"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`

	// Entitlement context, kept in sync by the billing integration
	PlanID             *uint      `json:"plan_id,omitempty"`
	PlanType           string     `gorm:"default:'free';not null" json:"plan_type"`
	SubscriptionStatus string     `gorm:"default:'none';not null" json:"subscription_status"`
	PlanExpiresAt      *time.Time `json:"plan_expires_at"`

	// Prepaid counters, never negative. Credits only arrive through grants.
	CampaignCredits int `gorm:"default:0;not null;check:campaign_credits >= 0" json:"campaign_credits"`
	LeadCredits     int `gorm:"default:0;not null;check:lead_credits >= 0" json:"lead_credits"`

	// Relations
	Campaigns    []Campaign          `gorm:"foreignKey:OperatorID" json:"campaigns,omitempty"`
	Transactions []CreditTransaction `gorm:"foreignKey:OperatorID" json:"transactions,omitempty"`
}
