package models

import "gorm.io/gorm"

// Credit kinds
const (
	CreditCampaign = "campaign"
	CreditLead     = "lead"
)

// Plan represents available credit packages
type Plan struct {
	gorm.Model
	Name        string `gorm:"not null;uniqueIndex" json:"name"` // free, starter, pro
	Description string `json:"description"`
	PlanType    string `gorm:"not null;default:'free'" json:"plan_type"`

	CampaignCredits int `gorm:"not null" json:"campaign_credits"`
	LeadCredits     int `gorm:"not null" json:"lead_credits"`
	Price           int `gorm:"not null" json:"price"` // in cents

	// For display purposes
	DisplayPrice    string `gorm:"-" json:"display_price"`
	IsPopular       bool   `gorm:"default:false" json:"is_popular"`
	BillingInterval string `json:"billing_interval" gorm:"default:'one_time'"` // one_time, monthly, yearly
}

// CreditTransaction records credit grants
type CreditTransaction struct {
	gorm.Model
	OperatorID uint  `gorm:"not null;index" json:"operator_id"`
	PlanID     *uint `json:"plan_id,omitempty"`

	// Credit changes, positive for grants
	CampaignCredits int `gorm:"not null" json:"campaign_credits"`
	LeadCredits     int `gorm:"not null" json:"lead_credits"`

	Description string `json:"description"`
	ReferenceID string `json:"reference_id"` // external billing reference
	GrantedBy   *uint  `json:"granted_by,omitempty"`

	// Relations
	Operator Operator `json:"-"`
	Plan     *Plan    `json:"plan,omitempty"`
}

// CreditUsage tracks every successful debit
type CreditUsage struct {
	gorm.Model
	OperatorID uint  `gorm:"not null;index" json:"operator_id"`
	CampaignID *uint `gorm:"index" json:"campaign_id,omitempty"`

	CreditType  string `gorm:"not null" json:"credit_type"` // campaign or lead
	Amount      int    `gorm:"not null" json:"amount"`      // Always positive
	Action      string `gorm:"not null" json:"action"`      // create_campaign, capture_lead
	TargetEmail string `json:"target_email,omitempty"`

	// Relations
	Operator Operator  `json:"-"`
	Campaign *Campaign `json:"campaign,omitempty"`
}
