package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead sources
const (
	SourceSpin  = "spin"
	SourceClaim = "claim"
)

// Lead is the single participant record per (campaign, email)
type Lead struct {
	gorm.Model
	CampaignID uint `gorm:"not null;uniqueIndex:idx_lead_campaign_email,priority:1" json:"campaign_id"`
	OperatorID uint `gorm:"not null;index" json:"operator_id"`

	Email string `gorm:"size:255;not null;uniqueIndex:idx_lead_campaign_email,priority:2" json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`

	// Prize
	PrizeWon            *string    `json:"prize_won"`
	ReferenceNumber     string     `gorm:"size:32;not null;uniqueIndex" json:"reference_number"`
	RedemptionExpiresAt *time.Time `json:"redemption_expires_at"`

	// Redemption, flipped once by the operator
	IsRedeemed bool       `gorm:"default:false;not null" json:"is_redeemed"`
	RedeemedAt *time.Time `json:"redeemed_at"`

	// Metadata
	Source    string     `json:"source"` // spin, claim
	ClaimedAt *time.Time `json:"claimed_at"`

	// Relations
	Campaign Campaign `json:"-"`
}

// State returns captured, claimed or redeemed
func (l *Lead) State() string {
	switch {
	case l.IsRedeemed:
		return "redeemed"
	case l.ClaimedAt != nil:
		return "claimed"
	default:
		return "captured"
	}
}
