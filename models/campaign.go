package models

import (
	"time"

	"gorm.io/gorm"
)

// Stored campaign statuses. "scheduled" is never stored; it is derived from dates.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusEnded     = "ended"
)

// Game types
const (
	GameWheel   = "wheel"
	GameScratch = "scratch"
)

// Campaign represents a spin-the-wheel or scratch-card promotion
type Campaign struct {
	gorm.Model
	OperatorID uint   `gorm:"not null;index" json:"operator_id"`
	PublicID   string `gorm:"size:36;not null;uniqueIndex" json:"public_id"`

	// Campaign details
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	GameType    string `gorm:"default:'wheel'" json:"game_type"` // wheel, scratch

	// Lifecycle
	Status      string     `gorm:"default:'draft';not null;index" json:"status"` // draft, active, paused, ended
	IsPublished bool       `gorm:"default:false;index" json:"is_published"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`

	// Prize wheel, ordered by position
	PrizeSegments []PrizeSegment `gorm:"type:jsonb;serializer:json" json:"prize_segments"`

	// Limits, nil means unlimited
	LimitPerEmail  *int `json:"limit_per_email"`
	LimitPerPhone  *int `json:"limit_per_phone"`
	LimitPerIP     *int `gorm:"column:limit_per_ip" json:"limit_per_ip"`
	LimitPerDevice *int `json:"limit_per_device"`
	LimitPerDay    *int `json:"limit_per_day"`
	LimitPerWeek   *int `json:"limit_per_week"`
	LimitTotal     *int `json:"limit_total"`
	CooldownHours  *int `json:"cooldown_hours"`

	// Statistics, only ever incremented
	SpinsCount int `gorm:"default:0;not null" json:"spins_count"`
	LeadsCount int `gorm:"default:0;not null" json:"leads_count"`

	RedemptionExpiryDays int `gorm:"default:30;not null" json:"redemption_expiry_days"`

	// Relations
	Operator Operator `json:"-"`
	Leads    []Lead   `gorm:"foreignKey:CampaignID" json:"leads,omitempty"`
}

// PrizeSegment is one slice of the wheel
type PrizeSegment struct {
	Label     string `json:"label" validate:"required,max=100"`
	PrizeType string `json:"prize_type,omitempty" validate:"omitempty,max=50"` // discount, gift, voucher...
	Color     string `json:"color,omitempty" validate:"omitempty,max=20"`
	IsNoWin   bool   `json:"is_no_win"`
}

// HasDateWindow reports whether both lifecycle timestamps are set
func (c *Campaign) HasDateWindow() bool {
	return c.StartAt != nil && c.EndAt != nil
}

// SegmentByLabel returns the index of the first segment carrying label, or -1
func (c *Campaign) SegmentByLabel(label string) int {
	for i, seg := range c.PrizeSegments {
		if seg.Label == label {
			return i
		}
	}
	return -1
}
