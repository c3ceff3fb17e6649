package models

import "time"

// Identity dimensions tracked per campaign
const (
	DimensionEmail  = "email"
	DimensionPhone  = "phone"
	DimensionIP     = "ip"
	DimensionDevice = "device"
)

// AttemptCounter is the lifetime attempt tally for one identity value in one campaign
type AttemptCounter struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CampaignID    uint      `gorm:"not null;uniqueIndex:idx_attempt_campaign_dim_value,priority:1" json:"campaign_id"`
	Dimension     string    `gorm:"size:16;not null;uniqueIndex:idx_attempt_campaign_dim_value,priority:2" json:"dimension"`
	Value         string    `gorm:"size:255;not null;uniqueIndex:idx_attempt_campaign_dim_value,priority:3" json:"value"`
	AttemptCount  int       `gorm:"not null;default:0" json:"attempt_count"`
	LastAttemptAt time.Time `gorm:"not null;index" json:"last_attempt_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SpinAttempt is the append-only log of recorded plays
type SpinAttempt struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CampaignID        uint      `gorm:"not null;index:idx_spin_campaign_time,priority:1" json:"campaign_id"`
	Email             string    `gorm:"size:255;index" json:"email,omitempty"`
	Phone             string    `gorm:"size:50;index" json:"phone,omitempty"`
	IP                string    `gorm:"column:ip;size:64;index" json:"ip,omitempty"`
	DeviceFingerprint string    `gorm:"size:255;index" json:"device_fingerprint,omitempty"`
	SegmentIndex      int       `json:"segment_index"`
	PrizeLabel        string    `json:"prize_label"`
	IsWin             bool      `json:"is_win"`
	Claimed           bool      `gorm:"default:false;not null" json:"claimed"`
	AttemptedAt       time.Time `gorm:"not null;index:idx_spin_campaign_time,priority:2" json:"attempted_at"`
}
