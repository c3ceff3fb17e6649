package services

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Play event types
const (
	EventSpin  = "spin"
	EventClaim = "claim"
)

// PlayEvent is published after a play or claim commits
type PlayEvent struct {
	Type       string    `json:"type"`
	CampaignID uint      `json:"campaign_id"`
	OperatorID uint      `json:"-"`
	PublicID   string    `json:"public_id"`
	PrizeLabel string    `json:"prize_label,omitempty"`
	IsWin      bool      `json:"is_win"`
	NewLead    bool      `json:"new_lead"`
	SpinsCount int       `json:"spins_count"`
	LeadsCount int       `json:"leads_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher must never block the request path
type EventPublisher interface {
	Publish(event PlayEvent)
}

// ChannelPublisher buffers events for a worker and drops them when the buffer is full
type ChannelPublisher struct {
	events chan PlayEvent
}

func NewChannelPublisher(buffer int) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelPublisher{events: make(chan PlayEvent, buffer)}
}

func (p *ChannelPublisher) Publish(event PlayEvent) {
	select {
	case p.events <- event:
	default:
		logrus.WithFields(logrus.Fields{
			"campaign_id": event.CampaignID,
			"type":        event.Type,
		}).Warn("Play event buffer full, dropping event")
	}
}

// Events is the receive side consumed by the event worker
func (p *ChannelPublisher) Events() <-chan PlayEvent {
	return p.events
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(PlayEvent) {}
