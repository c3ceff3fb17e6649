package ws

import (
	"sync"

	"github.com/sirupsen/logrus"

	"prizewheel/metrics"
)

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Subscriber receives messages for one campaign
type Subscriber struct {
	ch chan Message
}

func (s *Subscriber) Messages() <-chan Message {
	return s.ch
}

// Hub fans live campaign messages out to operator dashboards
type Hub struct {
	mu        sync.RWMutex
	campaigns map[uint]map[*Subscriber]struct{}
	buffer    int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		campaigns: make(map[uint]map[*Subscriber]struct{}),
		buffer:    buffer,
	}
}

func (h *Hub) Subscribe(campaignID uint) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{ch: make(chan Message, h.buffer)}
	if h.campaigns[campaignID] == nil {
		h.campaigns[campaignID] = make(map[*Subscriber]struct{})
	}
	h.campaigns[campaignID][sub] = struct{}{}
	logrus.WithFields(logrus.Fields{
		"campaign_id": campaignID,
		"total":       len(h.campaigns[campaignID]),
	}).Debug("ws: subscriber connected")
	return sub
}

func (h *Hub) Unsubscribe(campaignID uint, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.campaigns[campaignID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.campaigns, campaignID)
	}
	logrus.WithField("campaign_id", campaignID).Debug("ws: subscriber disconnected")
}

// Broadcast never blocks; a subscriber with a full buffer misses the message
func (h *Hub) Broadcast(campaignID uint, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.campaigns[campaignID] {
		select {
		case sub.ch <- msg:
		default:
			metrics.DroppedEvents.Inc()
		}
	}
}

// Subscribers reports how many dashboards watch a campaign
func (h *Hub) Subscribers(campaignID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.campaigns[campaignID])
}
