package worker

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"prizewheel/services"
	"prizewheel/ws"
)

// PlayEventWorker relays committed plays to live dashboards at a bounded rate
type PlayEventWorker struct {
	events  <-chan services.PlayEvent
	hub     *ws.Hub
	limiter *rate.Limiter
	logger  *logrus.Entry
}

func NewPlayEventWorker(events <-chan services.PlayEvent, hub *ws.Hub, perSecond int) *PlayEventWorker {
	if perSecond <= 0 {
		perSecond = 20
	}
	return &PlayEventWorker{
		events:  events,
		hub:     hub,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		logger:  logrus.WithField("worker", "play_events"),
	}
}

func (w *PlayEventWorker) Start(ctx context.Context) {
	w.logger.Info("Play event worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Play event worker shutting down...")
			return
		case ev, ok := <-w.events:
			if !ok {
				return
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			w.hub.Broadcast(ev.CampaignID, ws.Message{Type: ev.Type, Data: ev})
		}
	}
}
