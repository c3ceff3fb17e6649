package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"prizewheel/models"
	"prizewheel/services"
	"prizewheel/ws"
)

// LifecycleWorker tells live dashboards when a campaign's date window opens or closes.
// Stored status is never rewritten; the effective status is always derived on read.
type LifecycleWorker struct {
	db       *gorm.DB
	hub      *ws.Hub
	interval time.Duration
	now      func() time.Time
	logger   *logrus.Entry
}

func NewLifecycleWorker(db *gorm.DB, hub *ws.Hub, interval time.Duration) *LifecycleWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &LifecycleWorker{
		db:       db,
		hub:      hub,
		interval: interval,
		now:      time.Now,
		logger:   logrus.WithField("worker", "lifecycle"),
	}
}

func (lw *LifecycleWorker) Start(ctx context.Context) {
	lw.logger.Info("Lifecycle worker started")

	ticker := time.NewTicker(lw.interval)
	defer ticker.Stop()

	last := lw.now().UTC()
	for {
		select {
		case <-ctx.Done():
			lw.logger.Info("Lifecycle worker shutting down...")
			return
		case <-ticker.C:
			now := lw.now().UTC()
			if _, err := lw.Sweep(ctx, last, now); err != nil {
				lw.logger.WithError(err).Error("Lifecycle sweep failed")
				continue
			}
			last = now
		}
	}
}

// Sweep broadcasts the effective status of every campaign whose start or end fell in (from, to]
func (lw *LifecycleWorker) Sweep(ctx context.Context, from, to time.Time) (int, error) {
	var campaigns []models.Campaign
	err := lw.db.WithContext(ctx).
		Where("start_at IS NOT NULL AND end_at IS NOT NULL").
		Where("(start_at > ? AND start_at <= ?) OR (end_at > ? AND end_at <= ?)", from.UTC(), to.UTC(), from.UTC(), to.UTC()).
		Find(&campaigns).Error
	if err != nil {
		return 0, err
	}

	for i := range campaigns {
		c := &campaigns[i]
		res := services.Resolve(c, to)
		lw.hub.Broadcast(c.ID, ws.Message{Type: "lifecycle", Data: res})
		lw.logger.WithFields(logrus.Fields{
			"campaign_id": c.ID,
			"status":      res.EffectiveStatus,
		}).Info("Campaign window boundary crossed")
	}
	return len(campaigns), nil
}
