package worker_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"prizewheel/migrations"
	"prizewheel/models"
	"prizewheel/services"
	"prizewheel/worker"
	"prizewheel/ws"
)

func TestPlayEventWorkerRelaysToHub(t *testing.T) {
	hub := ws.NewHub(4)
	sub := hub.Subscribe(42)
	publisher := services.NewChannelPublisher(4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.NewPlayEventWorker(publisher.Events(), hub, 100).Start(ctx)
		close(done)
	}()

	publisher.Publish(services.PlayEvent{Type: services.EventSpin, CampaignID: 42, SpinsCount: 3})

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, services.EventSpin, msg.Type)
		ev, ok := msg.Data.(services.PlayEvent)
		require.True(t, ok)
		assert.Equal(t, 3, ev.SpinsCount)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not relayed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	publisher := services.NewChannelPublisher(1)
	publisher.Publish(services.PlayEvent{CampaignID: 1})
	publisher.Publish(services.PlayEvent{CampaignID: 2})

	ev := <-publisher.Events()
	assert.Equal(t, uint(1), ev.CampaignID)
	select {
	case <-publisher.Events():
		t.Fatal("second event should have been dropped")
	default:
	}
}

func TestLifecycleSweep(t *testing.T) {
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrations.Migrate(db))

	op := &models.Operator{Email: "op@example.com"}
	require.NoError(t, db.Create(op).Error)

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	start := now.Add(-30 * time.Second)
	end := now.Add(48 * time.Hour)
	opening := &models.Campaign{OperatorID: op.ID, PublicID: uuid.NewString(), Name: "Opening", Status: models.StatusActive, StartAt: &start, EndAt: &end}
	require.NoError(t, db.Create(opening).Error)

	oldStart := now.Add(-72 * time.Hour)
	quiet := &models.Campaign{OperatorID: op.ID, PublicID: uuid.NewString(), Name: "Quiet", Status: models.StatusActive, StartAt: &oldStart, EndAt: &end}
	require.NoError(t, db.Create(quiet).Error)

	hub := ws.NewHub(4)
	sub := hub.Subscribe(opening.ID)
	quietSub := hub.Subscribe(quiet.ID)

	lw := worker.NewLifecycleWorker(db, hub, time.Minute)
	n, err := lw.Sweep(context.Background(), now.Add(-time.Minute), now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	msg := <-sub.Messages()
	assert.Equal(t, "lifecycle", msg.Type)
	res, ok := msg.Data.(services.Resolution)
	require.True(t, ok)
	assert.Equal(t, models.StatusActive, res.EffectiveStatus)

	select {
	case <-quietSub.Messages():
		t.Fatal("campaign without a boundary crossing was broadcast")
	default:
	}
}
