package services_test

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"prizewheel/migrations"
	"prizewheel/models"
	"prizewheel/services"
)

// Wednesday
var baseTime = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

var operatorSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection serialises transactions, and sqlite ignores row
	// locks, so "concurrent" tests interleave whole plays rather than
	// statements. Same-identity races reach the unique-index replay paths
	// sequentially; TestSpinReplaysExistingRecordOnConflict drives that
	// branch directly.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrations.Migrate(db))
	return db
}

func createOperator(t *testing.T, db *gorm.DB, campaignCredits, leadCredits int) *models.Operator {
	t.Helper()
	op := &models.Operator{
		Email:           fmt.Sprintf("operator-%d@example.com", atomic.AddInt64(&operatorSeq, 1)),
		CampaignCredits: campaignCredits,
		LeadCredits:     leadCredits,
	}
	require.NoError(t, db.Create(op).Error)
	return op
}

func defaultSegments() []models.PrizeSegment {
	return []models.PrizeSegment{
		{Label: "10% off", PrizeType: "discount"},
		{Label: "Try again", IsNoWin: true},
		{Label: "Free coffee", PrizeType: "gift"},
	}
}

func createCampaign(t *testing.T, db *gorm.DB, op *models.Operator, mutate func(c *models.Campaign)) *models.Campaign {
	t.Helper()
	c := &models.Campaign{
		OperatorID:    op.ID,
		PublicID:      uuid.NewString(),
		Name:          "Autumn wheel",
		GameType:      models.GameWheel,
		Status:        models.StatusActive,
		IsPublished:   true,
		PrizeSegments: defaultSegments(),
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func newEngine(db *gorm.DB, segment int, now *time.Time) *services.Engine {
	engine := services.NewEngine(db, services.EngineConfig{
		Location:          time.UTC,
		DefaultExpiryDays: 30,
		Drawer:            services.FixedDrawer{Index: segment},
	})
	engine.Now = func() time.Time { return *now }
	return engine
}

func reloadCampaign(t *testing.T, db *gorm.DB, id uint) *models.Campaign {
	t.Helper()
	var c models.Campaign
	require.NoError(t, db.First(&c, id).Error)
	return &c
}

func reloadOperator(t *testing.T, db *gorm.DB, id uint) *models.Operator {
	t.Helper()
	var op models.Operator
	require.NoError(t, db.First(&op, id).Error)
	return &op
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func intPtr(v int) *int {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}
