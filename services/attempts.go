package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prizewheel/models"
)

// AttemptQuery is the read side of attempt tracking
type AttemptQuery interface {
	Counters(ctx context.Context, campaignID uint, values []DimensionValue) ([]models.AttemptCounter, error)
	CountSince(ctx context.Context, campaignID uint, values []DimensionValue, since time.Time) (int64, error)
}

var spinAttemptColumns = map[string]string{
	models.DimensionEmail:  "email",
	models.DimensionPhone:  "phone",
	models.DimensionIP:     "ip",
	models.DimensionDevice: "device_fingerprint",
}

// AttemptStore reads and writes counters and the play log through one gorm handle
type AttemptStore struct {
	db *gorm.DB
}

// NewAttemptStore binds the store to db, which may be a transaction
func NewAttemptStore(db *gorm.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) Counters(ctx context.Context, campaignID uint, values []DimensionValue) ([]models.AttemptCounter, error) {
	if len(values) == 0 {
		return nil, nil
	}
	conds := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values)*2)
	for _, dv := range values {
		conds = append(conds, "(dimension = ? AND value = ?)")
		args = append(args, dv.Dimension, dv.Value)
	}

	var counters []models.AttemptCounter
	err := s.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Find(&counters).Error
	return counters, err
}

func (s *AttemptStore) CountSince(ctx context.Context, campaignID uint, values []DimensionValue, since time.Time) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	conds := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values))
	for _, dv := range values {
		conds = append(conds, spinAttemptColumns[dv.Dimension]+" = ?")
		args = append(args, dv.Value)
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.SpinAttempt{}).
		Where("campaign_id = ? AND attempted_at >= ?", campaignID, since.UTC()).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Count(&count).Error
	return count, err
}

// Increment bumps the counter for every present signal in a single upsert each
func (s *AttemptStore) Increment(ctx context.Context, campaignID uint, values []DimensionValue, now time.Time) error {
	now = now.UTC()
	for _, dv := range values {
		counter := models.AttemptCounter{
			CampaignID:    campaignID,
			Dimension:     dv.Dimension,
			Value:         dv.Value,
			AttemptCount:  1,
			LastAttemptAt: now,
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "campaign_id"}, {Name: "dimension"}, {Name: "value"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"attempt_count":   gorm.Expr("attempt_counters.attempt_count + 1"),
				"last_attempt_at": now,
				"updated_at":      now,
			}),
		}).Create(&counter).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// Log appends one play to the attempt log
func (s *AttemptStore) Log(ctx context.Context, attempt *models.SpinAttempt) error {
	attempt.AttemptedAt = attempt.AttemptedAt.UTC()
	return s.db.WithContext(ctx).Create(attempt).Error
}
