package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prizewheel/models"
	"prizewheel/services"
)

func TestCampaignCreateSpendsCredit(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 1, 10)
	manager := services.NewCampaignManager(db, services.NewLedger())
	ctx := context.Background()

	c := &models.Campaign{Name: "Launch", PrizeSegments: defaultSegments(), Status: models.StatusActive, SpinsCount: 99}
	require.NoError(t, manager.Create(ctx, op.ID, c))
	assert.NotZero(t, c.ID)
	assert.Len(t, c.PublicID, 36)
	assert.Equal(t, models.StatusDraft, c.Status)
	assert.Zero(t, c.SpinsCount)
	assert.Zero(t, reloadOperator(t, db, op.ID).CampaignCredits)

	err := manager.Create(ctx, op.ID, &models.Campaign{Name: "Second"})
	assert.ErrorIs(t, err, services.ErrCreditsExhausted)
	assert.Equal(t, int64(1), countRows(t, db, &models.Campaign{}, "operator_id = ?", op.ID))

	bad := &models.Campaign{Name: "Bad", LimitPerEmail: intPtr(-1)}
	assert.ErrorIs(t, manager.Create(ctx, op.ID, bad), services.ErrInvalidCampaign)
}

func TestValidateCampaign(t *testing.T) {
	start := baseTime
	assert.ErrorIs(t, services.ValidateCampaign(&models.Campaign{StartAt: &start, EndAt: &start}), services.ErrInvalidCampaign)
	assert.ErrorIs(t, services.ValidateCampaign(&models.Campaign{PrizeSegments: []models.PrizeSegment{{Label: "A"}, {Label: "A"}}}), services.ErrInvalidCampaign)
	assert.ErrorIs(t, services.ValidateCampaign(&models.Campaign{PrizeSegments: []models.PrizeSegment{{}}}), services.ErrInvalidCampaign)
	assert.NoError(t, services.ValidateCampaign(&models.Campaign{PrizeSegments: defaultSegments(), LimitTotal: intPtr(0)}))
}

func TestCampaignTransitions(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 0, 10)
	manager := services.NewCampaignManager(db, services.NewLedger())
	now := baseTime
	manager.Now = func() time.Time { return now }
	ctx := context.Background()

	c := createCampaign(t, db, op, func(c *models.Campaign) {
		c.Status = models.StatusDraft
		c.StartAt = timePtr(baseTime.Add(24 * time.Hour))
		c.EndAt = timePtr(baseTime.Add(72 * time.Hour))
	})

	_, res, err := manager.Transition(ctx, op.ID, c.ID, services.ActionPause)
	assert.ErrorIs(t, err, services.ErrTransitionNotAllowed)
	assert.Equal(t, models.StatusScheduled, res.EffectiveStatus)

	updated, res, err := manager.Transition(ctx, op.ID, c.ID, services.ActionActivate)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)
	assert.Equal(t, models.StatusScheduled, res.EffectiveStatus)

	now = baseTime.Add(48 * time.Hour)
	updated, res, err = manager.Transition(ctx, op.ID, c.ID, services.ActionPause)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, updated.Status)
	assert.Equal(t, models.StatusPaused, res.EffectiveStatus)

	now = baseTime.Add(96 * time.Hour)
	_, _, err = manager.Transition(ctx, op.ID, c.ID, services.ActionActivate)
	assert.ErrorIs(t, err, services.ErrTransitionNotAllowed)
	updated, _, err = manager.Transition(ctx, op.ID, c.ID, services.ActionEnd)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnded, updated.Status)

	_, _, err = manager.Transition(ctx, op.ID, c.ID, "explode")
	assert.ErrorIs(t, err, services.ErrTransitionNotAllowed)

	other := createOperator(t, db, 0, 0)
	_, _, err = manager.Transition(ctx, other.ID, c.ID, services.ActionEnd)
	assert.ErrorIs(t, err, services.ErrCampaignNotFound)
}

func TestCampaignPublishUpdateAndStats(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 0, 10)
	manager := services.NewCampaignManager(db, services.NewLedger())
	now := baseTime
	manager.Now = func() time.Time { return now }
	ctx := context.Background()

	c := createCampaign(t, db, op, func(c *models.Campaign) {
		c.IsPublished = false
		c.PrizeSegments = nil
	})
	_, err := manager.SetPublished(ctx, op.ID, c.ID, true)
	assert.ErrorIs(t, err, services.ErrInvalidCampaign)

	patch := *c
	patch.Name = "Renamed"
	patch.PrizeSegments = defaultSegments()
	patch.LimitPerEmail = intPtr(3)
	patch.SpinsCount = 500
	updated, err := manager.Update(ctx, op.ID, c.ID, &patch)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Len(t, updated.PrizeSegments, 3)
	assert.Equal(t, 3, *updated.LimitPerEmail)
	assert.Zero(t, updated.SpinsCount)

	published, err := manager.SetPublished(ctx, op.ID, c.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	engine := newEngine(db, 0, &now)
	_, err = engine.Spin(ctx, c.PublicID, services.Identity{Email: "p@example.com"})
	require.NoError(t, err)
	_, err = engine.Spin(ctx, c.PublicID, services.Identity{IP: "10.0.0.9"})
	require.NoError(t, err)

	stats, err := manager.Stats(ctx, op.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.SpinsCount)
	assert.Equal(t, 1, stats.LeadsCount)
	assert.Equal(t, int64(2), stats.Wins)
	assert.Zero(t, stats.ClaimedLeads)
	assert.Equal(t, 9, stats.LeadCredits)
	assert.Equal(t, models.StatusActive, stats.Resolution.EffectiveStatus)

	list, total, err := manager.List(ctx, op.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	require.NoError(t, manager.Delete(ctx, op.ID, c.ID))
	assert.ErrorIs(t, manager.Delete(ctx, op.ID, c.ID), services.ErrCampaignNotFound)
}
