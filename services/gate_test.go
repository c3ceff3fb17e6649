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

func TestGatePerDimensionCaps(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 1, 50)
	c := createCampaign(t, db, op, func(c *models.Campaign) {
		c.LimitPerEmail = intPtr(1)
		c.LimitPerDevice = intPtr(2)
	})
	now := baseTime
	engine := newEngine(db, 1, &now)
	ctx := context.Background()

	_, err := engine.Spin(ctx, c.PublicID, services.Identity{Email: "a@example.com", DeviceFingerprint: "dev-1"})
	require.NoError(t, err)

	decision, err := engine.CheckSpin(ctx, c.PublicID, services.Identity{Email: "A@example.com"})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, services.ReasonEmailLimit, decision.Reason)

	// another email on the same device is still allowed once more
	_, err = engine.Spin(ctx, c.PublicID, services.Identity{Email: "b@example.com", DeviceFingerprint: "dev-1"})
	require.NoError(t, err)

	_, err = engine.Spin(ctx, c.PublicID, services.Identity{Email: "c@example.com", DeviceFingerprint: "dev-1"})
	var ne *services.NotEligibleError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, services.ReasonDeviceLimit, ne.Reason)

	assert.Equal(t, 2, reloadCampaign(t, db, c.ID).SpinsCount)
}

func TestGateIsReadOnly(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 1, 50)
	c := createCampaign(t, db, op, func(c *models.Campaign) {
		c.LimitPerEmail = intPtr(1)
		c.LimitPerDay = intPtr(1)
	})
	gate := services.NewGate(time.UTC)
	id := services.Identity{Email: "a@example.com", IP: "10.0.0.1"}

	for i := 0; i < 3; i++ {
		decision, err := gate.CheckEligibility(context.Background(), db, c, id, baseTime)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}
	assert.Zero(t, countRows(t, db, &models.AttemptCounter{}, "campaign_id = ?", c.ID))
	assert.Zero(t, countRows(t, db, &models.SpinAttempt{}, "campaign_id = ?", c.ID))
	assert.Zero(t, reloadCampaign(t, db, c.ID).SpinsCount)
}

func TestGateCooldown(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 1, 50)
	c := createCampaign(t, db, op, func(c *models.Campaign) {
		c.CooldownHours = intPtr(2)
	})
	now := baseTime
	engine := newEngine(db, 1, &now)
	ctx := context.Background()
	id := services.Identity{Phone: "+4917000000", IP: "10.0.0.1"}

	_, err := engine.Spin(ctx, c.PublicID, id)
	require.NoError(t, err)

	now = baseTime.Add(time.Hour)
	// any matching signal triggers the cooldown
	decision, err := engine.CheckSpin(ctx, c.PublicID, services.Identity{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, services.ReasonCooldown, decision.Reason)

	now = baseTime.Add(2*time.Hour + time.Second)
	decision, err = engine.CheckSpin(ctx, c.PublicID, id)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestGateDailyAndWeeklyWindows(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 1, 50)
	c := createCampaign(t, db, op, func(c *models.Campaign) {
		c.LimitPerDay = intPtr(1)
		c.LimitPerWeek = intPtr(2)
	})
	now := baseTime
	engine := newEngine(db, 1, &now)
	ctx := context.Background()
	id := services.Identity{DeviceFingerprint: "dev-9"}

	_, err := engine.Spin(ctx, c.PublicID, id)
	require.NoError(t, err)

	now = baseTime.Add(8 * time.Hour)
	decision, err := engine.CheckSpin(ctx, c.PublicID, id)
	require.NoError(t, err)
	assert.Equal(t, services.ReasonDailyLimit, decision.Reason)

	// Thursday
	now = baseTime.Add(23 * time.Hour)
	_, err = engine.Spin(ctx, c.PublicID, id)
	require.NoError(t, err)

	// Friday
	now = baseTime.Add(47 * time.Hour)
	decision, err = engine.CheckSpin(ctx, c.PublicID, id)
	require.NoError(t, err)
	assert.Equal(t, services.ReasonWeeklyLimit, decision.Reason)

	// following Monday
	now = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	decision, err = engine.CheckSpin(ctx, c.PublicID, id)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestGateTotalLimit(t *testing.T) {
	db := newTestDB(t)
	op := createOperator(t, db, 1, 50)
	c := createCampaign(t, db, op, func(c *models.Campaign) {
		c.LimitTotal = intPtr(2)
	})
	now := baseTime
	engine := newEngine(db, 1, &now)
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		_, err := engine.Spin(ctx, c.PublicID, services.Identity{IP: ip})
		require.NoError(t, err)
	}

	decision, err := engine.CheckSpin(ctx, c.PublicID, services.Identity{IP: "10.0.0.3"})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, services.ReasonTotalLimit, decision.Reason)

	_, err = engine.Spin(ctx, c.PublicID, services.Identity{IP: "10.0.0.3"})
	var ne *services.NotEligibleError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, services.ReasonTotalLimit, ne.Reason)
	assert.Equal(t, 2, reloadCampaign(t, db, c.ID).SpinsCount)
}
