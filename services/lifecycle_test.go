package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"prizewheel/models"
	"prizewheel/services"
)

func TestResolve(t *testing.T) {
	start := baseTime
	end := baseTime.Add(72 * time.Hour)

	tests := []struct {
		name     string
		campaign models.Campaign
		now      time.Time
		want     services.Resolution
	}{
		{
			name:     "no dates keeps stored status",
			campaign: models.Campaign{Status: models.StatusPaused},
			now:      baseTime,
			want:     services.Resolution{EffectiveStatus: models.StatusPaused, CanActivate: true, CanPause: true, CanEnd: true},
		},
		{
			name:     "only start date is ignored",
			campaign: models.Campaign{Status: models.StatusActive, StartAt: timePtr(end)},
			now:      baseTime,
			want:     services.Resolution{EffectiveStatus: models.StatusActive, CanActivate: true, CanPause: true, CanEnd: true},
		},
		{
			name:     "before start is scheduled",
			campaign: models.Campaign{Status: models.StatusActive, StartAt: &start, EndAt: &end},
			now:      start.Add(-time.Minute),
			want:     services.Resolution{EffectiveStatus: models.StatusScheduled, CanActivate: true},
		},
		{
			name:     "inside window keeps stored status",
			campaign: models.Campaign{Status: models.StatusDraft, StartAt: &start, EndAt: &end},
			now:      start.Add(time.Hour),
			want:     services.Resolution{EffectiveStatus: models.StatusDraft, CanActivate: true, CanPause: true, CanEnd: true},
		},
		{
			name:     "after end is ended even when stored active",
			campaign: models.Campaign{Status: models.StatusActive, StartAt: &start, EndAt: &end},
			now:      end.Add(time.Second),
			want:     services.Resolution{EffectiveStatus: models.StatusEnded, CanEnd: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.Resolve(&tt.campaign, tt.now)
			assert.Equal(t, tt.want.EffectiveStatus, got.EffectiveStatus)
			assert.Equal(t, tt.want.CanActivate, got.CanActivate)
			assert.Equal(t, tt.want.CanPause, got.CanPause)
			assert.Equal(t, tt.want.CanEnd, got.CanEnd)
		})
	}
}

func TestCheckPlayable(t *testing.T) {
	start := baseTime
	end := baseTime.Add(72 * time.Hour)
	segments := defaultSegments()

	tests := []struct {
		name     string
		campaign models.Campaign
		now      time.Time
		reason   services.Reason
	}{
		{"unpublished", models.Campaign{Status: models.StatusActive, PrizeSegments: segments}, baseTime, services.ReasonNotPublished},
		{"draft", models.Campaign{Status: models.StatusDraft, IsPublished: true, PrizeSegments: segments}, baseTime, services.ReasonDraft},
		{"paused", models.Campaign{Status: models.StatusPaused, IsPublished: true, PrizeSegments: segments}, baseTime, services.ReasonPaused},
		{"ended by operator", models.Campaign{Status: models.StatusEnded, IsPublished: true, PrizeSegments: segments}, baseTime, services.ReasonEnded},
		{"not started", models.Campaign{Status: models.StatusActive, IsPublished: true, StartAt: &start, EndAt: &end, PrizeSegments: segments}, start.Add(-time.Hour), services.ReasonNotStarted},
		{"past end", models.Campaign{Status: models.StatusActive, IsPublished: true, StartAt: &start, EndAt: &end, PrizeSegments: segments}, end.Add(time.Hour), services.ReasonEnded},
		{"no segments", models.Campaign{Status: models.StatusActive, IsPublished: true}, baseTime, services.ReasonNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ne := services.CheckPlayable(&tt.campaign, tt.now)
			if assert.NotNil(t, ne) {
				assert.Equal(t, tt.reason, ne.Reason)
				assert.NotEmpty(t, ne.Message)
			}
		})
	}

	t.Run("active inside window", func(t *testing.T) {
		c := models.Campaign{Status: models.StatusActive, IsPublished: true, StartAt: &start, EndAt: &end, PrizeSegments: segments}
		assert.Nil(t, services.CheckPlayable(&c, start.Add(time.Hour)))
	})
}
