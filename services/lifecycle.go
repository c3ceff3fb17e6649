package services

import (
	"fmt"
	"time"

	"prizewheel/models"
)

// Resolution is the effective lifecycle state of a campaign at one instant
type Resolution struct {
	EffectiveStatus string `json:"effective_status"`
	CanActivate     bool   `json:"can_activate"`
	CanPause        bool   `json:"can_pause"`
	CanEnd          bool   `json:"can_end"`
	Reason          string `json:"reason,omitempty"`
}

// Resolve derives the effective status from the stored status and the date window.
// The result depends on now and must not be cached past a single request.
func Resolve(c *models.Campaign, now time.Time) Resolution {
	if !c.HasDateWindow() {
		return Resolution{
			EffectiveStatus: c.Status,
			CanActivate:     true,
			CanPause:        true,
			CanEnd:          true,
		}
	}

	switch {
	case now.After(*c.EndAt):
		return Resolution{
			EffectiveStatus: models.StatusEnded,
			CanEnd:          true,
			Reason:          fmt.Sprintf("campaign ended at %s", c.EndAt.UTC().Format(time.RFC3339)),
		}
	case now.Before(*c.StartAt):
		return Resolution{
			EffectiveStatus: models.StatusScheduled,
			CanActivate:     true,
			Reason:          fmt.Sprintf("campaign starts at %s", c.StartAt.UTC().Format(time.RFC3339)),
		}
	}

	return Resolution{
		EffectiveStatus: c.Status,
		CanActivate:     true,
		CanPause:        true,
		CanEnd:          true,
	}
}

// CheckPlayable returns nil when the campaign accepts plays at now
func CheckPlayable(c *models.Campaign, now time.Time) *NotEligibleError {
	if !c.IsPublished {
		return notEligible(ReasonNotPublished)
	}

	switch Resolve(c, now).EffectiveStatus {
	case models.StatusActive:
		if len(c.PrizeSegments) == 0 {
			return notEligible(ReasonNotConfigured)
		}
		return nil
	case models.StatusScheduled:
		return notEligible(ReasonNotStarted)
	case models.StatusPaused:
		return notEligible(ReasonPaused)
	case models.StatusEnded:
		return notEligible(ReasonEnded)
	default:
		return notEligible(ReasonDraft)
	}
}
