package services

import (
	"context"
	"time"

	"prizewheel/models"
)

// Evaluation carries everything a Policy may inspect for a single play
type Evaluation struct {
	Campaign *models.Campaign
	Identity Identity
	Now      time.Time
	Location *time.Location
	Counters []models.AttemptCounter
	Attempts AttemptQuery
}

// Counter returns the lifetime counter for one dimension, or nil
func (ev *Evaluation) Counter(dimension string) *models.AttemptCounter {
	value := ev.Identity.Value(dimension)
	if value == "" {
		return nil
	}
	for i := range ev.Counters {
		if ev.Counters[i].Dimension == dimension && ev.Counters[i].Value == value {
			return &ev.Counters[i]
		}
	}
	return nil
}

// Policy is one eligibility rule. A nil rejection means the rule passes.
type Policy interface {
	Name() string
	Check(ctx context.Context, ev *Evaluation) (*NotEligibleError, error)
}

// TotalPolicy caps the number of recorded plays across all participants
type TotalPolicy struct {
	Cap int
}

func (p TotalPolicy) Name() string { return "total" }

func (p TotalPolicy) Check(_ context.Context, ev *Evaluation) (*NotEligibleError, error) {
	if ev.Campaign.SpinsCount >= p.Cap {
		return notEligible(ReasonTotalLimit), nil
	}
	return nil, nil
}

// DimensionCapPolicy caps lifetime attempts for one identity dimension
type DimensionCapPolicy struct {
	Dimension string
	Cap       int
	Reason    Reason
}

func (p DimensionCapPolicy) Name() string { return "cap_" + p.Dimension }

func (p DimensionCapPolicy) Check(_ context.Context, ev *Evaluation) (*NotEligibleError, error) {
	counter := ev.Counter(p.Dimension)
	if counter != nil && counter.AttemptCount >= p.Cap {
		return notEligible(p.Reason), nil
	}
	return nil, nil
}

// CooldownPolicy requires a quiet period after the most recent attempt on any signal
type CooldownPolicy struct {
	Window time.Duration
}

func (p CooldownPolicy) Name() string { return "cooldown" }

func (p CooldownPolicy) Check(_ context.Context, ev *Evaluation) (*NotEligibleError, error) {
	var latest time.Time
	for _, dv := range ev.Identity.Values() {
		if counter := ev.Counter(dv.Dimension); counter != nil && counter.LastAttemptAt.After(latest) {
			latest = counter.LastAttemptAt
		}
	}
	if !latest.IsZero() && ev.Now.Sub(latest) < p.Window {
		return &NotEligibleError{
			Reason:  ReasonCooldown,
			Message: "Please wait until " + latest.Add(p.Window).UTC().Format(time.RFC3339) + " before playing again.",
		}, nil
	}
	return nil, nil
}

// Window periods for WindowPolicy
const (
	PeriodDay  = "day"
	PeriodWeek = "week"
)

// WindowPolicy caps plays by any of the participant's signals within the current day or week
type WindowPolicy struct {
	Period string
	Cap    int
}

func (p WindowPolicy) Name() string { return "window_" + p.Period }

func (p WindowPolicy) Check(ctx context.Context, ev *Evaluation) (*NotEligibleError, error) {
	values := ev.Identity.Values()
	if len(values) == 0 {
		return nil, nil
	}
	since := WindowStart(p.Period, ev.Now, ev.Location)
	count, err := ev.Attempts.CountSince(ctx, ev.Campaign.ID, values, since)
	if err != nil {
		return nil, err
	}
	if count >= int64(p.Cap) {
		if p.Period == PeriodWeek {
			return notEligible(ReasonWeeklyLimit), nil
		}
		return notEligible(ReasonDailyLimit), nil
	}
	return nil, nil
}

// WindowStart returns local midnight of the current day, or of the Monday opening the current week
func WindowStart(period string, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if period == PeriodWeek {
		offset := (int(start.Weekday()) + 6) % 7
		start = start.AddDate(0, 0, -offset)
	}
	return start
}

// PoliciesFor builds the ordered policy chain for a campaign's configured limits
func PoliciesFor(c *models.Campaign) []Policy {
	var policies []Policy
	if c.LimitTotal != nil {
		policies = append(policies, TotalPolicy{Cap: *c.LimitTotal})
	}

	caps := []struct {
		limit     *int
		dimension string
		reason    Reason
	}{
		{c.LimitPerEmail, models.DimensionEmail, ReasonEmailLimit},
		{c.LimitPerPhone, models.DimensionPhone, ReasonPhoneLimit},
		{c.LimitPerIP, models.DimensionIP, ReasonIPLimit},
		{c.LimitPerDevice, models.DimensionDevice, ReasonDeviceLimit},
	}
	for _, cp := range caps {
		if cp.limit != nil {
			policies = append(policies, DimensionCapPolicy{Dimension: cp.dimension, Cap: *cp.limit, Reason: cp.reason})
		}
	}

	if c.CooldownHours != nil && *c.CooldownHours > 0 {
		policies = append(policies, CooldownPolicy{Window: time.Duration(*c.CooldownHours) * time.Hour})
	}
	if c.LimitPerDay != nil {
		policies = append(policies, WindowPolicy{Period: PeriodDay, Cap: *c.LimitPerDay})
	}
	if c.LimitPerWeek != nil {
		policies = append(policies, WindowPolicy{Period: PeriodWeek, Cap: *c.LimitPerWeek})
	}
	return policies
}
