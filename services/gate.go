package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"prizewheel/models"
)

// Decision is the outcome of an eligibility check
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(ne *NotEligibleError) Decision {
	return Decision{Reason: ne.Reason, Message: ne.Message}
}

// Gate evaluates rate-limit policies without mutating anything
type Gate struct {
	Location *time.Location
}

func NewGate(loc *time.Location) *Gate {
	if loc == nil {
		loc = time.UTC
	}
	return &Gate{Location: loc}
}

// CheckEligibility runs the campaign's policies in order and stops at the first rejection
func (g *Gate) CheckEligibility(ctx context.Context, db *gorm.DB, c *models.Campaign, id Identity, now time.Time) (Decision, error) {
	policies := PoliciesFor(c)
	if len(policies) == 0 {
		return allow(), nil
	}

	store := NewAttemptStore(db)
	counters, err := store.Counters(ctx, c.ID, id.Values())
	if err != nil {
		return Decision{}, err
	}

	ev := &Evaluation{
		Campaign: c,
		Identity: id,
		Now:      now,
		Location: g.Location,
		Counters: counters,
		Attempts: store,
	}
	for _, policy := range policies {
		rejection, err := policy.Check(ctx, ev)
		if err != nil {
			return Decision{}, err
		}
		if rejection != nil {
			return deny(rejection), nil
		}
	}
	return allow(), nil
}
