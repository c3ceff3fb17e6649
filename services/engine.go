package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prizewheel/models"
)

// EngineConfig wires the play engine's collaborators
type EngineConfig struct {
	Location          *time.Location
	DefaultExpiryDays int
	Events            EventPublisher
	Drawer            Drawer
	Entitlements      EntitlementLookup
}

// Engine serves the participant-facing operations. Each mutating call runs
// in one transaction holding the campaign row lock, so rejected or failed
// plays leave nothing behind.
type Engine struct {
	DB       *gorm.DB
	Gate     *Gate
	Drawer   Drawer
	Ledger   *Ledger
	Recorder *Recorder
	Events   EventPublisher
	Now      func() time.Time
}

func NewEngine(db *gorm.DB, cfg EngineConfig) *Engine {
	if cfg.Events == nil {
		cfg.Events = NopPublisher{}
	}
	if cfg.Drawer == nil {
		cfg.Drawer = CryptoDrawer{}
	}
	if cfg.Entitlements == nil {
		cfg.Entitlements = OperatorEntitlements{}
	}
	ledger := NewLedger()
	return &Engine{
		DB:       db,
		Gate:     NewGate(cfg.Location),
		Drawer:   cfg.Drawer,
		Ledger:   ledger,
		Recorder: NewRecorder(ledger, cfg.Entitlements, cfg.DefaultExpiryDays),
		Events:   cfg.Events,
		Now:      time.Now,
	}
}

// SpinResult is returned to the participant after a recorded play
type SpinResult struct {
	SegmentIndex        int                 `json:"segment_index"`
	Segment             models.PrizeSegment `json:"segment"`
	IsWin               bool                `json:"is_win"`
	ReferenceNumber     string              `json:"reference_number,omitempty"`
	RedemptionExpiresAt *time.Time          `json:"redemption_expires_at,omitempty"`
}

// PublicCampaign returns a published campaign by its public identifier
func (e *Engine) PublicCampaign(ctx context.Context, publicID string) (*models.Campaign, error) {
	var c models.Campaign
	err := e.DB.WithContext(ctx).Where("public_id = ?", publicID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, storeErr("load campaign", err)
	}
	return &c, nil
}

// CheckSpin answers whether the participant may play right now without recording anything
func (e *Engine) CheckSpin(ctx context.Context, publicID string, id Identity) (Decision, error) {
	now := e.Now().UTC()
	id, err := id.Normalize()
	if err != nil {
		return Decision{}, err
	}

	c, err := e.PublicCampaign(ctx, publicID)
	if err != nil {
		return Decision{}, err
	}
	if ne := CheckPlayable(c, now); ne != nil {
		return deny(ne), nil
	}

	db := e.DB.WithContext(ctx)
	decision, err := e.Gate.CheckEligibility(ctx, db, c, id, now)
	if err != nil {
		return Decision{}, storeErr("check eligibility", err)
	}
	if !decision.Allowed || id.Email == "" {
		return decision, nil
	}

	ok, err := e.leadCreditAvailable(ctx, db, c, id.Email, now)
	if err != nil {
		return Decision{}, storeErr("check credits", err)
	}
	if !ok {
		return deny(notEligible(ReasonCreditsExhausted)), nil
	}
	return decision, nil
}

// leadCreditAvailable peeks whether a brand new record could be paid for
func (e *Engine) leadCreditAvailable(ctx context.Context, db *gorm.DB, c *models.Campaign, email string, now time.Time) (bool, error) {
	existing, err := e.Recorder.findLead(ctx, db, c.ID, email)
	if err != nil || existing != nil {
		return existing != nil, err
	}
	ent, err := e.Recorder.Entitlements.Lookup(ctx, db, c.OperatorID)
	if err != nil {
		return false, err
	}
	if !ent.ChargesPerLead(now) {
		return true, nil
	}
	return e.Ledger.Available(ctx, db, c.OperatorID, models.CreditLead)
}

// Spin draws a segment server-side and records the play
func (e *Engine) Spin(ctx context.Context, publicID string, id Identity) (*SpinResult, error) {
	now := e.Now().UTC()
	id, err := id.Normalize()
	if err != nil {
		return nil, err
	}

	var (
		campaign *models.Campaign
		record   *PlayRecord
		result   *SpinResult
	)
	err = e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCampaign(tx, publicID)
		if err != nil {
			return err
		}
		if ne := CheckPlayable(c, now); ne != nil {
			return ne
		}

		decision, err := e.Gate.CheckEligibility(ctx, tx, c, id, now)
		if err != nil {
			return err
		}
		if !decision.Allowed {
			return &NotEligibleError{Reason: decision.Reason, Message: decision.Message}
		}

		idx, err := e.Drawer.Draw(c.PrizeSegments)
		if err != nil {
			return err
		}
		outcome := PlayOutcome{SegmentIndex: idx, Segment: c.PrizeSegments[idx]}

		record, err = e.Recorder.RecordPlay(ctx, tx, c, id, outcome, now)
		if err != nil {
			return err
		}

		campaign = c
		result = &SpinResult{
			SegmentIndex: idx,
			Segment:      outcome.Segment,
			IsWin:        !outcome.Segment.IsNoWin,
		}
		if record.Lead != nil && record.Lead.PrizeWon != nil {
			result.ReferenceNumber = record.Lead.ReferenceNumber
			result.RedemptionExpiresAt = record.Lead.RedemptionExpiresAt
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("record spin", err)
	}

	e.Events.Publish(PlayEvent{
		Type:       EventSpin,
		CampaignID: campaign.ID,
		OperatorID: campaign.OperatorID,
		PublicID:   campaign.PublicID,
		PrizeLabel: result.Segment.Label,
		IsWin:      result.IsWin,
		NewLead:    record.LeadCreated,
		SpinsCount: record.SpinsCount,
		LeadsCount: record.LeadsCount,
		OccurredAt: now,
	})
	return result, nil
}

// ClaimPrize creates or returns the participant record for a winning play
func (e *Engine) ClaimPrize(ctx context.Context, publicID string, req ClaimRequest) (*ClaimResult, error) {
	now := e.Now().UTC()
	id, err := req.Identity.Normalize()
	if err != nil {
		return nil, err
	}
	req.Identity = id

	var (
		campaign *models.Campaign
		result   *ClaimResult
	)
	err = e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCampaign(tx, publicID)
		if err != nil {
			return err
		}
		campaign = c

		// a participant who already holds a prize can always fetch it again
		result, err = e.Recorder.ReplayClaim(ctx, tx, c, req, now)
		if err != nil || result != nil {
			return err
		}
		if ne := CheckPlayable(c, now); ne != nil {
			return ne
		}

		result, err = e.Recorder.ClaimPrize(ctx, tx, c, req, now)
		return err
	})
	if err != nil {
		return nil, storeErr("claim prize", err)
	}

	if result.Created {
		e.Events.Publish(PlayEvent{
			Type:       EventClaim,
			CampaignID: campaign.ID,
			OperatorID: campaign.OperatorID,
			PublicID:   campaign.PublicID,
			PrizeLabel: *result.Lead.PrizeWon,
			IsWin:      true,
			NewLead:    true,
			SpinsCount: campaign.SpinsCount,
			LeadsCount: result.LeadsCount,
			OccurredAt: now,
		})
	}
	logrus.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"lead_id":     result.Lead.ID,
		"created":     result.Created,
	}).Debug("Prize claimed")
	return result, nil
}

func lockCampaign(tx *gorm.DB, publicID string) (*models.Campaign, error) {
	var c models.Campaign
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("public_id = ?", publicID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
