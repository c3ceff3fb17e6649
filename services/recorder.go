package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prizewheel/models"
)

const fallbackRedemptionDays = 30

// PlayOutcome is the drawn segment for one play
type PlayOutcome struct {
	SegmentIndex int
	Segment      models.PrizeSegment
}

// PlayRecord is what RecordPlay persisted
type PlayRecord struct {
	Attempt     models.SpinAttempt
	Lead        *models.Lead
	LeadCreated bool
	SpinsCount  int
	LeadsCount  int
}

// ClaimRequest carries the participant's details for claim-prize
type ClaimRequest struct {
	Identity   Identity
	Name       string
	PrizeLabel string
}

// ClaimResult is the participant record after a claim
type ClaimResult struct {
	Lead       *models.Lead
	Created    bool
	LeadsCount int
}

// Recorder persists plays and participant records. Every method expects to run
// inside the caller's transaction with the campaign row already locked.
type Recorder struct {
	Ledger            *Ledger
	Entitlements      EntitlementLookup
	NewReference      func() (string, error)
	DefaultExpiryDays int
}

func NewRecorder(ledger *Ledger, entitlements EntitlementLookup, defaultExpiryDays int) *Recorder {
	return &Recorder{
		Ledger:            ledger,
		Entitlements:      entitlements,
		NewReference:      NewReferenceNumber,
		DefaultExpiryDays: defaultExpiryDays,
	}
}

// RecordPlay increments counters, appends the play log and, for a play with an
// email, creates the participant record. Only a win sets its prize.
func (r *Recorder) RecordPlay(ctx context.Context, tx *gorm.DB, c *models.Campaign, id Identity, outcome PlayOutcome, now time.Time) (*PlayRecord, error) {
	now = now.UTC()

	spins := tx.WithContext(ctx).Model(&models.Campaign{}).Where("id = ?", c.ID)
	if c.LimitTotal != nil {
		spins = spins.Where("spins_count < ?", *c.LimitTotal)
	}
	result := spins.UpdateColumn("spins_count", gorm.Expr("spins_count + 1"))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, notEligible(ReasonTotalLimit)
	}

	store := NewAttemptStore(tx)
	if err := store.Increment(ctx, c.ID, id.Values(), now); err != nil {
		return nil, err
	}

	record := &PlayRecord{
		SpinsCount: c.SpinsCount + 1,
		LeadsCount: c.LeadsCount,
	}
	record.Attempt = models.SpinAttempt{
		CampaignID:        c.ID,
		Email:             id.Email,
		Phone:             id.Phone,
		IP:                id.IP,
		DeviceFingerprint: id.DeviceFingerprint,
		SegmentIndex:      outcome.SegmentIndex,
		PrizeLabel:        outcome.Segment.Label,
		IsWin:             !outcome.Segment.IsNoWin,
		Claimed:           id.Email != "" && !outcome.Segment.IsNoWin,
		AttemptedAt:       now,
	}
	if err := store.Log(ctx, &record.Attempt); err != nil {
		return nil, err
	}

	if id.Email == "" {
		return record, nil
	}

	candidate := models.Lead{
		Email:  id.Email,
		Phone:  id.Phone,
		Source: models.SourceSpin,
	}
	var label string
	if !outcome.Segment.IsNoWin {
		label = outcome.Segment.Label
		candidate.PrizeWon = &label
	}
	lead, created, err := r.ensureLead(ctx, tx, c, candidate, now)
	if err != nil {
		return nil, err
	}
	if !created && lead.PrizeWon == nil && label != "" {
		if err := r.awardPrize(ctx, tx, c, lead, label, now); err != nil {
			return nil, err
		}
	}
	if created {
		record.LeadsCount++
	}
	record.Lead = lead
	record.LeadCreated = created
	return record, nil
}

// ReplayClaim returns the participant's record when it already carries a prize,
// filling in missing details. It returns nil when the claim has to be recorded.
func (r *Recorder) ReplayClaim(ctx context.Context, tx *gorm.DB, c *models.Campaign, req ClaimRequest, now time.Time) (*ClaimResult, error) {
	now = now.UTC()
	if req.Identity.Email == "" {
		return nil, ErrInvalidIdentity
	}

	existing, err := r.findLead(ctx, tx, c.ID, req.Identity.Email)
	if err != nil || existing == nil || existing.PrizeWon == nil {
		return nil, err
	}
	if err := r.touchClaim(ctx, tx, c, existing, req, now); err != nil {
		return nil, err
	}
	return &ClaimResult{Lead: existing, LeadsCount: c.LeadsCount}, nil
}

// ClaimPrize records the participant's details against a winning play.
// An existing record is returned as is; its prize and reference never change.
func (r *Recorder) ClaimPrize(ctx context.Context, tx *gorm.DB, c *models.Campaign, req ClaimRequest, now time.Time) (*ClaimResult, error) {
	now = now.UTC()
	id := req.Identity

	replayed, err := r.ReplayClaim(ctx, tx, c, req, now)
	if err != nil || replayed != nil {
		return replayed, err
	}

	existing, err := r.findLead(ctx, tx, c.ID, id.Email)
	if err != nil {
		return nil, err
	}

	label := strings.TrimSpace(req.PrizeLabel)
	idx := c.SegmentByLabel(label)
	if label == "" || idx < 0 || c.PrizeSegments[idx].IsNoWin {
		return nil, ErrOutcomeNotDrawn
	}
	attempt, err := r.unclaimedWin(ctx, tx, c.ID, id, label)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := r.awardPrize(ctx, tx, c, existing, label, now); err != nil {
			return nil, err
		}
		if err := r.touchClaim(ctx, tx, c, existing, req, now); err != nil {
			return nil, err
		}
		return &ClaimResult{Lead: existing, LeadsCount: c.LeadsCount}, r.markClaimed(ctx, tx, attempt)
	}

	claimedAt := now
	lead, created, err := r.ensureLead(ctx, tx, c, models.Lead{
		Email:     id.Email,
		Name:      strings.TrimSpace(req.Name),
		Phone:     id.Phone,
		PrizeWon:  &label,
		Source:    models.SourceClaim,
		ClaimedAt: &claimedAt,
	}, now)
	if err != nil {
		return nil, err
	}
	res := &ClaimResult{Lead: lead, Created: created, LeadsCount: c.LeadsCount}
	if created {
		res.LeadsCount++
		return res, r.markClaimed(ctx, tx, attempt)
	}
	return res, nil
}

// ensureLead inserts the record unless one exists for (campaign, email).
// Only the inserting caller debits a lead credit.
func (r *Recorder) ensureLead(ctx context.Context, tx *gorm.DB, c *models.Campaign, lead models.Lead, now time.Time) (*models.Lead, bool, error) {
	ref, err := r.NewReference()
	if err != nil {
		return nil, false, err
	}
	lead.CampaignID = c.ID
	lead.OperatorID = c.OperatorID
	lead.ReferenceNumber = ref
	if lead.PrizeWon != nil {
		expires := RedemptionExpiry(c, now, r.DefaultExpiryDays)
		lead.RedemptionExpiresAt = &expires
	}

	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "email"}},
		DoNothing: true,
	}).Create(&lead)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		existing, err := r.findLead(ctx, tx.Unscoped(), c.ID, lead.Email)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, errors.New("participant record vanished after conflict")
		}
		return existing, false, nil
	}

	ent, err := r.Entitlements.Lookup(ctx, tx, c.OperatorID)
	if err != nil {
		return nil, false, err
	}
	if ent.ChargesPerLead(now) {
		campaignID := c.ID
		if err := r.Ledger.TryReserve(ctx, tx, c.OperatorID, models.CreditLead, Usage{
			CampaignID:  &campaignID,
			Action:      ActionCaptureLead,
			TargetEmail: lead.Email,
		}); err != nil {
			return nil, false, err
		}
	}

	if err := tx.WithContext(ctx).Model(&models.Campaign{}).Where("id = ?", c.ID).
		UpdateColumn("leads_count", gorm.Expr("leads_count + 1")).Error; err != nil {
		return nil, false, err
	}
	return &lead, true, nil
}

// awardPrize sets the first prize on a record captured by a losing play and
// starts its redemption window
func (r *Recorder) awardPrize(ctx context.Context, tx *gorm.DB, c *models.Campaign, lead *models.Lead, label string, now time.Time) error {
	updates := map[string]interface{}{"prize_won": label}
	if lead.RedemptionExpiresAt == nil {
		expires := RedemptionExpiry(c, now, r.DefaultExpiryDays)
		updates["redemption_expires_at"] = expires
		lead.RedemptionExpiresAt = &expires
	}
	result := tx.WithContext(ctx).Model(&models.Lead{}).
		Where("id = ? AND prize_won IS NULL", lead.ID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	lead.PrizeWon = &label
	return nil
}

func (r *Recorder) findLead(ctx context.Context, db *gorm.DB, campaignID uint, email string) (*models.Lead, error) {
	var lead models.Lead
	err := db.WithContext(ctx).Where("campaign_id = ? AND email = ?", campaignID, email).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// unclaimedWin finds the latest winning play for label by any of the participant's
// stable signals that no record has been created from yet
func (r *Recorder) unclaimedWin(ctx context.Context, tx *gorm.DB, campaignID uint, id Identity, label string) (*models.SpinAttempt, error) {
	var conds []string
	var args []interface{}
	for _, dv := range id.Values() {
		if dv.Dimension == models.DimensionIP {
			continue
		}
		conds = append(conds, spinAttemptColumns[dv.Dimension]+" = ?")
		args = append(args, dv.Value)
	}
	if len(conds) == 0 {
		return nil, ErrOutcomeNotDrawn
	}

	var attempt models.SpinAttempt
	err := tx.WithContext(ctx).
		Where("campaign_id = ? AND prize_label = ? AND is_win = ? AND claimed = ?", campaignID, label, true, false).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Order("attempted_at DESC").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOutcomeNotDrawn
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *Recorder) markClaimed(ctx context.Context, tx *gorm.DB, attempt *models.SpinAttempt) error {
	result := tx.WithContext(ctx).Model(&models.SpinAttempt{}).
		Where("id = ? AND claimed = ?", attempt.ID, false).
		Update("claimed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOutcomeNotDrawn
	}
	return nil
}

// touchClaim fills in details the record is missing without touching prize or reference
func (r *Recorder) touchClaim(ctx context.Context, tx *gorm.DB, c *models.Campaign, lead *models.Lead, req ClaimRequest, now time.Time) error {
	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" && lead.Name == "" {
		updates["name"] = name
		lead.Name = name
	}
	if req.Identity.Phone != "" && lead.Phone == "" {
		updates["phone"] = req.Identity.Phone
		lead.Phone = req.Identity.Phone
	}
	if lead.ClaimedAt == nil {
		claimedAt := now
		updates["claimed_at"] = claimedAt
		lead.ClaimedAt = &claimedAt
	}
	if lead.RedemptionExpiresAt == nil {
		expires := RedemptionExpiry(c, now, r.DefaultExpiryDays)
		updates["redemption_expires_at"] = expires
		lead.RedemptionExpiresAt = &expires
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Model(lead).Updates(updates).Error
}

// RedemptionExpiry is now plus the campaign's expiry days, capped at the campaign end
func RedemptionExpiry(c *models.Campaign, now time.Time, defaultDays int) time.Time {
	days := c.RedemptionExpiryDays
	if days <= 0 {
		days = defaultDays
	}
	if days <= 0 {
		days = fallbackRedemptionDays
	}
	expires := now.UTC().AddDate(0, 0, days)
	if c.EndAt != nil && c.EndAt.Before(expires) {
		expires = c.EndAt.UTC()
	}
	return expires
}
