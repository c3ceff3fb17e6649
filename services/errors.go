package services

import (
	"errors"
	"fmt"
)

var (
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrOperatorNotFound     = errors.New("operator not found")
	ErrLeadNotFound         = errors.New("lead not found")
	ErrCreditsExhausted     = errors.New("credits exhausted")
	ErrAlreadyRedeemed      = errors.New("prize already redeemed")
	ErrRedemptionExpired    = errors.New("redemption window has expired")
	ErrOutcomeNotDrawn      = errors.New("outcome was not drawn for this participant")
	ErrInvalidIdentity      = errors.New("invalid participant identity")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrInvalidCampaign      = errors.New("invalid campaign configuration")
)

// Reason is the machine-readable cause of a rejected play
type Reason string

const (
	ReasonNotPublished     Reason = "not_published"
	ReasonDraft            Reason = "draft"
	ReasonNotStarted       Reason = "not_started"
	ReasonPaused           Reason = "paused"
	ReasonEnded            Reason = "ended"
	ReasonNotConfigured    Reason = "not_configured"
	ReasonTotalLimit       Reason = "total_limit_reached"
	ReasonEmailLimit       Reason = "email_limit_reached"
	ReasonPhoneLimit       Reason = "phone_limit_reached"
	ReasonIPLimit          Reason = "ip_limit_reached"
	ReasonDeviceLimit      Reason = "device_limit_reached"
	ReasonCooldown         Reason = "cooldown_active"
	ReasonDailyLimit       Reason = "daily_limit_reached"
	ReasonWeeklyLimit      Reason = "weekly_limit_reached"
	ReasonCreditsExhausted Reason = "credits_exhausted"
)

var reasonMessages = map[Reason]string{
	ReasonNotPublished:     "This campaign is not available.",
	ReasonDraft:            "This campaign is not open yet.",
	ReasonNotStarted:       "This campaign has not started yet.",
	ReasonPaused:           "This campaign is temporarily paused.",
	ReasonEnded:            "This campaign has ended.",
	ReasonNotConfigured:    "This campaign has no prizes configured.",
	ReasonTotalLimit:       "Total limit reached for this campaign.",
	ReasonEmailLimit:       "You have already played with this email address.",
	ReasonPhoneLimit:       "You have already played with this phone number.",
	ReasonIPLimit:          "Too many plays from your network.",
	ReasonDeviceLimit:      "You have already played on this device.",
	ReasonCooldown:         "Please wait before playing again.",
	ReasonDailyLimit:       "You have reached today's play limit.",
	ReasonWeeklyLimit:      "You have reached this week's play limit.",
	ReasonCreditsExhausted: "This campaign is not accepting new participants right now.",
}

// Message returns the participant-facing text for r
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "You cannot play right now."
}

// NotEligibleError is a lifecycle or rate-limit rejection
type NotEligibleError struct {
	Reason  Reason
	Message string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("not eligible: %s", e.Reason)
}

func notEligible(reason Reason) *NotEligibleError {
	return &NotEligibleError{Reason: reason, Message: reason.Message()}
}

// StoreError marks a persistence failure; the whole operation is safe to retry
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr wraps err unless it already belongs to the engine's taxonomy
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ne *NotEligibleError
	var se *StoreError
	switch {
	case errors.As(err, &ne), errors.As(err, &se),
		errors.Is(err, ErrCampaignNotFound),
		errors.Is(err, ErrOperatorNotFound),
		errors.Is(err, ErrLeadNotFound),
		errors.Is(err, ErrCreditsExhausted),
		errors.Is(err, ErrAlreadyRedeemed),
		errors.Is(err, ErrRedemptionExpired),
		errors.Is(err, ErrOutcomeNotDrawn),
		errors.Is(err, ErrInvalidIdentity),
		errors.Is(err, ErrTransitionNotAllowed),
		errors.Is(err, ErrInvalidCampaign):
		return err
	}
	return &StoreError{Op: op, Err: err}
}
