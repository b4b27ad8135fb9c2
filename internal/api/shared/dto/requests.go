package dto

import (
	"fmt"

	apierrors "github.com/triplegarycodes/vyral-test-sub000/internal/api/shared/errors"
	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/economy"
)

// Economy event types accepted over the API.
const (
	EventTypeXPGain     = "xp_gain"
	EventTypeCoinsAdd   = "coins_add"
	EventTypeUpgradeBuy = "upgrade_buy"
	EventTypePrestige   = "prestige"
	EventTypeStreakTick = "streak_tick"
)

// ApplyEventRequest represents the request body for applying an economy event
type ApplyEventRequest struct {
	Type    string `json:"type"`
	Amount  int64  `json:"amount,omitempty"`
	TrackID string `json:"track_id,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

// Validate validates the request body
func (r *ApplyEventRequest) Validate() error {
	switch r.Type {
	case EventTypeXPGain, EventTypeCoinsAdd:
		if r.Amount <= 0 {
			return apierrors.NewValidationError("amount must be positive")
		}
	case EventTypeUpgradeBuy:
		if !domain.IsValidTrack(domain.TrackID(r.TrackID)) {
			return apierrors.NewValidationError(fmt.Sprintf("invalid track_id: %s", r.TrackID))
		}
		if !domain.IsValidPurchaseMode(domain.PurchaseMode(r.Mode)) {
			return apierrors.NewValidationError(fmt.Sprintf("invalid mode: %s", r.Mode))
		}
	case EventTypePrestige, EventTypeStreakTick:
		// No payload fields.
	case "":
		return apierrors.NewValidationError("type is required")
	default:
		return apierrors.NewValidationError(fmt.Sprintf("unknown event type: %s", r.Type))
	}
	return nil
}

// ToEvent converts a validated request into an economy event.
func (r *ApplyEventRequest) ToEvent() economy.Event {
	switch r.Type {
	case EventTypeXPGain:
		return economy.XPGain{Amount: r.Amount}
	case EventTypeCoinsAdd:
		return economy.CoinsAdd{Amount: r.Amount}
	case EventTypeUpgradeBuy:
		return economy.UpgradeBuy{Track: domain.TrackID(r.TrackID), Mode: domain.PurchaseMode(r.Mode)}
	case EventTypePrestige:
		return economy.Prestige{}
	case EventTypeStreakTick:
		return economy.StreakTick{}
	}
	return nil
}

// PurchaseRequest represents the request body for a shop purchase
type PurchaseRequest struct {
	ItemID string `json:"item_id"`
}

// Validate validates the request body
func (r *PurchaseRequest) Validate() error {
	if r.ItemID == "" {
		return apierrors.NewValidationError("item_id is required")
	}
	return nil
}

// SponsorCheckoutRequest represents the request body for creating a sponsor checkout
type SponsorCheckoutRequest struct {
	TierID      string `json:"tier_id"`
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
}

// Validate validates the request body
func (r *SponsorCheckoutRequest) Validate() error {
	if r.TierID == "" {
		return apierrors.NewValidationError("tier_id is required")
	}
	if r.CompanyName == "" {
		return apierrors.NewValidationError("company_name is required")
	}
	return nil
}
