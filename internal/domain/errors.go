package domain

import "errors"

var (
	// ErrInsufficientFunds is returned when a wallet cannot cover a purchase
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadyOwned is returned when buying a non-stackable item twice
	ErrAlreadyOwned = errors.New("item already owned")

	// ErrPrestigeNotEligible is returned when prestiging below the level threshold
	ErrPrestigeNotEligible = errors.New("prestige not eligible")

	// ErrNonPositiveRate is returned when a time projection is requested with a zero or negative XP rate
	ErrNonPositiveRate = errors.New("xp rate must be positive")

	// ErrUnknownTrack is returned when an upgrade event names an unknown track
	ErrUnknownTrack = errors.New("unknown upgrade track")

	// ErrUnknownItem is returned when a purchase names an item not in the catalog
	ErrUnknownItem = errors.New("unknown shop item")

	// ErrUnknownTier is returned when a checkout names an unknown sponsor tier
	ErrUnknownTier = errors.New("unknown sponsor tier")

	// ErrProfileNotFound is returned when no profile row exists for a user
	ErrProfileNotFound = errors.New("profile not found")

	// ErrVersionConflict is returned when an optimistic profile write loses a race
	ErrVersionConflict = errors.New("profile version conflict")

	// ErrSignatureInvalid is returned when a webhook signature fails verification
	ErrSignatureInvalid = errors.New("invalid webhook signature")

	// ErrUpstreamUnavailable is returned when the payment processor cannot be reached
	ErrUpstreamUnavailable = errors.New("payment processor unavailable")
)
