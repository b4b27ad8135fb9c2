package store

import (
	"context"
	"time"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/shop"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store/schema"
)

// Store defines the interface for database operations
type Store interface {
	// GetProfile retrieves a player profile by user ID, nil when absent
	GetProfile(ctx context.Context, userID string) (*schema.PlayerProfile, error)
	// CreateProfile inserts a fresh profile row
	CreateProfile(ctx context.Context, profile *schema.PlayerProfile) error
	// UpdateProfileCAS writes a profile guarded by its version column;
	// returns domain.ErrVersionConflict when the row moved underneath
	UpdateProfileCAS(ctx context.Context, profile *schema.PlayerProfile) error

	// PurchaseItem debits the wallet, grants ownership and appends the ledger
	// entry in one transaction
	PurchaseItem(ctx context.Context, userID string, item shop.Item) (*shop.PurchaseResult, error)
	// ListOwnedItems returns itemID -> quantity for a user
	ListOwnedItems(ctx context.Context, userID string) (map[string]int, error)
	// ListTransactions returns the most recent ledger entries for a user
	ListTransactions(ctx context.Context, userID string, limit int) ([]schema.CoinTransaction, error)

	// UpsertSponsor creates or refreshes a sponsor record keyed by user ID
	UpsertSponsor(ctx context.Context, sponsor *schema.Sponsor) error
	// GetSponsorByUserID retrieves a sponsor by owning user, nil when absent
	GetSponsorByUserID(ctx context.Context, userID string) (*schema.Sponsor, error)
	// GetSponsorByID retrieves a sponsor by its ID, nil when absent
	GetSponsorByID(ctx context.Context, sponsorID string) (*schema.Sponsor, error)
	// GetSponsorByExternalCustomerID retrieves a sponsor by processor customer, nil when absent
	GetSponsorByExternalCustomerID(ctx context.Context, customerID string) (*schema.Sponsor, error)
	// UpdateSponsorStatus sets the sponsor lifecycle status
	UpdateSponsorStatus(ctx context.Context, sponsorID string, status domain.SubscriptionStatus) error

	// CreateSubscriptionIfAbsent inserts a subscription keyed by its external
	// ID; returns false when the row already existed
	CreateSubscriptionIfAbsent(ctx context.Context, sub *schema.SponsorSubscription) (bool, error)
	// GetSubscriptionByExternalID retrieves a subscription, nil when absent
	GetSubscriptionByExternalID(ctx context.Context, externalID string) (*schema.SponsorSubscription, error)
	// UpdateSubscriptionStatus sets the subscription lifecycle status
	UpdateSubscriptionStatus(ctx context.Context, externalID string, status domain.SubscriptionStatus) error
	// UpdateSubscriptionPeriod refreshes the billing window; idempotent
	UpdateSubscriptionPeriod(ctx context.Context, externalID string, start, end time.Time) error

	// WasEventProcessed reports whether a webhook event ID has been handled
	WasEventProcessed(ctx context.Context, eventID string) (bool, error)
	// MarkEventProcessed records a handled webhook event; replays are no-ops
	MarkEventProcessed(ctx context.Context, event *schema.ProcessedWebhookEvent) error
}
