package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/shop"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults: 20 open, 5 idle,
// 5m max lifetime, 10m max idle time.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// GetProfile retrieves a player profile by user ID
func (s *pgStore) GetProfile(ctx context.Context, userID string) (*schema.PlayerProfile, error) {
	var profile schema.PlayerProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// CreateProfile inserts a fresh profile row
func (s *pgStore) CreateProfile(ctx context.Context, profile *schema.PlayerProfile) error {
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// UpdateProfileCAS writes a profile guarded by its version column. The update
// only lands when the stored version still matches; the in-memory version is
// bumped on success.
func (s *pgStore) UpdateProfileCAS(ctx context.Context, profile *schema.PlayerProfile) error {
	result := s.db.WithContext(ctx).
		Model(&schema.PlayerProfile{}).
		Where("user_id = ? AND version = ?", profile.UserID, profile.Version).
		Updates(map[string]interface{}{
			"level":       profile.Level,
			"total_xp":    profile.TotalXP,
			"coins":       profile.Coins,
			"shards":      profile.Shards,
			"upgrades":    profile.Upgrades,
			"streak_days": profile.StreakDays,
			"version":     profile.Version + 1,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	profile.Version++
	return nil
}

// PurchaseItem validates and applies a shop purchase as a single transaction:
// wallet debit, ownership grant and ledger append commit together or not at
// all. The profile row is locked for the duration so two concurrent purchases
// cannot both pass the affordability check against a stale balance.
func (s *pgStore) PurchaseItem(ctx context.Context, userID string, item shop.Item) (*shop.PurchaseResult, error) {
	var result shop.PurchaseResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile schema.PlayerProfile
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&profile).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrProfileNotFound
			}
			return fmt.Errorf("failed to lock profile: %w", err)
		}

		owned, err := ownedItems(tx, userID)
		if err != nil {
			return err
		}

		result, err = shop.Purchase(item, shop.Wallet{Coins: profile.Coins}, owned, time.Now())
		if err != nil {
			return err
		}

		update := tx.Model(&schema.PlayerProfile{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"coins":      result.Wallet.Coins,
				"version":    profile.Version + 1,
				"updated_at": time.Now(),
			})
		if update.Error != nil {
			return fmt.Errorf("failed to debit wallet: %w", update.Error)
		}

		purchase := schema.ShopPurchase{
			UserID:   userID,
			ItemID:   item.ID,
			Quantity: 1,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("shop_purchases.quantity + 1"),
				"updated_at": time.Now(),
			}),
		}).Create(&purchase).Error; err != nil {
			return fmt.Errorf("failed to grant item: %w", err)
		}

		entry := schema.CoinTransaction{
			ID:        result.Entry.ID,
			UserID:    userID,
			ItemID:    result.Entry.ItemID,
			Amount:    result.Entry.Amount,
			Reason:    result.Entry.Reason,
			CreatedAt: result.Entry.Timestamp,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOwnedItems returns itemID -> quantity for a user
func (s *pgStore) ListOwnedItems(ctx context.Context, userID string) (map[string]int, error) {
	return ownedItems(s.db.WithContext(ctx), userID)
}

func ownedItems(db *gorm.DB, userID string) (map[string]int, error) {
	var purchases []schema.ShopPurchase
	if err := db.Where("user_id = ?", userID).Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to list owned items: %w", err)
	}
	owned := make(map[string]int, len(purchases))
	for _, p := range purchases {
		owned[p.ItemID] = p.Quantity
	}
	return owned, nil
}

// ListTransactions returns the most recent ledger entries for a user
func (s *pgStore) ListTransactions(ctx context.Context, userID string, limit int) ([]schema.CoinTransaction, error) {
	var entries []schema.CoinTransaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return entries, nil
}

// UpsertSponsor creates or refreshes a sponsor record keyed by user ID
func (s *pgStore) UpsertSponsor(ctx context.Context, sponsor *schema.Sponsor) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "company_name", "contact_name",
			"external_customer_id", "pending_tier_id", "updated_at",
		}),
	}).Create(sponsor).Error
	if err != nil {
		return fmt.Errorf("failed to upsert sponsor: %w", err)
	}

	// The insert is ignored on conflict, so refresh the canonical row to pick
	// up the original ID and status.
	var stored schema.Sponsor
	if err := s.db.WithContext(ctx).Where("user_id = ?", sponsor.UserID).First(&stored).Error; err != nil {
		return fmt.Errorf("failed to reload sponsor: %w", err)
	}
	*sponsor = stored
	return nil
}

// GetSponsorByUserID retrieves a sponsor by owning user
func (s *pgStore) GetSponsorByUserID(ctx context.Context, userID string) (*schema.Sponsor, error) {
	return s.findSponsor(ctx, "user_id = ?", userID)
}

// GetSponsorByID retrieves a sponsor by its ID
func (s *pgStore) GetSponsorByID(ctx context.Context, sponsorID string) (*schema.Sponsor, error) {
	return s.findSponsor(ctx, "id = ?", sponsorID)
}

// GetSponsorByExternalCustomerID retrieves a sponsor by processor customer
func (s *pgStore) GetSponsorByExternalCustomerID(ctx context.Context, customerID string) (*schema.Sponsor, error) {
	return s.findSponsor(ctx, "external_customer_id = ?", customerID)
}

func (s *pgStore) findSponsor(ctx context.Context, query string, arg string) (*schema.Sponsor, error) {
	var sponsor schema.Sponsor
	err := s.db.WithContext(ctx).Where(query, arg).First(&sponsor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sponsor: %w", err)
	}
	return &sponsor, nil
}

// UpdateSponsorStatus sets the sponsor lifecycle status
func (s *pgStore) UpdateSponsorStatus(ctx context.Context, sponsorID string, status domain.SubscriptionStatus) error {
	err := s.db.WithContext(ctx).
		Model(&schema.Sponsor{}).
		Where("id = ?", sponsorID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update sponsor status: %w", err)
	}
	return nil
}

// CreateSubscriptionIfAbsent inserts a subscription keyed by its external ID.
// The external subscription ID is the natural dedup key: a replayed
// checkout.session.completed lands on ON CONFLICT DO NOTHING.
func (s *pgStore) CreateSubscriptionIfAbsent(ctx context.Context, sub *schema.SponsorSubscription) (bool, error) {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_subscription_id"}},
		DoNothing: true,
	}).Create(sub)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create subscription: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetSubscriptionByExternalID retrieves a subscription by processor ID
func (s *pgStore) GetSubscriptionByExternalID(ctx context.Context, externalID string) (*schema.SponsorSubscription, error) {
	var sub schema.SponsorSubscription
	err := s.db.WithContext(ctx).Where("external_subscription_id = ?", externalID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// UpdateSubscriptionStatus sets the subscription lifecycle status
func (s *pgStore) UpdateSubscriptionStatus(ctx context.Context, externalID string, status domain.SubscriptionStatus) error {
	err := s.db.WithContext(ctx).
		Model(&schema.SponsorSubscription{}).
		Where("external_subscription_id = ?", externalID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	return nil
}

// UpdateSubscriptionPeriod refreshes the billing window. Re-applying the same
// period is a harmless overwrite.
func (s *pgStore) UpdateSubscriptionPeriod(ctx context.Context, externalID string, start, end time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&schema.SponsorSubscription{}).
		Where("external_subscription_id = ?", externalID).
		Updates(map[string]interface{}{
			"current_period_start": start,
			"current_period_end":   end,
			"updated_at":           time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update subscription period: %w", err)
	}
	return nil
}

// WasEventProcessed reports whether a webhook event ID has been handled
func (s *pgStore) WasEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.ProcessedWebhookEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return count > 0, nil
}

// MarkEventProcessed records a handled webhook event; replays are no-ops
func (s *pgStore) MarkEventProcessed(ctx context.Context, event *schema.ProcessedWebhookEvent) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(event).Error
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}
