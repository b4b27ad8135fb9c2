package schema

import "time"

// SponsorSubscription represents the sponsor_subscriptions table. The
// lifecycle is driven entirely by inbound processor webhooks; the external
// subscription ID is the natural dedup key for creation.
type SponsorSubscription struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// SponsorID references the owning sponsor
	SponsorID string `gorm:"column:sponsor_id;not null;index;type:varchar(36)"`
	// TierID is the sponsor tier purchased
	TierID string `gorm:"column:tier_id;not null;type:varchar(64)"`
	// ExternalSubscriptionID is the processor-side subscription identifier
	ExternalSubscriptionID string `gorm:"column:external_subscription_id;not null;unique;type:varchar(64)"`
	// Status is the subscription lifecycle state: pending, active, past_due, canceled, paused
	Status string `gorm:"column:status;not null;default:'pending';type:varchar(16)"`
	// CurrentPeriodStart is the start of the current billing window
	CurrentPeriodStart *time.Time `gorm:"column:current_period_start;type:timestamptz"`
	// CurrentPeriodEnd is the end of the current billing window
	CurrentPeriodEnd *time.Time `gorm:"column:current_period_end;type:timestamptz"`
	// CreatedAt is the timestamp when this subscription was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this subscription was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the SponsorSubscription model
func (SponsorSubscription) TableName() string {
	return "sponsor_subscriptions"
}
