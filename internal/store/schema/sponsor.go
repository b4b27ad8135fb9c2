package schema

import "time"

// Sponsor represents the sponsors table - one record per sponsoring
// organization, keyed by the authenticated user who created it.
type Sponsor struct {
	// ID is a UUID assigned at creation
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// UserID is the authenticated user who owns this sponsor record
	UserID string `gorm:"column:user_id;not null;unique;type:varchar(64)"`
	// Email is the contact email, also used for processor customer lookup
	Email string `gorm:"column:email;not null;type:text"`
	// CompanyName is the sponsoring organization's name
	CompanyName string `gorm:"column:company_name;not null;type:text"`
	// ContactName is the human contact at the organization
	ContactName string `gorm:"column:contact_name;type:text"`
	// ExternalCustomerID is the processor-side customer, reused across checkouts
	ExternalCustomerID string `gorm:"column:external_customer_id;index;type:varchar(64)"`
	// PendingTierID is the tier chosen at checkout initiation, resolved into a
	// subscription when the checkout completes
	PendingTierID string `gorm:"column:pending_tier_id;type:varchar(64)"`
	// Status mirrors the subscription lifecycle: pending, active, past_due, canceled, paused
	Status string `gorm:"column:status;not null;default:'pending';type:varchar(16)"`
	// CreatedAt is the timestamp when this sponsor was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this sponsor was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Sponsor model
func (Sponsor) TableName() string {
	return "sponsors"
}
