package schema

import "time"

// CoinTransaction represents the coin_transactions table - an append-only
// wallet ledger. Debits carry negative amounts; rows are never updated.
type CoinTransaction struct {
	// ID is a ULID, time-sortable for ledger ordering
	ID string `gorm:"column:id;primaryKey;type:varchar(26)"`
	// UserID is the wallet owner
	UserID string `gorm:"column:user_id;not null;index;type:varchar(64)"`
	// ItemID is the shop item involved, empty for non-purchase entries
	ItemID string `gorm:"column:item_id;type:varchar(64)"`
	// Amount is the signed coin delta (negative for debits)
	Amount int64 `gorm:"column:amount;not null"`
	// Reason is a human-readable description of the transaction
	Reason string `gorm:"column:reason;not null;type:text"`
	// CreatedAt is the timestamp when this entry was appended
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the CoinTransaction model
func (CoinTransaction) TableName() string {
	return "coin_transactions"
}
