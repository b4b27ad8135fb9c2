package schema

import "time"

// ShopPurchase represents the shop_purchases table - per-user item ownership.
// Non-stackable items hold quantity 1 at most; stackable items accumulate.
type ShopPurchase struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the owning user
	UserID string `gorm:"column:user_id;not null;type:varchar(64);uniqueIndex:idx_shop_purchases_user_item,priority:1"`
	// ItemID is the catalog item identifier
	ItemID string `gorm:"column:item_id;not null;type:varchar(64);uniqueIndex:idx_shop_purchases_user_item,priority:2"`
	// Quantity is the number owned
	Quantity int `gorm:"column:quantity;not null;default:0"`
	// CreatedAt is the timestamp of the first purchase
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the most recent purchase
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ShopPurchase model
func (ShopPurchase) TableName() string {
	return "shop_purchases"
}
