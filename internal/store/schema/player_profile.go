package schema

import (
	"time"

	"gorm.io/datatypes"
)

// PlayerProfile represents the player_profiles table - the single
// authoritative progression record per user. Multipliers, HP and stamina
// regen are derived values and deliberately not persisted; they are pure
// functions of the fields below.
type PlayerProfile struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the authenticated user this profile belongs to
	UserID string `gorm:"column:user_id;not null;unique;type:varchar(64)"`
	// Level is the current progression level (>= 1)
	Level int `gorm:"column:level;not null;default:1"`
	// TotalXP is the lifetime XP within the current prestige epoch
	TotalXP int64 `gorm:"column:total_xp;not null;default:0"`
	// Coins is the VybeCoin balance (primary currency)
	Coins int64 `gorm:"column:coins;not null;default:0"`
	// Shards is the premium currency balance; survives prestige
	Shards int64 `gorm:"column:shards;not null;default:0"`
	// Upgrades is a JSON map of trackID -> purchased level
	Upgrades datatypes.JSON `gorm:"column:upgrades;not null;type:jsonb"`
	// StreakDays is the consecutive-day streak counter
	StreakDays int `gorm:"column:streak_days;not null;default:0"`
	// Version is the optimistic concurrency token; every write bumps it
	Version int64 `gorm:"column:version;not null;default:0"`
	// CreatedAt is the timestamp when this profile was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this profile was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the PlayerProfile model
func (PlayerProfile) TableName() string {
	return "player_profiles"
}
