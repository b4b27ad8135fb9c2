package economy

import "github.com/triplegarycodes/vyral-test-sub000/internal/domain"

// Event is a progression economy event. The concrete types below are the only
// recognized transitions; anything else is rejected by the engine.
type Event interface {
	eventType() string
}

// XPGain awards XP. The amount is scaled by the current XP multiplier and a
// single large gain may cross several level thresholds at once.
type XPGain struct {
	Amount int64
}

func (XPGain) eventType() string { return "xp_gain" }

// CoinsAdd awards VybeCoins scaled by the currency-gain multiplier.
type CoinsAdd struct {
	Amount int64
}

func (CoinsAdd) eventType() string { return "coins_add" }

// UpgradeBuy purchases one or more levels on an upgrade track.
type UpgradeBuy struct {
	Track domain.TrackID
	Mode  domain.PurchaseMode
}

func (UpgradeBuy) eventType() string { return "upgrade_buy" }

// Prestige resets progression in exchange for shards. Only the premium
// currency survives the reset.
type Prestige struct{}

func (Prestige) eventType() string { return "prestige" }

// StreakTick records one more consecutive day and compounds the XP multiplier.
type StreakTick struct{}

func (StreakTick) eventType() string { return "streak_tick" }

// Outcome reports what an applied event did, for callers that need to trigger
// side effects (level-up animations, streak notifications, ledger entries).
type Outcome struct {
	// LevelUps lists every level crossed by this event, in order. A single
	// XPGain can produce several entries.
	LevelUps []int
	// CoinsSpent is the total wallet debit of an UpgradeBuy.
	CoinsSpent int64
	// LevelsBought is the number of track levels purchased by an UpgradeBuy.
	LevelsBought int
	// ShardsGained is the premium currency granted by a Prestige.
	ShardsGained int64
}
