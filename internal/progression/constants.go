package progression

import "github.com/triplegarycodes/vyral-test-sub000/internal/domain"

// Constants is the tuning bundle for the progression curves. Every math
// function takes it explicitly so behavior is reproducible in tests.
type Constants struct {
	// BaseXP is the XP required to hold level 1
	BaseXP float64 `json:"base_xp"`
	// GrowthXP is the per-level geometric growth factor of the XP curve (> 1)
	GrowthXP float64 `json:"growth_xp"`
	// HPBase scales the logarithmic HP derivation
	HPBase float64 `json:"hp_base"`
	// RegenBase scales the square-root stamina regen derivation
	RegenBase float64 `json:"regen_base"`
	// PrestigeThreshold is the minimum level at which prestige is allowed
	PrestigeThreshold int `json:"prestige_threshold"`
	// PrestigeShardExponent converts level into shards: floor(level^exponent)
	PrestigeShardExponent float64 `json:"prestige_shard_exponent"`
	// StreakXPFactor is the compounding XP multiplier applied per streak tick
	StreakXPFactor float64 `json:"streak_xp_factor"`
	// Tracks holds the per-track cost/bonus tuning
	Tracks map[domain.TrackID]TrackConstants `json:"tracks"`
}

// TrackConstants tunes one upgrade track. Cost grows geometrically (convex,
// GrowthCost > 1); bonus decays asymptotically toward BaseBonus (Decay in (0,1)).
type TrackConstants struct {
	BaseCost   float64 `json:"base_cost"`
	GrowthCost float64 `json:"growth_cost"`
	BaseBonus  float64 `json:"base_bonus"`
	Decay      float64 `json:"decay"`
}

// DefaultConstants returns the production tuning.
func DefaultConstants() Constants {
	return Constants{
		BaseXP:                50,
		GrowthXP:              1.12,
		HPBase:                100,
		RegenBase:             5,
		PrestigeThreshold:     100,
		PrestigeShardExponent: 0.75,
		StreakXPFactor:        1.02,
		Tracks: map[domain.TrackID]TrackConstants{
			domain.TrackLyfeTree: {
				BaseCost:   25,
				GrowthCost: 1.15,
				BaseBonus:  1.5,
				Decay:      0.92,
			},
			domain.TrackXPBooster: {
				BaseCost:   40,
				GrowthCost: 1.18,
				BaseBonus:  1.0,
				Decay:      0.90,
			},
			domain.TrackFocusRegen: {
				BaseCost:   30,
				GrowthCost: 1.15,
				BaseBonus:  2.0,
				Decay:      0.93,
			},
			domain.TrackStudyCrit: {
				BaseCost:   50,
				GrowthCost: 1.20,
				BaseBonus:  1.25,
				Decay:      0.91,
			},
		},
	}
}
