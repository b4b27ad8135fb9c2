// Package economy implements the Vyral progression economy as a deterministic
// state machine. Events are applied atomically against an immutable snapshot:
// Apply never mutates its input and either returns a fully updated snapshot or
// the input unchanged alongside an error.
package economy

import (
	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/progression"
)

// Multipliers are derived values, always recomputed from upgrade levels and
// streak days. They are never persisted independently of the levels that
// produced them.
type Multipliers struct {
	XP           float64 `json:"xp"`
	CurrencyGain float64 `json:"currency_gain"`
	Regen        float64 `json:"regen"`
}

// State is a full snapshot of one player's progression economy.
type State struct {
	Level        int                    `json:"level"`
	TotalXP      int64                  `json:"total_xp"`
	Coins        int64                  `json:"coins"`
	Shards       int64                  `json:"shards"`
	Upgrades     map[domain.TrackID]int `json:"upgrades"`
	Multipliers  Multipliers            `json:"multipliers"`
	StreakDays   int                    `json:"streak_days"`
	HP           int                    `json:"hp"`
	StaminaRegen int                    `json:"stamina_regen"`
}

// NewState returns the seed state for a first authenticated session.
func NewState(c progression.Constants) State {
	upgrades := make(map[domain.TrackID]int, len(c.Tracks))
	for track := range c.Tracks {
		upgrades[track] = 0
	}
	s := State{
		Level:        1,
		TotalXP:      0,
		Coins:        0,
		Shards:       0,
		Upgrades:     upgrades,
		StreakDays:   0,
		HP:           progression.DeriveHP(0, c),
		StaminaRegen: progression.DeriveStaminaRegen(1, c),
	}
	s.Multipliers = deriveMultipliers(s.Upgrades, s.StreakDays, c)
	return s
}

// Clone returns a deep copy of the state. Apply works on clones so the
// caller's snapshot is never mutated.
func (s State) Clone() State {
	out := s
	out.Upgrades = make(map[domain.TrackID]int, len(s.Upgrades))
	for track, level := range s.Upgrades {
		out.Upgrades[track] = level
	}
	return out
}

// deriveMultipliers recomputes all multipliers from upgrade levels and streak
// days. The XP multiplier stacks multiplicatively: the LyfeTree bonus sets the
// base, the XPBooster bonus multiplies on top, and each streak day compounds
// a further StreakXPFactor. This is deliberately not additive stacking.
func deriveMultipliers(upgrades map[domain.TrackID]int, streakDays int, c progression.Constants) Multipliers {
	tree := progression.UpgradeBonus(upgrades[domain.TrackLyfeTree], c.Tracks[domain.TrackLyfeTree])
	booster := progression.UpgradeBonus(upgrades[domain.TrackXPBooster], c.Tracks[domain.TrackXPBooster])
	crit := progression.UpgradeBonus(upgrades[domain.TrackStudyCrit], c.Tracks[domain.TrackStudyCrit])
	regen := progression.UpgradeBonus(upgrades[domain.TrackFocusRegen], c.Tracks[domain.TrackFocusRegen])

	xp := (1 + tree) * (1 + booster)
	for i := 0; i < streakDays; i++ {
		xp *= c.StreakXPFactor
	}

	return Multipliers{
		XP:           xp,
		CurrencyGain: 1 + crit,
		Regen:        1 + regen,
	}
}
