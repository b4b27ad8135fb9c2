// Package progression holds the pure math behind the Vyral level curve,
// upgrade costs, diminishing-returns bonuses and derived stats. Functions here
// are stateless and side-effect free; all tuning comes in through Constants.
package progression

import (
	"math"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
)

// XPRequiredForLevel returns the total XP required to hold the given level.
//
// Convention: level 1 requires BaseXP (levels below 1 are clamped to 1). The
// legacy client carried a second convention where level 1 required 0 XP; this
// implementation standardizes on the BaseXP floor.
func XPRequiredForLevel(level int, c Constants) int64 {
	if level <= 1 {
		return int64(math.Round(c.BaseXP))
	}
	return int64(math.Round(c.BaseXP * math.Pow(c.GrowthXP, float64(level-1))))
}

// LevelForXP returns the highest level held at the given total XP. A single
// large XP gain can cross several thresholds, so this loops until stable.
func LevelForXP(totalXP int64, c Constants) int {
	level := 1
	for totalXP >= XPRequiredForLevel(level+1, c) {
		level++
	}
	return level
}

// UpgradeCost returns the cost of buying the next level of a track when the
// track currently sits at currentLevel. Strictly increasing in currentLevel.
func UpgradeCost(currentLevel int, tc TrackConstants) int64 {
	return int64(math.Round(tc.BaseCost * math.Pow(tc.GrowthCost, float64(currentLevel))))
}

// UpgradeCostBulk returns the cost of buying n consecutive levels starting at
// currentLevel, using the closed-form geometric sum
// BaseCost × (g^current) × (g^n − 1) / (g − 1).
func UpgradeCostBulk(currentLevel, n int, tc TrackConstants) int64 {
	if n <= 0 {
		return 0
	}
	g := tc.GrowthCost
	sum := tc.BaseCost * math.Pow(g, float64(currentLevel)) * (math.Pow(g, float64(n)) - 1) / (g - 1)
	return int64(math.Round(sum))
}

// UpgradeBonus returns a track's multiplier contribution at the given level:
// BaseBonus × (1 − Decay^level). Strictly increasing, asymptotic to BaseBonus,
// never reaching it for finite level.
func UpgradeBonus(level int, tc TrackConstants) float64 {
	if level <= 0 {
		return 0
	}
	return tc.BaseBonus * (1 - math.Pow(tc.Decay, float64(level)))
}

// MaxBuyLevels returns the hard ceiling on levels a single buy-max event may
// purchase on one track: the level at which a single purchase would overflow
// int64 currency. This replaces an arbitrary iteration cap with one derived
// from the maximum representable wallet balance.
func MaxBuyLevels(tc TrackConstants) int {
	if tc.GrowthCost <= 1 || tc.BaseCost <= 0 {
		return 0
	}
	return int(math.Log(float64(math.MaxInt64)/tc.BaseCost) / math.Log(tc.GrowthCost))
}

// DeriveHP derives hit points from total XP. totalXP is clamped at 0 so the
// log argument is always at least 10.
func DeriveHP(totalXP int64, c Constants) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return int(math.Round(c.HPBase * math.Log(float64(totalXP)+10)))
}

// DeriveStaminaRegen derives stamina regeneration from level.
func DeriveStaminaRegen(level int, c Constants) int {
	if level < 1 {
		level = 1
	}
	return int(math.Round(c.RegenBase * math.Sqrt(float64(level))))
}

// TimeToNextLevel projects the minutes until the next level at the given XP
// rate. Returns ErrNonPositiveRate when xpRatePerMinute is zero or negative;
// callers should render that as "unknown".
func TimeToNextLevel(currentXP int64, level int, xpRatePerMinute float64, c Constants) (int64, error) {
	if xpRatePerMinute <= 0 {
		return 0, domain.ErrNonPositiveRate
	}
	remaining := XPRequiredForLevel(level+1, c) - currentXP
	if remaining <= 0 {
		return 0, nil
	}
	return int64(math.Ceil(float64(remaining) / xpRatePerMinute)), nil
}
