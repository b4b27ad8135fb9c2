package economy

import (
	"fmt"
	"math"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/progression"
)

// Engine applies economy events against state snapshots using a fixed
// constants bundle. It holds no per-player state; callers are responsible for
// serializing events per player (see internal/session).
type Engine struct {
	constants progression.Constants
}

// NewEngine creates an engine with the given tuning.
func NewEngine(c progression.Constants) *Engine {
	return &Engine{constants: c}
}

// Constants returns the tuning bundle the engine was built with.
func (e *Engine) Constants() progression.Constants {
	return e.constants
}

// NewState returns the seed state under this engine's constants.
func (e *Engine) NewState() State {
	return NewState(e.constants)
}

// Apply applies a single event and returns the new snapshot. On error the
// returned state is the input, unchanged: events are atomic, there is no
// partial application.
func (e *Engine) Apply(s State, event Event) (State, Outcome, error) {
	switch ev := event.(type) {
	case XPGain:
		return e.applyXPGain(s, ev)
	case CoinsAdd:
		return e.applyCoinsAdd(s, ev)
	case UpgradeBuy:
		return e.applyUpgradeBuy(s, ev)
	case Prestige:
		return e.applyPrestige(s)
	case StreakTick:
		return e.applyStreakTick(s)
	default:
		return s, Outcome{}, fmt.Errorf("unrecognized economy event %T", event)
	}
}

func (e *Engine) applyXPGain(s State, ev XPGain) (State, Outcome, error) {
	next := s.Clone()
	gained := int64(math.Round(float64(ev.Amount) * next.Multipliers.XP))
	next.TotalXP += gained

	// Loop until stable: one event may cross several thresholds, and each
	// crossed level must be individually observable.
	var outcome Outcome
	for next.TotalXP >= progression.XPRequiredForLevel(next.Level+1, e.constants) {
		next.Level++
		outcome.LevelUps = append(outcome.LevelUps, next.Level)
	}

	next.HP = progression.DeriveHP(next.TotalXP, e.constants)
	next.StaminaRegen = progression.DeriveStaminaRegen(next.Level, e.constants)
	return next, outcome, nil
}

func (e *Engine) applyCoinsAdd(s State, ev CoinsAdd) (State, Outcome, error) {
	next := s.Clone()
	next.Coins += int64(math.Round(float64(ev.Amount) * next.Multipliers.CurrencyGain))
	return next, Outcome{}, nil
}

func (e *Engine) applyUpgradeBuy(s State, ev UpgradeBuy) (State, Outcome, error) {
	if !domain.IsValidTrack(ev.Track) {
		return s, Outcome{}, domain.ErrUnknownTrack
	}
	tc, ok := e.constants.Tracks[ev.Track]
	if !ok {
		return s, Outcome{}, domain.ErrUnknownTrack
	}

	current := s.Upgrades[ev.Track]

	var levels int
	var cost int64
	switch ev.Mode {
	case domain.PurchaseModeBuy1:
		levels = 1
		cost = progression.UpgradeCost(current, tc)
	case domain.PurchaseModeBuy10:
		levels = 10
		cost = progression.UpgradeCostBulk(current, 10, tc)
	case domain.PurchaseModeBuyMax:
		levels, cost = greedyMax(current, s.Coins, tc)
	default:
		return s, Outcome{}, fmt.Errorf("unrecognized purchase mode %q", ev.Mode)
	}

	if levels == 0 || s.Coins < cost {
		return s, Outcome{}, domain.ErrInsufficientFunds
	}

	next := s.Clone()
	next.Coins -= cost
	next.Upgrades[ev.Track] = current + levels
	next.Multipliers = deriveMultipliers(next.Upgrades, next.StreakDays, e.constants)
	next.StaminaRegen = progression.DeriveStaminaRegen(next.Level, e.constants)

	return next, Outcome{CoinsSpent: cost, LevelsBought: levels}, nil
}

// greedyMax buys levels while the cumulative cost fits the balance,
// re-evaluating the cost at each new level. The iteration ceiling is derived
// from the maximum representable wallet balance rather than a magic constant.
func greedyMax(current int, balance int64, tc progression.TrackConstants) (int, int64) {
	ceiling := progression.MaxBuyLevels(tc)
	levels := 0
	var spent int64
	for levels < ceiling {
		cost := progression.UpgradeCost(current+levels, tc)
		// Compare against the remaining budget; spent+cost could overflow
		// int64 for balances near MaxInt64.
		if cost > balance-spent {
			break
		}
		spent += cost
		levels++
	}
	return levels, spent
}

func (e *Engine) applyPrestige(s State) (State, Outcome, error) {
	// The caller is expected to check eligibility first; the state machine
	// re-validates regardless.
	if s.Level < e.constants.PrestigeThreshold {
		return s, Outcome{}, domain.ErrPrestigeNotEligible
	}

	gained := int64(math.Floor(math.Pow(float64(s.Level), e.constants.PrestigeShardExponent)))

	next := NewState(e.constants)
	next.Shards = s.Shards + gained
	return next, Outcome{ShardsGained: gained}, nil
}

func (e *Engine) applyStreakTick(s State) (State, Outcome, error) {
	next := s.Clone()
	next.StreakDays++
	next.Multipliers = deriveMultipliers(next.Upgrades, next.StreakDays, e.constants)
	return next, Outcome{}, nil
}

// PrestigeEligible reports whether the state may prestige. Exposed so the API
// layer can gate the action without invoking the event.
func (e *Engine) PrestigeEligible(s State) bool {
	return s.Level >= e.constants.PrestigeThreshold
}

// Rehydrate rebuilds a full snapshot from the persisted scalar fields.
// Multipliers, HP and stamina regen are derived, never stored, so they are
// recomputed here from the values that produced them.
func (e *Engine) Rehydrate(level int, totalXP, coins, shards int64, upgrades map[domain.TrackID]int, streakDays int) State {
	if level < 1 {
		level = 1
	}
	if upgrades == nil {
		upgrades = make(map[domain.TrackID]int)
	}
	s := State{
		Level:      level,
		TotalXP:    totalXP,
		Coins:      coins,
		Shards:     shards,
		Upgrades:   upgrades,
		StreakDays: streakDays,
	}
	s.Multipliers = deriveMultipliers(s.Upgrades, s.StreakDays, e.constants)
	s.HP = progression.DeriveHP(s.TotalXP, e.constants)
	s.StaminaRegen = progression.DeriveStaminaRegen(s.Level, e.constants)
	return s
}
