// Package session owns in-flight progression state. The Postgres profile row
// is the single authoritative store; the per-user session here is a
// read-through cache plus an outbox of events not yet flushed. Events for one
// user are applied strictly in sequence behind a per-user lock, and flushes
// use an optimistic version check so a write racing another writer can never
// land on a stale balance.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/economy"
	"github.com/triplegarycodes/vyral-test-sub000/internal/logger"
	"github.com/triplegarycodes/vyral-test-sub000/internal/shop"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store/schema"
)

// flushAttempts bounds the reload-and-reapply loop when an optimistic write
// loses a race.
const flushAttempts = 3

// Manager applies economy events per user and keeps the authoritative profile
// row in sync. Additive events (XP, coins, streak) flush asynchronously and
// best-effort on a worker pool; spending events (upgrades, prestige) flush
// before returning so a failed write never leaves a phantom debit.
type Manager struct {
	engine *economy.Engine
	store  store.Store
	pool   pond.Pool

	mu       sync.Mutex
	sessions map[string]*userSession
}

type userSession struct {
	mu      sync.Mutex
	userID  string
	loaded  bool
	version int64
	state   economy.State
	pending []economy.Event
}

// NewManager creates a session manager flushing on a pool of the given size.
func NewManager(engine *economy.Engine, st store.Store, flushWorkers int) *Manager {
	if flushWorkers <= 0 {
		flushWorkers = 4
	}
	return &Manager{
		engine:   engine,
		store:    st,
		pool:     pond.NewPool(flushWorkers),
		sessions: make(map[string]*userSession),
	}
}

// GetState returns the current snapshot for a user, loading or seeding the
// profile on first access.
func (m *Manager) GetState(ctx context.Context, userID string) (economy.State, error) {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := m.loadLocked(ctx, s); err != nil {
		return economy.State{}, err
	}
	return s.state.Clone(), nil
}

// ApplyEvent applies one economy event for a user. Events are serialized per
// user; the returned snapshot reflects the applied event.
func (m *Manager) ApplyEvent(ctx context.Context, userID string, event economy.Event) (economy.State, economy.Outcome, error) {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := m.loadLocked(ctx, s); err != nil {
		return economy.State{}, economy.Outcome{}, err
	}

	next, outcome, err := m.engine.Apply(s.state, event)
	if err != nil {
		return s.state.Clone(), economy.Outcome{}, err
	}

	prevState, prevPending := s.state, s.pending
	s.state = next
	s.pending = append(s.pending, event)

	if spendsCurrency(event) {
		// Spending must be durable before the caller sees success.
		if err := m.flushLocked(ctx, s); err != nil {
			s.state, s.pending = prevState, prevPending
			return s.state.Clone(), economy.Outcome{}, err
		}
	} else {
		m.scheduleFlush(userID)
	}

	return s.state.Clone(), outcome, nil
}

// PurchaseItem runs a shop purchase through the store's transactional path
// under the user's session lock, then refreshes the cached state so the
// debited balance is immediately visible.
func (m *Manager) PurchaseItem(ctx context.Context, userID string, item shop.Item) (*shop.PurchaseResult, error) {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := m.loadLocked(ctx, s); err != nil {
		return nil, err
	}
	// Drain the outbox first so the transaction sees the true balance.
	if err := m.flushLocked(ctx, s); err != nil {
		return nil, err
	}

	result, err := m.store.PurchaseItem(ctx, userID, item)
	if err != nil {
		return nil, err
	}

	// The transaction bumped the row version; reload rather than guess.
	s.loaded = false
	if err := m.loadLocked(ctx, s); err != nil {
		return nil, err
	}
	return result, nil
}

// Flush synchronously drains a user's outbox. Used on sign-out and shutdown.
func (m *Manager) Flush(ctx context.Context, userID string) error {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	return m.flushLocked(ctx, s)
}

// StopAndWait drains the flush pool.
func (m *Manager) StopAndWait() {
	m.pool.StopAndWait()
}

func (m *Manager) session(userID string) *userSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &userSession{userID: userID}
		m.sessions[userID] = s
	}
	return s
}

// loadLocked populates the session from the authoritative row, seeding a new
// profile for first-time users. Caller holds s.mu.
func (m *Manager) loadLocked(ctx context.Context, s *userSession) error {
	if s.loaded {
		return nil
	}

	profile, err := m.store.GetProfile(ctx, s.userID)
	if err != nil {
		return err
	}
	if profile == nil {
		seed := m.engine.NewState()
		profile, err = profileFromState(s.userID, seed, 0)
		if err != nil {
			return err
		}
		if err := m.store.CreateProfile(ctx, profile); err != nil {
			return err
		}
	}

	state, err := m.stateFromProfile(profile)
	if err != nil {
		return err
	}

	s.state = state
	s.version = profile.Version
	s.pending = nil
	s.loaded = true
	return nil
}

// flushLocked writes the session state at its loaded version. On a version
// conflict the authoritative row is reloaded and the outbox replayed on top,
// up to flushAttempts times. Caller holds s.mu.
func (m *Manager) flushLocked(ctx context.Context, s *userSession) error {
	if len(s.pending) == 0 {
		return nil
	}

	for attempt := 0; attempt < flushAttempts; attempt++ {
		profile, err := profileFromState(s.userID, s.state, s.version)
		if err != nil {
			return err
		}

		err = m.store.UpdateProfileCAS(ctx, profile)
		if err == nil {
			s.version = profile.Version
			s.pending = nil
			return nil
		}
		if err != domain.ErrVersionConflict {
			return err
		}

		// Another writer moved the row. Rebase: reload and replay the outbox.
		fresh, err := m.store.GetProfile(ctx, s.userID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return domain.ErrProfileNotFound
		}
		state, err := m.stateFromProfile(fresh)
		if err != nil {
			return err
		}

		replayed := make([]economy.Event, 0, len(s.pending))
		for _, event := range s.pending {
			next, _, applyErr := m.engine.Apply(state, event)
			if applyErr != nil {
				// The event no longer applies against the fresh state (for
				// example the balance was spent elsewhere). Drop it.
				logger.WarnCtx(ctx, "Dropping unreplayable event during rebase",
					zap.String("user_id", s.userID),
					zap.Error(applyErr),
				)
				continue
			}
			state = next
			replayed = append(replayed, event)
		}

		s.state = state
		s.version = fresh.Version
		s.pending = replayed
		if len(s.pending) == 0 {
			return nil
		}
	}

	return fmt.Errorf("failed to flush session for user %s after %d attempts: %w",
		s.userID, flushAttempts, domain.ErrVersionConflict)
}

// scheduleFlush submits a best-effort async flush. Failures are logged and
// the outbox is kept, so the next event or the shutdown flush retries.
func (m *Manager) scheduleFlush(userID string) {
	m.pool.Submit(func() {
		s := m.session(userID)
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.loaded {
			return
		}
		if err := m.flushLocked(context.Background(), s); err != nil {
			logger.Warn("Best-effort profile flush failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	})
}

func spendsCurrency(event economy.Event) bool {
	switch event.(type) {
	case economy.UpgradeBuy, economy.Prestige:
		return true
	default:
		return false
	}
}

func profileFromState(userID string, state economy.State, version int64) (*schema.PlayerProfile, error) {
	upgrades, err := json.Marshal(state.Upgrades)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upgrades: %w", err)
	}
	return &schema.PlayerProfile{
		UserID:     userID,
		Level:      state.Level,
		TotalXP:    state.TotalXP,
		Coins:      state.Coins,
		Shards:     state.Shards,
		Upgrades:   datatypes.JSON(upgrades),
		StreakDays: state.StreakDays,
		Version:    version,
	}, nil
}

func (m *Manager) stateFromProfile(profile *schema.PlayerProfile) (economy.State, error) {
	upgrades := make(map[domain.TrackID]int)
	if len(profile.Upgrades) > 0 {
		if err := json.Unmarshal(profile.Upgrades, &upgrades); err != nil {
			return economy.State{}, fmt.Errorf("failed to unmarshal upgrades: %w", err)
		}
	}
	return m.engine.Rehydrate(
		profile.Level,
		profile.TotalXP,
		profile.Coins,
		profile.Shards,
		upgrades,
		profile.StreakDays,
	), nil
}
