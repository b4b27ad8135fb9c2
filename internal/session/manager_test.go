package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/economy"
	"github.com/triplegarycodes/vyral-test-sub000/internal/logger"
	"github.com/triplegarycodes/vyral-test-sub000/internal/progression"
	"github.com/triplegarycodes/vyral-test-sub000/internal/session"
	"github.com/triplegarycodes/vyral-test-sub000/internal/shop"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store/schema"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeStore is an in-memory profile store with the same CAS semantics as the
// Postgres implementation: writes land only when the version matches, and a
// successful write bumps the version both in the row and in the caller's copy.
type fakeStore struct {
	mu       sync.Mutex
	profiles map[string]*schema.PlayerProfile
	owned    map[string]map[string]int

	casErr     error  // returned by UpdateProfileCAS when set
	casEntered func() // called at the top of UpdateProfileCAS when set

	casCalls int
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: make(map[string]*schema.PlayerProfile),
		owned:    make(map[string]map[string]int),
	}
}

func (f *fakeStore) GetProfile(_ context.Context, userID string) (*schema.PlayerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := *profile
	return &clone, nil
}

func (f *fakeStore) CreateProfile(_ context.Context, profile *schema.PlayerProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *profile
	f.profiles[profile.UserID] = &clone
	return nil
}

func (f *fakeStore) UpdateProfileCAS(_ context.Context, profile *schema.PlayerProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.casCalls++
	if f.casEntered != nil {
		f.casEntered()
	}
	if f.casErr != nil {
		return f.casErr
	}
	stored, ok := f.profiles[profile.UserID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if stored.Version != profile.Version {
		return domain.ErrVersionConflict
	}
	clone := *profile
	clone.Version++
	f.profiles[profile.UserID] = &clone
	profile.Version++
	return nil
}

func (f *fakeStore) PurchaseItem(_ context.Context, userID string, item shop.Item) (*shop.PurchaseResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	result, err := shop.Purchase(item, shop.Wallet{Coins: profile.Coins}, f.owned[userID], time.Now())
	if err != nil {
		return nil, err
	}
	profile.Coins = result.Wallet.Coins
	profile.Version++
	f.owned[userID] = result.Owned
	return &result, nil
}

func (f *fakeStore) ListOwnedItems(_ context.Context, userID string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owned[userID], nil
}

func (f *fakeStore) ListTransactions(_ context.Context, _ string, _ int) ([]schema.CoinTransaction, error) {
	return nil, nil
}

func (f *fakeStore) UpsertSponsor(_ context.Context, _ *schema.Sponsor) error { return nil }

func (f *fakeStore) GetSponsorByUserID(_ context.Context, _ string) (*schema.Sponsor, error) {
	return nil, nil
}

func (f *fakeStore) GetSponsorByID(_ context.Context, _ string) (*schema.Sponsor, error) {
	return nil, nil
}

func (f *fakeStore) GetSponsorByExternalCustomerID(_ context.Context, _ string) (*schema.Sponsor, error) {
	return nil, nil
}

func (f *fakeStore) UpdateSponsorStatus(_ context.Context, _ string, _ domain.SubscriptionStatus) error {
	return nil
}

func (f *fakeStore) CreateSubscriptionIfAbsent(_ context.Context, _ *schema.SponsorSubscription) (bool, error) {
	return false, nil
}

func (f *fakeStore) GetSubscriptionByExternalID(_ context.Context, _ string) (*schema.SponsorSubscription, error) {
	return nil, nil
}

func (f *fakeStore) UpdateSubscriptionStatus(_ context.Context, _ string, _ domain.SubscriptionStatus) error {
	return nil
}

func (f *fakeStore) UpdateSubscriptionPeriod(_ context.Context, _ string, _, _ time.Time) error {
	return nil
}

func (f *fakeStore) WasEventProcessed(_ context.Context, _ string) (bool, error) { return false, nil }

func (f *fakeStore) MarkEventProcessed(_ context.Context, _ *schema.ProcessedWebhookEvent) error {
	return nil
}

// seedProfile writes a profile row directly, bypassing the manager.
func (f *fakeStore) seedProfile(t *testing.T, userID string, coins int64, version int64) {
	t.Helper()
	upgrades, err := json.Marshal(map[domain.TrackID]int{})
	require.NoError(t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[userID] = &schema.PlayerProfile{
		UserID:   userID,
		Level:    1,
		Coins:    coins,
		Upgrades: datatypes.JSON(upgrades),
		Version:  version,
	}
}

func (f *fakeStore) profile(userID string) schema.PlayerProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.profiles[userID]
}

func newManager(st store.Store) *session.Manager {
	engine := economy.NewEngine(progression.DefaultConstants())
	return session.NewManager(engine, st, 2)
}

func TestGetState(t *testing.T) {
	ctx := context.Background()

	t.Run("first access seeds a fresh profile", func(t *testing.T) {
		st := newFakeStore()
		m := newManager(st)
		defer m.StopAndWait()

		state, err := m.GetState(ctx, "user-1")
		require.NoError(t, err)

		assert.Equal(t, 1, state.Level)
		assert.Equal(t, int64(0), state.Coins)
		assert.InDelta(t, 1.0, state.Multipliers.XP, 1e-9)

		row := st.profile("user-1")
		assert.Equal(t, int64(0), row.Version)
		assert.Equal(t, 1, row.Level)
	})

	t.Run("existing profile is rehydrated, not reseeded", func(t *testing.T) {
		st := newFakeStore()
		st.seedProfile(t, "user-1", 500, 7)
		m := newManager(st)
		defer m.StopAndWait()

		state, err := m.GetState(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(500), state.Coins)
	})
}

func TestApplyEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("additive event updates the snapshot and flushes", func(t *testing.T) {
		st := newFakeStore()
		m := newManager(st)

		state, outcome, err := m.ApplyEvent(ctx, "user-1", economy.XPGain{Amount: 60})
		require.NoError(t, err)
		assert.Equal(t, int64(60), state.TotalXP)
		assert.Equal(t, []int{2}, outcome.LevelUps)

		// The async flush is best-effort; drain explicitly before inspecting.
		require.NoError(t, m.Flush(ctx, "user-1"))
		m.StopAndWait()

		row := st.profile("user-1")
		assert.Equal(t, int64(60), row.TotalXP)
		assert.Equal(t, 2, row.Level)
	})

	t.Run("spending event is durable before returning", func(t *testing.T) {
		st := newFakeStore()
		st.seedProfile(t, "user-1", 100, 0)
		m := newManager(st)
		defer m.StopAndWait()

		state, outcome, err := m.ApplyEvent(ctx, "user-1", economy.UpgradeBuy{
			Track: domain.TrackLyfeTree,
			Mode:  domain.PurchaseModeBuy1,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(75), state.Coins)
		assert.Equal(t, int64(25), outcome.CoinsSpent)

		// No explicit Flush: the spend itself must have hit the row.
		row := st.profile("user-1")
		assert.Equal(t, int64(75), row.Coins)
		assert.Equal(t, int64(1), row.Version)
	})

	t.Run("rejected event leaves session and row untouched", func(t *testing.T) {
		st := newFakeStore()
		st.seedProfile(t, "user-1", 10, 0)
		m := newManager(st)
		defer m.StopAndWait()

		state, _, err := m.ApplyEvent(ctx, "user-1", economy.UpgradeBuy{
			Track: domain.TrackLyfeTree,
			Mode:  domain.PurchaseModeBuy1,
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		assert.Equal(t, int64(10), state.Coins)
		assert.Equal(t, int64(10), st.profile("user-1").Coins)
		assert.Equal(t, int64(0), st.profile("user-1").Version)
	})

	t.Run("failed spend flush reverts the session", func(t *testing.T) {
		st := newFakeStore()
		st.seedProfile(t, "user-1", 100, 0)
		m := newManager(st)
		defer m.StopAndWait()

		storeDown := errors.New("connection refused")
		st.casErr = storeDown

		state, _, err := m.ApplyEvent(ctx, "user-1", economy.UpgradeBuy{
			Track: domain.TrackLyfeTree,
			Mode:  domain.PurchaseModeBuy1,
		})
		assert.ErrorIs(t, err, storeDown)
		assert.Equal(t, int64(100), state.Coins)

		// The session must not remember the phantom debit.
		st.casErr = nil
		fresh, err := m.GetState(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(100), fresh.Coins)
	})
}

func TestFlushRebase(t *testing.T) {
	ctx := context.Background()

	t.Run("version conflict replays the outbox on the fresh row", func(t *testing.T) {
		st := newFakeStore()
		st.seedProfile(t, "user-1", 0, 0)
		m := newManager(st)
		defer m.StopAndWait()

		_, err := m.GetState(ctx, "user-1")
		require.NoError(t, err)

		// Another writer moves the row while the session holds version 0.
		st.mu.Lock()
		st.profiles["user-1"].Coins = 40
		st.profiles["user-1"].Version = 3
		st.mu.Unlock()

		_, _, err = m.ApplyEvent(ctx, "user-1", economy.CoinsAdd{Amount: 10})
		require.NoError(t, err)
		require.NoError(t, m.Flush(ctx, "user-1"))

		row := st.profile("user-1")
		assert.Equal(t, int64(50), row.Coins)
		assert.Equal(t, int64(4), row.Version)
	})

	t.Run("unreplayable spend is dropped during rebase", func(t *testing.T) {
		st := newFakeStore()
		st.seedProfile(t, "user-1", 25, 0)
		m := newManager(st)
		defer m.StopAndWait()

		_, err := m.GetState(ctx, "user-1")
		require.NoError(t, err)

		// First CAS attempt hits a conflict; by then another writer has spent
		// the balance the pending upgrade relied on.
		var once sync.Once
		st.casEntered = func() {
			once.Do(func() {
				st.profiles["user-1"].Coins = 0
				st.profiles["user-1"].Version = 5
			})
		}

		state, _, err := m.ApplyEvent(ctx, "user-1", economy.UpgradeBuy{
			Track: domain.TrackLyfeTree,
			Mode:  domain.PurchaseModeBuy1,
		})
		require.NoError(t, err)

		// The upgrade was dropped in the rebase: the fresh row had no coins.
		assert.Equal(t, int64(0), state.Coins)
		assert.Equal(t, 0, state.Upgrades[domain.TrackLyfeTree])
		assert.Equal(t, int64(0), st.profile("user-1").Coins)
	})
}

func TestPurchaseItem(t *testing.T) {
	ctx := context.Background()

	t.Run("purchase drains the outbox and refreshes the session", func(t *testing.T) {
		st := newFakeStore()
		st.seedProfile(t, "user-1", 0, 0)
		m := newManager(st)
		defer m.StopAndWait()

		// Pending coins must be visible to the purchase transaction.
		_, _, err := m.ApplyEvent(ctx, "user-1", economy.CoinsAdd{Amount: 300})
		require.NoError(t, err)

		catalog := shop.DefaultCatalog()
		item, err := catalog.Lookup("avatar-neon-fox")
		require.NoError(t, err)

		result, err := m.PurchaseItem(ctx, "user-1", item)
		require.NoError(t, err)
		assert.Equal(t, int64(50), result.Wallet.Coins)
		assert.Equal(t, 1, result.Owned["avatar-neon-fox"])

		state, err := m.GetState(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(50), state.Coins)
	})

	t.Run("insufficient funds propagates untouched", func(t *testing.T) {
		st := newFakeStore()
		st.seedProfile(t, "user-1", 10, 0)
		m := newManager(st)
		defer m.StopAndWait()

		catalog := shop.DefaultCatalog()
		item, err := catalog.Lookup("avatar-neon-fox")
		require.NoError(t, err)

		_, err = m.PurchaseItem(ctx, "user-1", item)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		assert.Equal(t, int64(10), st.profile("user-1").Coins)
	})
}
