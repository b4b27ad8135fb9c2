package sponsor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/payments"
	"github.com/triplegarycodes/vyral-test-sub000/internal/sponsor"
)

func newCheckoutService(st *fakeStore, processor *fakeProcessor) *sponsor.CheckoutService {
	return sponsor.NewCheckoutService(sponsor.CheckoutConfig{
		SuccessURL: "https://vyral.test/sponsors/success",
		CancelURL:  "https://vyral.test/sponsors/cancel",
	}, st, processor, sponsor.DefaultTiers())
}

func TestCreateCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("first checkout creates customer and pending sponsor", func(t *testing.T) {
		st := newFakeStore()
		processor := newFakeProcessor()
		svc := newCheckoutService(st, processor)

		result, err := svc.CreateCheckout(ctx, "user-1", "sponsor@corp.test", sponsor.CheckoutRequest{
			TierID:      "tier-growth",
			CompanyName: "Corp Test",
			ContactName: "Jamie Ortiz",
		})
		require.NoError(t, err)

		assert.Equal(t, "cs_test_1", result.SessionID)
		assert.Equal(t, "https://checkout.processor.test/cs_test_1", result.CheckoutURL)
		assert.Equal(t, 1, processor.createdCustomers)

		stored, err := st.GetSponsorByUserID(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, string(domain.SubscriptionPending), stored.Status)
		assert.Equal(t, "tier-growth", stored.PendingTierID)
		assert.Equal(t, "cus_sponsor@corp.test", stored.ExternalCustomerID)
	})

	t.Run("existing processor customer is reused by email", func(t *testing.T) {
		st := newFakeStore()
		processor := newFakeProcessor()
		processor.customers["sponsor@corp.test"] = &payments.Customer{
			ID:    "cus_existing",
			Email: "sponsor@corp.test",
		}
		svc := newCheckoutService(st, processor)

		_, err := svc.CreateCheckout(ctx, "user-1", "sponsor@corp.test", sponsor.CheckoutRequest{
			TierID:      "tier-community",
			CompanyName: "Corp Test",
		})
		require.NoError(t, err)
		assert.Equal(t, 0, processor.createdCustomers)

		stored, err := st.GetSponsorByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "cus_existing", stored.ExternalCustomerID)
	})

	t.Run("returning sponsor skips the customer lookup entirely", func(t *testing.T) {
		st := newFakeStore()
		seedSponsor(st)
		processor := newFakeProcessor()
		svc := newCheckoutService(st, processor)

		_, err := svc.CreateCheckout(ctx, "user-1", "sponsor@corp.test", sponsor.CheckoutRequest{
			TierID:      "tier-community",
			CompanyName: "Corp Test",
		})
		require.NoError(t, err)
		assert.Equal(t, 0, processor.createdCustomers)
		assert.Equal(t, 1, processor.checkoutCalls)

		stored, err := st.GetSponsorByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "cus_1", stored.ExternalCustomerID)
		assert.Equal(t, "tier-community", stored.PendingTierID)
	})

	t.Run("unknown tier is rejected before any side effects", func(t *testing.T) {
		st := newFakeStore()
		processor := newFakeProcessor()
		svc := newCheckoutService(st, processor)

		_, err := svc.CreateCheckout(ctx, "user-1", "sponsor@corp.test", sponsor.CheckoutRequest{
			TierID:      "tier-imaginary",
			CompanyName: "Corp Test",
		})
		assert.ErrorIs(t, err, domain.ErrUnknownTier)
		assert.Empty(t, st.sponsors)
		assert.Equal(t, 0, processor.checkoutCalls)
	})

	t.Run("checkout session references the sponsor record", func(t *testing.T) {
		st := newFakeStore()
		processor := newFakeProcessor()
		svc := newCheckoutService(st, processor)

		_, err := svc.CreateCheckout(ctx, "user-1", "sponsor@corp.test", sponsor.CheckoutRequest{
			TierID:      "tier-growth",
			CompanyName: "Corp Test",
		})
		require.NoError(t, err)

		stored, err := st.GetSponsorByUserID(ctx, "user-1")
		require.NoError(t, err)
		// The completion webhook resolves the sponsor through this reference.
		assert.NotEmpty(t, stored.ID)
	})
}

func TestTiers(t *testing.T) {
	tiers := sponsor.DefaultTiers()

	t.Run("lookup of a known tier", func(t *testing.T) {
		tier, err := tiers.Lookup("tier-growth")
		require.NoError(t, err)
		assert.Equal(t, "tier-growth", tier.ID)
		assert.NotEmpty(t, tier.PriceID)
	})

	t.Run("lookup of an unknown tier", func(t *testing.T) {
		_, err := tiers.Lookup("tier-imaginary")
		assert.ErrorIs(t, err, domain.ErrUnknownTier)
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		list := tiers.List()
		require.Len(t, list, 3)
		assert.Equal(t, "tier-community", list[0].ID)
		assert.Equal(t, "tier-growth", list[1].ID)
		assert.Equal(t, "tier-champion", list[2].ID)
		for i := 1; i < len(list); i++ {
			assert.Less(t, list[i-1].MonthlyAmount, list[i].MonthlyAmount)
		}
	})
}
