package sponsor_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/payments"
	"github.com/triplegarycodes/vyral-test-sub000/internal/sponsor"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store/schema"
	"github.com/triplegarycodes/vyral-test-sub000/internal/webhook"
)

func seedSponsor(st *fakeStore) *schema.Sponsor {
	s := &schema.Sponsor{
		ID:                 "spn-1",
		UserID:             "user-1",
		Email:              "sponsor@corp.test",
		CompanyName:        "Corp Test",
		ExternalCustomerID: "cus_1",
		PendingTierID:      "tier-growth",
		Status:             string(domain.SubscriptionPending),
	}
	st.sponsors[s.ID] = s
	return s
}

func seedSubscription(st *fakeStore, status domain.SubscriptionStatus) *schema.SponsorSubscription {
	sub := &schema.SponsorSubscription{
		SponsorID:              "spn-1",
		TierID:                 "tier-growth",
		ExternalSubscriptionID: "sub_1",
		Status:                 string(status),
	}
	st.subscriptions[sub.ExternalSubscriptionID] = sub
	return sub
}

func makeEvent(id, eventType, object string) (*webhook.Event, []byte) {
	raw := []byte(fmt.Sprintf(`{"id":%q,"type":%q,"created":1767225600,"data":{"object":%s}}`, id, eventType, object))
	event, err := webhook.ParseEvent(raw)
	if err != nil {
		panic(err)
	}
	return event, raw
}

func TestHandleCheckoutCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the subscription and activates the sponsor", func(t *testing.T) {
		st := newFakeStore()
		seedSponsor(st)
		r := sponsor.NewReconciler(st, newFakeProcessor())

		event, raw := makeEvent("evt_1", webhook.EventTypeCheckoutCompleted,
			`{"id":"cs_1","subscription":"sub_1","client_reference_id":"spn-1"}`)
		require.NoError(t, r.HandleEvent(ctx, event, raw))

		sub := st.subscriptions["sub_1"]
		require.NotNil(t, sub)
		assert.Equal(t, "spn-1", sub.SponsorID)
		assert.Equal(t, "tier-growth", sub.TierID)
		assert.Equal(t, string(domain.SubscriptionActive), sub.Status)
		assert.Equal(t, string(domain.SubscriptionActive), st.sponsors["spn-1"].Status)
	})

	t.Run("replayed event ID is acknowledged without reprocessing", func(t *testing.T) {
		st := newFakeStore()
		seedSponsor(st)
		r := sponsor.NewReconciler(st, newFakeProcessor())

		event, raw := makeEvent("evt_1", webhook.EventTypeCheckoutCompleted,
			`{"id":"cs_1","subscription":"sub_1","client_reference_id":"spn-1"}`)
		require.NoError(t, r.HandleEvent(ctx, event, raw))

		// Cancel out of band, then replay; the replay must not reactivate.
		st.subscriptions["sub_1"].Status = string(domain.SubscriptionCanceled)
		require.NoError(t, r.HandleEvent(ctx, event, raw))
		assert.Equal(t, string(domain.SubscriptionCanceled), st.subscriptions["sub_1"].Status)
	})

	t.Run("unknown sponsor reference is acknowledged", func(t *testing.T) {
		st := newFakeStore()
		r := sponsor.NewReconciler(st, newFakeProcessor())

		event, raw := makeEvent("evt_2", webhook.EventTypeCheckoutCompleted,
			`{"id":"cs_1","subscription":"sub_1","client_reference_id":"spn-missing"}`)
		require.NoError(t, r.HandleEvent(ctx, event, raw))
		assert.Empty(t, st.subscriptions)
	})
}

func TestHandleInvoiceEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("paid invoice refreshes status and billing window", func(t *testing.T) {
		st := newFakeStore()
		seedSponsor(st)
		seedSubscription(st, domain.SubscriptionPastDue)

		processor := newFakeProcessor()
		processor.subscriptions["sub_1"] = &payments.Subscription{
			ID:                 "sub_1",
			CustomerID:         "cus_1",
			Status:             "active",
			CurrentPeriodStart: 1767225600,
			CurrentPeriodEnd:   1769904000,
		}
		r := sponsor.NewReconciler(st, processor)

		event, raw := makeEvent("evt_10", webhook.EventTypeInvoicePaid,
			`{"id":"in_1","customer":"cus_1","subscription":"sub_1","amount_paid":19900}`)
		require.NoError(t, r.HandleEvent(ctx, event, raw))

		sub := st.subscriptions["sub_1"]
		assert.Equal(t, string(domain.SubscriptionActive), sub.Status)
		require.NotNil(t, sub.CurrentPeriodStart)
		assert.Equal(t, time.Unix(1767225600, 0).UTC(), *sub.CurrentPeriodStart)
	})

	t.Run("paid invoice arriving before checkout recreates the record", func(t *testing.T) {
		st := newFakeStore()
		seedSponsor(st)

		processor := newFakeProcessor()
		processor.subscriptions["sub_1"] = &payments.Subscription{
			ID:                 "sub_1",
			CustomerID:         "cus_1",
			Status:             "active",
			CurrentPeriodStart: 1767225600,
			CurrentPeriodEnd:   1769904000,
		}
		r := sponsor.NewReconciler(st, processor)

		event, raw := makeEvent("evt_11", webhook.EventTypeInvoicePaid,
			`{"id":"in_1","customer":"cus_1","subscription":"sub_1"}`)
		require.NoError(t, r.HandleEvent(ctx, event, raw))

		sub := st.subscriptions["sub_1"]
		require.NotNil(t, sub)
		assert.Equal(t, "spn-1", sub.SponsorID)
		assert.Equal(t, string(domain.SubscriptionActive), sub.Status)
	})

	t.Run("late paid invoice cannot resurrect a canceled subscription", func(t *testing.T) {
		st := newFakeStore()
		seedSponsor(st)
		seedSubscription(st, domain.SubscriptionActive)
		st.sponsors["spn-1"].Status = string(domain.SubscriptionActive)

		processor := newFakeProcessor()
		processor.subscriptions["sub_1"] = &payments.Subscription{
			ID:         "sub_1",
			CustomerID: "cus_1",
			Status:     "canceled",
		}
		r := sponsor.NewReconciler(st, processor)

		deleted, deletedRaw := makeEvent("evt_13", webhook.EventTypeSubscriptionDeleted,
			`{"id":"sub_1","customer":"cus_1","status":"canceled"}`)
		require.NoError(t, r.HandleEvent(ctx, deleted, deletedRaw))

		// A paid invoice with a distinct event ID straggles in afterwards.
		paid, paidRaw := makeEvent("evt_14", webhook.EventTypeInvoicePaid,
			`{"id":"in_3","customer":"cus_1","subscription":"sub_1"}`)
		require.NoError(t, r.HandleEvent(ctx, paid, paidRaw))

		assert.Equal(t, string(domain.SubscriptionCanceled), st.subscriptions["sub_1"].Status)
		assert.Equal(t, string(domain.SubscriptionCanceled), st.sponsors["spn-1"].Status)
	})

	t.Run("failed invoice marks the subscription past due", func(t *testing.T) {
		st := newFakeStore()
		seedSponsor(st)
		seedSubscription(st, domain.SubscriptionActive)
		r := sponsor.NewReconciler(st, newFakeProcessor())

		event, raw := makeEvent("evt_12", webhook.EventTypeInvoiceFailed,
			`{"id":"in_2","customer":"cus_1","subscription":"sub_1"}`)
		require.NoError(t, r.HandleEvent(ctx, event, raw))
		assert.Equal(t, string(domain.SubscriptionPastDue), st.subscriptions["sub_1"].Status)

		// Redelivery of the same failure is a no-op, not an error.
		require.NoError(t, r.HandleEvent(ctx, event, raw))
		assert.Equal(t, string(domain.SubscriptionPastDue), st.subscriptions["sub_1"].Status)
	})

	t.Run("failed invoice cannot demote a canceled subscription", func(t *testing.T) {
		st := newFakeStore()
		seedSponsor(st)
		seedSubscription(st, domain.SubscriptionCanceled)
		r := sponsor.NewReconciler(st, newFakeProcessor())

		event, raw := makeEvent("evt_15", webhook.EventTypeInvoiceFailed,
			`{"id":"in_4","customer":"cus_1","subscription":"sub_1"}`)
		require.NoError(t, r.HandleEvent(ctx, event, raw))
		assert.Equal(t, string(domain.SubscriptionCanceled), st.subscriptions["sub_1"].Status)
	})
}

func TestHandleSubscriptionEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("update maps the external status vocabulary", func(t *testing.T) {
		cases := []struct {
			external string
			want     domain.SubscriptionStatus
		}{
			{"active", domain.SubscriptionActive},
			{"trialing", domain.SubscriptionActive},
			{"past_due", domain.SubscriptionPastDue},
			{"unpaid", domain.SubscriptionPastDue},
			{"canceled", domain.SubscriptionCanceled},
			{"incomplete_expired", domain.SubscriptionCanceled},
			{"paused", domain.SubscriptionPaused},
			{"something_new", domain.SubscriptionPaused},
		}

		for i, tc := range cases {
			st := newFakeStore()
			seedSponsor(st)
			seedSubscription(st, domain.SubscriptionActive)
			r := sponsor.NewReconciler(st, newFakeProcessor())

			event, raw := makeEvent(fmt.Sprintf("evt_2%d", i), webhook.EventTypeSubscriptionUpdated,
				fmt.Sprintf(`{"id":"sub_1","customer":"cus_1","status":%q}`, tc.external))
			require.NoError(t, r.HandleEvent(ctx, event, raw))
			assert.Equal(t, string(tc.want), st.subscriptions["sub_1"].Status, tc.external)
		}
	})

	t.Run("delete cancels the subscription and cascades to the sponsor", func(t *testing.T) {
		st := newFakeStore()
		seedSponsor(st)
		seedSubscription(st, domain.SubscriptionActive)
		st.sponsors["spn-1"].Status = string(domain.SubscriptionActive)
		r := sponsor.NewReconciler(st, newFakeProcessor())

		event, raw := makeEvent("evt_30", webhook.EventTypeSubscriptionDeleted,
			`{"id":"sub_1","customer":"cus_1","status":"canceled"}`)
		require.NoError(t, r.HandleEvent(ctx, event, raw))

		assert.Equal(t, string(domain.SubscriptionCanceled), st.subscriptions["sub_1"].Status)
		assert.Equal(t, string(domain.SubscriptionCanceled), st.sponsors["spn-1"].Status)
	})
}

func TestHandleUnrecognizedEvent(t *testing.T) {
	st := newFakeStore()
	r := sponsor.NewReconciler(st, newFakeProcessor())

	event, raw := makeEvent("evt_40", "charge.refunded", `{"id":"ch_1"}`)
	require.NoError(t, r.HandleEvent(context.Background(), event, raw))

	// Unrecognized events are acknowledged but not recorded as processed.
	assert.Empty(t, st.processed)
	assert.Empty(t, st.subscriptions)
}

func TestHandleEventRecordsIdempotency(t *testing.T) {
	st := newFakeStore()
	seedSponsor(st)
	seedSubscription(st, domain.SubscriptionActive)
	r := sponsor.NewReconciler(st, newFakeProcessor())

	event, raw := makeEvent("evt_50", webhook.EventTypeInvoiceFailed,
		`{"id":"in_9","customer":"cus_1","subscription":"sub_1"}`)
	require.NoError(t, r.HandleEvent(context.Background(), event, raw))

	record := st.processed["evt_50"]
	require.NotNil(t, record)
	assert.Equal(t, webhook.EventTypeInvoiceFailed, record.EventType)
	assert.NotEmpty(t, record.Payload)
}
