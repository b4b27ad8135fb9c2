package sponsor_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/logger"
	"github.com/triplegarycodes/vyral-test-sub000/internal/payments"
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

// fakeStore is an in-memory Store covering the sponsor and webhook paths.
type fakeStore struct {
	sponsors      map[string]*schema.Sponsor             // by sponsor ID
	subscriptions map[string]*schema.SponsorSubscription // by external subscription ID
	processed     map[string]*schema.ProcessedWebhookEvent
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		sponsors:      make(map[string]*schema.Sponsor),
		subscriptions: make(map[string]*schema.SponsorSubscription),
		processed:     make(map[string]*schema.ProcessedWebhookEvent),
	}
}

func (f *fakeStore) GetProfile(_ context.Context, _ string) (*schema.PlayerProfile, error) {
	return nil, nil
}

func (f *fakeStore) CreateProfile(_ context.Context, _ *schema.PlayerProfile) error { return nil }

func (f *fakeStore) UpdateProfileCAS(_ context.Context, _ *schema.PlayerProfile) error { return nil }

func (f *fakeStore) PurchaseItem(_ context.Context, _ string, _ shop.Item) (*shop.PurchaseResult, error) {
	return nil, nil
}

func (f *fakeStore) ListOwnedItems(_ context.Context, _ string) (map[string]int, error) {
	return nil, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, _ string, _ int) ([]schema.CoinTransaction, error) {
	return nil, nil
}

func (f *fakeStore) UpsertSponsor(_ context.Context, sponsor *schema.Sponsor) error {
	for _, existing := range f.sponsors {
		if existing.UserID == sponsor.UserID {
			existing.Email = sponsor.Email
			existing.CompanyName = sponsor.CompanyName
			existing.ContactName = sponsor.ContactName
			existing.PendingTierID = sponsor.PendingTierID
			if sponsor.ExternalCustomerID != "" {
				existing.ExternalCustomerID = sponsor.ExternalCustomerID
			}
			*sponsor = *existing
			return nil
		}
	}
	clone := *sponsor
	if clone.Status == "" {
		clone.Status = string(domain.SubscriptionPending)
	}
	f.sponsors[clone.ID] = &clone
	*sponsor = clone
	return nil
}

func (f *fakeStore) GetSponsorByUserID(_ context.Context, userID string) (*schema.Sponsor, error) {
	for _, s := range f.sponsors {
		if s.UserID == userID {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetSponsorByID(_ context.Context, sponsorID string) (*schema.Sponsor, error) {
	s, ok := f.sponsors[sponsorID]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (f *fakeStore) GetSponsorByExternalCustomerID(_ context.Context, customerID string) (*schema.Sponsor, error) {
	for _, s := range f.sponsors {
		if s.ExternalCustomerID == customerID {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateSponsorStatus(_ context.Context, sponsorID string, status domain.SubscriptionStatus) error {
	if s, ok := f.sponsors[sponsorID]; ok {
		s.Status = string(status)
	}
	return nil
}

func (f *fakeStore) CreateSubscriptionIfAbsent(_ context.Context, sub *schema.SponsorSubscription) (bool, error) {
	if _, ok := f.subscriptions[sub.ExternalSubscriptionID]; ok {
		return false, nil
	}
	clone := *sub
	f.subscriptions[clone.ExternalSubscriptionID] = &clone
	return true, nil
}

func (f *fakeStore) GetSubscriptionByExternalID(_ context.Context, externalID string) (*schema.SponsorSubscription, error) {
	sub, ok := f.subscriptions[externalID]
	if !ok {
		return nil, nil
	}
	clone := *sub
	return &clone, nil
}

func (f *fakeStore) UpdateSubscriptionStatus(_ context.Context, externalID string, status domain.SubscriptionStatus) error {
	if sub, ok := f.subscriptions[externalID]; ok {
		sub.Status = string(status)
	}
	return nil
}

func (f *fakeStore) UpdateSubscriptionPeriod(_ context.Context, externalID string, start, end time.Time) error {
	if sub, ok := f.subscriptions[externalID]; ok {
		sub.CurrentPeriodStart = &start
		sub.CurrentPeriodEnd = &end
	}
	return nil
}

func (f *fakeStore) WasEventProcessed(_ context.Context, eventID string) (bool, error) {
	_, ok := f.processed[eventID]
	return ok, nil
}

func (f *fakeStore) MarkEventProcessed(_ context.Context, event *schema.ProcessedWebhookEvent) error {
	if _, ok := f.processed[event.EventID]; ok {
		return nil
	}
	f.processed[event.EventID] = event
	return nil
}

// fakeProcessor is an in-memory payments.Client.
type fakeProcessor struct {
	customers        map[string]*payments.Customer // by email
	subscriptions    map[string]*payments.Subscription
	createdCustomers int
	checkoutCalls    int
}

var _ payments.Client = (*fakeProcessor)(nil)

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{
		customers:     make(map[string]*payments.Customer),
		subscriptions: make(map[string]*payments.Subscription),
	}
}

func (f *fakeProcessor) FindCustomerByEmail(_ context.Context, email string) (*payments.Customer, error) {
	return f.customers[email], nil
}

func (f *fakeProcessor) CreateCustomer(_ context.Context, email, name string) (*payments.Customer, error) {
	f.createdCustomers++
	customer := &payments.Customer{
		ID:    "cus_" + email,
		Email: email,
		Name:  name,
	}
	f.customers[email] = customer
	return customer, nil
}

func (f *fakeProcessor) CreateCheckoutSession(_ context.Context, params payments.CheckoutParams) (*payments.CheckoutSession, error) {
	f.checkoutCalls++
	return &payments.CheckoutSession{
		ID:                "cs_test_1",
		URL:               "https://checkout.processor.test/cs_test_1",
		CustomerID:        params.CustomerID,
		ClientReferenceID: params.ClientReferenceID,
	}, nil
}

func (f *fakeProcessor) GetSubscription(_ context.Context, subscriptionID string) (*payments.Subscription, error) {
	sub, ok := f.subscriptions[subscriptionID]
	if !ok {
		return nil, domain.ErrUpstreamUnavailable
	}
	return sub, nil
}
