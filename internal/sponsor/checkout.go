package sponsor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/triplegarycodes/vyral-test-sub000/internal/logger"
	"github.com/triplegarycodes/vyral-test-sub000/internal/payments"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store/schema"
)

// CheckoutConfig holds checkout service configuration.
type CheckoutConfig struct {
	SuccessURL string
	CancelURL  string
}

// CheckoutRequest carries the sponsor profile fields collected at checkout.
type CheckoutRequest struct {
	TierID      string
	CompanyName string
	ContactName string
}

// CheckoutResult is the hosted checkout handoff returned to the client.
type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// CheckoutService creates processor checkout sessions for sponsor tiers.
type CheckoutService struct {
	cfg       CheckoutConfig
	store     store.Store
	processor payments.Client
	tiers     *Tiers
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(cfg CheckoutConfig, st store.Store, processor payments.Client, tiers *Tiers) *CheckoutService {
	return &CheckoutService{cfg: cfg, store: st, processor: processor, tiers: tiers}
}

// CreateCheckout upserts the sponsor record, reuses or creates the processor
// customer by email lookup, and opens a checkout session for the tier. The
// sponsor stays pending until the completion webhook arrives.
func (s *CheckoutService) CreateCheckout(ctx context.Context, userID, email string, req CheckoutRequest) (*CheckoutResult, error) {
	tier, err := s.tiers.Lookup(req.TierID)
	if err != nil {
		return nil, err
	}

	sponsor := &schema.Sponsor{
		ID:            uuid.NewString(),
		UserID:        userID,
		Email:         email,
		CompanyName:   req.CompanyName,
		ContactName:   req.ContactName,
		PendingTierID: tier.ID,
	}
	if err := s.store.UpsertSponsor(ctx, sponsor); err != nil {
		return nil, err
	}

	customerID := sponsor.ExternalCustomerID
	if customerID == "" {
		customer, err := s.processor.FindCustomerByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to look up customer: %w", err)
		}
		if customer == nil {
			customer, err = s.processor.CreateCustomer(ctx, email, req.ContactName)
			if err != nil {
				return nil, fmt.Errorf("failed to create customer: %w", err)
			}
		}
		customerID = customer.ID

		sponsor.ExternalCustomerID = customerID
		if err := s.store.UpsertSponsor(ctx, sponsor); err != nil {
			return nil, err
		}
	}

	session, err := s.processor.CreateCheckoutSession(ctx, payments.CheckoutParams{
		CustomerID:        customerID,
		PriceID:           tier.PriceID,
		SuccessURL:        s.cfg.SuccessURL,
		CancelURL:         s.cfg.CancelURL,
		ClientReferenceID: sponsor.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	logger.InfoCtx(ctx, "Created sponsor checkout session",
		zap.String("sponsor_id", sponsor.ID),
		zap.String("tier_id", tier.ID),
		zap.String("session_id", session.ID),
	)

	return &CheckoutResult{CheckoutURL: session.URL, SessionID: session.ID}, nil
}
