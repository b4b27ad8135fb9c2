package sponsor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/logger"
	"github.com/triplegarycodes/vyral-test-sub000/internal/payments"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store/schema"
	"github.com/triplegarycodes/vyral-test-sub000/internal/webhook"
)

// Reconciler applies payment-processor webhook events to sponsor
// subscriptions. Delivery is at-least-once and unordered: every handler is
// idempotent per event ID, and events referencing state that has not arrived
// yet degrade to safe no-ops or recreate the missing record.
type Reconciler struct {
	store     store.Store
	processor payments.Client
}

// NewReconciler creates a webhook reconciler.
func NewReconciler(st store.Store, processor payments.Client) *Reconciler {
	return &Reconciler{store: st, processor: processor}
}

// HandleEvent reconciles one verified webhook event. A nil return means the
// event was processed or intentionally ignored and should be acknowledged; an
// error means a retryable internal failure and the processor should redeliver.
func (r *Reconciler) HandleEvent(ctx context.Context, event *webhook.Event, raw []byte) error {
	if !event.Recognized() {
		logger.InfoCtx(ctx, "Ignoring unrecognized webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		return nil
	}

	seen, err := r.store.WasEventProcessed(ctx, event.ID)
	if err != nil {
		return err
	}
	if seen {
		logger.InfoCtx(ctx, "Skipping already-processed webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		return nil
	}

	switch event.Type {
	case webhook.EventTypeCheckoutCompleted:
		err = r.handleCheckoutCompleted(ctx, event)
	case webhook.EventTypeInvoicePaid:
		err = r.handleInvoicePaid(ctx, event)
	case webhook.EventTypeInvoiceFailed:
		err = r.handleInvoiceFailed(ctx, event)
	case webhook.EventTypeSubscriptionUpdated:
		err = r.handleSubscriptionUpdated(ctx, event)
	case webhook.EventTypeSubscriptionDeleted:
		err = r.handleSubscriptionDeleted(ctx, event)
	}
	if err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		return err
	}

	return r.store.MarkEventProcessed(ctx, &schema.ProcessedWebhookEvent{
		EventID:     event.ID,
		EventType:   event.Type,
		Payload:     datatypes.JSON(raw),
		ProcessedAt: time.Now(),
	})
}

// handleCheckoutCompleted creates the subscription record keyed by the
// external subscription ID and activates the sponsor. The checkout session's
// client reference carries the sponsor ID set at checkout creation.
func (r *Reconciler) handleCheckoutCompleted(ctx context.Context, event *webhook.Event) error {
	var session payments.CheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}
	if session.SubscriptionID == "" || session.ClientReferenceID == "" {
		logger.WarnCtx(ctx, "Checkout session missing subscription or sponsor reference",
			zap.String("event_id", event.ID),
			zap.String("session_id", session.ID),
		)
		return nil
	}

	sponsor, err := r.store.GetSponsorByID(ctx, session.ClientReferenceID)
	if err != nil {
		return err
	}
	if sponsor == nil {
		logger.WarnCtx(ctx, "Checkout completed for unknown sponsor",
			zap.String("event_id", event.ID),
			zap.String("sponsor_id", session.ClientReferenceID),
		)
		return nil
	}

	created, err := r.store.CreateSubscriptionIfAbsent(ctx, &schema.SponsorSubscription{
		SponsorID:              sponsor.ID,
		TierID:                 sponsor.PendingTierID,
		ExternalSubscriptionID: session.SubscriptionID,
		Status:                 string(domain.SubscriptionActive),
	})
	if err != nil {
		return err
	}
	if !created {
		logger.InfoCtx(ctx, "Subscription already exists, checkout replay",
			zap.String("external_subscription_id", session.SubscriptionID),
		)
	}

	return r.store.UpdateSponsorStatus(ctx, sponsor.ID, domain.SubscriptionActive)
}

// handleInvoicePaid refreshes the billing window and status from the external
// subscription object. Delivery order is not guaranteed, so the status comes
// from the processor's current view rather than being assumed active: a paid
// invoice arriving after a cancellation must not resurrect the subscription.
// Re-applying the same period is a no-op.
func (r *Reconciler) handleInvoicePaid(ctx context.Context, event *webhook.Event) error {
	var invoice payments.Invoice
	if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.SubscriptionID == "" {
		return nil
	}

	external, err := r.processor.GetSubscription(ctx, invoice.SubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription %s: %w", invoice.SubscriptionID, err)
	}
	status := domain.MapExternalSubscriptionStatus(external.Status)

	sub, err := r.store.GetSubscriptionByExternalID(ctx, invoice.SubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		// Invoice arrived before the checkout completion event. Recreate the
		// record from the sponsor looked up by processor customer.
		sponsor, err := r.store.GetSponsorByExternalCustomerID(ctx, invoice.CustomerID)
		if err != nil {
			return err
		}
		if sponsor == nil {
			logger.WarnCtx(ctx, "Invoice for unknown subscription and customer",
				zap.String("event_id", event.ID),
				zap.String("external_subscription_id", invoice.SubscriptionID),
			)
			return nil
		}
		if _, err := r.store.CreateSubscriptionIfAbsent(ctx, &schema.SponsorSubscription{
			SponsorID:              sponsor.ID,
			TierID:                 sponsor.PendingTierID,
			ExternalSubscriptionID: invoice.SubscriptionID,
			Status:                 string(status),
		}); err != nil {
			return err
		}
	}

	if err := r.store.UpdateSubscriptionStatus(ctx, invoice.SubscriptionID, status); err != nil {
		return err
	}
	return r.store.UpdateSubscriptionPeriod(ctx, invoice.SubscriptionID,
		time.Unix(external.CurrentPeriodStart, 0).UTC(),
		time.Unix(external.CurrentPeriodEnd, 0).UTC(),
	)
}

// handleInvoiceFailed marks the subscription past due. Canceled is terminal: a
// failure notice straggling in after a cancellation changes nothing.
func (r *Reconciler) handleInvoiceFailed(ctx context.Context, event *webhook.Event) error {
	var invoice payments.Invoice
	if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.SubscriptionID == "" {
		return nil
	}

	sub, err := r.store.GetSubscriptionByExternalID(ctx, invoice.SubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil || sub.Status == string(domain.SubscriptionCanceled) {
		return nil
	}
	return r.store.UpdateSubscriptionStatus(ctx, invoice.SubscriptionID, domain.SubscriptionPastDue)
}

// handleSubscriptionUpdated maps the processor's status vocabulary onto ours
// and refreshes the billing window. Unknown external statuses map to paused.
func (r *Reconciler) handleSubscriptionUpdated(ctx context.Context, event *webhook.Event) error {
	var external payments.Subscription
	if err := json.Unmarshal(event.Data.Object, &external); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	status := domain.MapExternalSubscriptionStatus(external.Status)
	if err := r.store.UpdateSubscriptionStatus(ctx, external.ID, status); err != nil {
		return err
	}
	if external.CurrentPeriodStart == 0 || external.CurrentPeriodEnd == 0 {
		return nil
	}
	return r.store.UpdateSubscriptionPeriod(ctx, external.ID,
		time.Unix(external.CurrentPeriodStart, 0).UTC(),
		time.Unix(external.CurrentPeriodEnd, 0).UTC(),
	)
}

// handleSubscriptionDeleted cancels the subscription and cascades the
// cancellation to the parent sponsor.
func (r *Reconciler) handleSubscriptionDeleted(ctx context.Context, event *webhook.Event) error {
	var external payments.Subscription
	if err := json.Unmarshal(event.Data.Object, &external); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	if err := r.store.UpdateSubscriptionStatus(ctx, external.ID, domain.SubscriptionCanceled); err != nil {
		return err
	}

	sub, err := r.store.GetSubscriptionByExternalID(ctx, external.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}
	return r.store.UpdateSponsorStatus(ctx, sub.SponsorID, domain.SubscriptionCanceled)
}
