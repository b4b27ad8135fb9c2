package webhook

import "encoding/json"

// Event type constants for the payment processor's webhook vocabulary.
const (
	// EventTypeCheckoutCompleted is fired when a sponsor finishes checkout
	EventTypeCheckoutCompleted = "checkout.session.completed"

	// EventTypeInvoicePaid is fired on each successful recurring payment
	EventTypeInvoicePaid = "invoice.payment_succeeded"

	// EventTypeInvoiceFailed is fired when a recurring payment fails
	EventTypeInvoiceFailed = "invoice.payment_failed"

	// EventTypeSubscriptionUpdated is fired when the subscription object changes
	EventTypeSubscriptionUpdated = "customer.subscription.updated"

	// EventTypeSubscriptionDeleted is fired when the subscription is canceled upstream
	EventTypeSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is an inbound payment-processor webhook event. Delivery is
// at-least-once and may be out of order; the event ID is the dedup key.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt int64     `json:"created"`
	Data      EventData `json:"data"`
}

// EventData wraps the event-specific payload object.
type EventData struct {
	Object json.RawMessage `json:"object"`
}

// Recognized reports whether this event type drives a subscription state
// transition. Unrecognized events are acknowledged and ignored.
func (e *Event) Recognized() bool {
	switch e.Type {
	case EventTypeCheckoutCompleted,
		EventTypeInvoicePaid,
		EventTypeInvoiceFailed,
		EventTypeSubscriptionUpdated,
		EventTypeSubscriptionDeleted:
		return true
	default:
		return false
	}
}
