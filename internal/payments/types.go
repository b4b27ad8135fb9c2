package payments

// Customer is a payment-processor customer record.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CheckoutSession is a hosted checkout session created for a sponsor tier.
type CheckoutSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	CustomerID        string `json:"customer"`
	SubscriptionID    string `json:"subscription"`
	ClientReferenceID string `json:"client_reference_id"`
}

// Subscription is the processor-side subscription object. Status uses the
// processor's vocabulary; domain.MapExternalSubscriptionStatus translates it.
type Subscription struct {
	ID                 string `json:"id"`
	CustomerID         string `json:"customer"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
}

// Invoice is the processor-side invoice object attached to payment events.
type Invoice struct {
	ID             string `json:"id"`
	CustomerID     string `json:"customer"`
	SubscriptionID string `json:"subscription"`
	AmountPaid     int64  `json:"amount_paid"`
}

// CheckoutParams describes a checkout session to create.
type CheckoutParams struct {
	CustomerID        string
	PriceID           string
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
}

type customerListResponse struct {
	Data []Customer `json:"data"`
}
