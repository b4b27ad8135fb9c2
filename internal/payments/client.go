// Package payments wraps the external payment processor's REST API. All calls
// carry request timeouts; reads retry with a bounded backoff budget, writes do
// not (they are not provably idempotent and failures surface to the caller).
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
)

// Client defines the processor operations the sponsor portal needs.
type Client interface {
	// FindCustomerByEmail returns the first customer with the given email, or nil
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	// CreateCustomer creates a new customer
	CreateCustomer(ctx context.Context, email, name string) (*Customer, error)
	// CreateCheckoutSession creates a hosted checkout session for a subscription
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	// GetSubscription fetches the current subscription object
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
}

// Config holds processor client configuration.
type Config struct {
	BaseURL        string
	SecretKey      string
	RequestTimeout time.Duration
	RetryBudget    time.Duration
}

type httpClient struct {
	cfg  Config
	http *http.Client
}

// NewClient creates an HTTP-backed processor client.
func NewClient(cfg Config) Client {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.RetryBudget == 0 {
		cfg.RetryBudget = 30 * time.Second
	}
	return &httpClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

func (c *httpClient) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	query := url.Values{}
	query.Set("email", email)
	query.Set("limit", "1")

	body, err := c.getWithRetry(ctx, "/v1/customers?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var resp customerListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer list: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

func (c *httpClient) CreateCustomer(ctx context.Context, email, name string) (*Customer, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)

	body, err := c.post(ctx, "/v1/customers", form)
	if err != nil {
		return nil, err
	}

	var customer Customer
	if err := json.Unmarshal(body, &customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	return &customer, nil
}

func (c *httpClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer", params.CustomerID)
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("client_reference_id", params.ClientReferenceID)

	body, err := c.post(ctx, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	return &session, nil
}

func (c *httpClient) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	body, err := c.getWithRetry(ctx, "/v1/subscriptions/"+subscriptionID)
	if err != nil {
		return nil, err
	}

	var sub Subscription
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription: %w", err)
	}
	return &sub, nil
}

// getWithRetry performs a GET with exponential backoff. Reads are idempotent,
// so transient 5xx and transport errors retry until the budget is exhausted.
func (c *httpClient) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = c.cfg.RetryBudget
	b.RandomizationFactor = 0.5 // Add jitter

	var body []byte
	operation := func() error {
		var err error
		body, err = c.do(ctx, http.MethodGet, path, nil)
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// post performs a single non-retried form POST. Create calls are not provably
// idempotent, so a failure is surfaced instead of blindly retried.
func (c *httpClient) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
}

func (c *httpClient) do(ctx context.Context, method, path string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build processor request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: processor returned %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		// Client errors are permanent; do not let the backoff retry them.
		return nil, backoff.Permanent(fmt.Errorf("processor returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	return body, nil
}
