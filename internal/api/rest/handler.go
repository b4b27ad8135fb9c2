package rest

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/triplegarycodes/vyral-test-sub000/internal/api/middleware"
	"github.com/triplegarycodes/vyral-test-sub000/internal/api/shared/dto"
	apierrors "github.com/triplegarycodes/vyral-test-sub000/internal/api/shared/errors"
	"github.com/triplegarycodes/vyral-test-sub000/internal/content"
	"github.com/triplegarycodes/vyral-test-sub000/internal/economy"
	"github.com/triplegarycodes/vyral-test-sub000/internal/logger"
	"github.com/triplegarycodes/vyral-test-sub000/internal/progression"
	"github.com/triplegarycodes/vyral-test-sub000/internal/session"
	"github.com/triplegarycodes/vyral-test-sub000/internal/shop"
	"github.com/triplegarycodes/vyral-test-sub000/internal/sponsor"
	"github.com/triplegarycodes/vyral-test-sub000/internal/store"
	"github.com/triplegarycodes/vyral-test-sub000/internal/webhook"
)

// maxWebhookBodySize bounds webhook payload reads.
const maxWebhookBodySize = 1 << 20 // 1MB

// Handler defines the interface for REST API handlers
type Handler interface {
	// GetProgress returns the authenticated player's progression snapshot
	// GET /api/v1/progress
	GetProgress(c *gin.Context)

	// ApplyEvent applies one economy event for the authenticated player
	// POST /api/v1/progress/events
	ApplyEvent(c *gin.Context)

	// PurchaseItem buys a shop item with VybeCoins
	// POST /api/v1/shop/purchase
	PurchaseItem(c *gin.Context)

	// ListShopItems returns the shop catalog
	// GET /api/v1/shop/items
	ListShopItems(c *gin.Context)

	// GetBoost returns one feed boost line
	// GET /api/v1/feed/boost?category=<category>
	GetBoost(c *gin.Context)

	// CreateSponsorCheckout opens a hosted checkout session for a sponsor tier
	// POST /api/v1/sponsors/checkout
	CreateSponsorCheckout(c *gin.Context)

	// ListSponsorTiers returns the sponsorship tiers
	// GET /api/v1/sponsors/tiers
	ListSponsorTiers(c *gin.Context)

	// ListUserTransactions returns a player's recent wallet ledger entries
	// for support tooling
	// GET /api/v1/admin/players/:user_id/transactions
	ListUserTransactions(c *gin.Context)

	// PaymentWebhook receives signed payment processor events
	// POST /api/v1/webhooks/payment
	PaymentWebhook(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	sessions         *session.Manager
	engine           *economy.Engine
	dataStore        store.Store
	catalog          *shop.Catalog
	generator        content.Generator
	checkout         *sponsor.CheckoutService
	tiers            *sponsor.Tiers
	reconciler       *sponsor.Reconciler
	webhookSecret    string
	webhookTolerance time.Duration
}

// NewHandler creates a new REST API handler
func NewHandler(
	sessions *session.Manager,
	engine *economy.Engine,
	dataStore store.Store,
	catalog *shop.Catalog,
	generator content.Generator,
	checkout *sponsor.CheckoutService,
	tiers *sponsor.Tiers,
	reconciler *sponsor.Reconciler,
	webhookSecret string,
	webhookTolerance time.Duration,
) Handler {
	return &handler{
		sessions:         sessions,
		engine:           engine,
		dataStore:        dataStore,
		catalog:          catalog,
		generator:        generator,
		checkout:         checkout,
		tiers:            tiers,
		reconciler:       reconciler,
		webhookSecret:    webhookSecret,
		webhookTolerance: webhookTolerance,
	}
}

// GetProgress returns the authenticated player's progression snapshot
func (h *handler) GetProgress(c *gin.Context) {
	userID := middleware.AuthSubject(c)

	state, err := h.sessions.GetState(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, err, "Failed to load progress")
		return
	}

	c.JSON(http.StatusOK, h.progressResponse(state))
}

// ApplyEvent applies one economy event for the authenticated player
func (h *handler) ApplyEvent(c *gin.Context) {
	userID := middleware.AuthSubject(c)

	var req dto.ApplyEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	state, outcome, err := h.sessions.ApplyEvent(c.Request.Context(), userID, req.ToEvent())
	if err != nil {
		respondDomainError(c, err, "Failed to apply event")
		return
	}

	c.JSON(http.StatusOK, dto.EventResponse{State: state, Outcome: outcome})
}

// PurchaseItem buys a shop item with VybeCoins
func (h *handler) PurchaseItem(c *gin.Context) {
	userID := middleware.AuthSubject(c)

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	item, err := h.catalog.Lookup(req.ItemID)
	if err != nil {
		respondDomainError(c, err, "Unknown item")
		return
	}

	result, err := h.sessions.PurchaseItem(c.Request.Context(), userID, item)
	if err != nil {
		respondDomainError(c, err, "Failed to purchase item")
		return
	}

	c.JSON(http.StatusOK, dto.PurchaseResponse{
		Coins: result.Wallet.Coins,
		Owned: result.Owned,
		Entry: result.Entry,
	})
}

// ListShopItems returns the shop catalog
func (h *handler) ListShopItems(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CatalogResponse{Items: h.catalog.Items()})
}

// GetBoost returns one feed boost line
func (h *handler) GetBoost(c *gin.Context) {
	category := content.Category(c.DefaultQuery("category", string(content.CategoryHype)))

	line, err := h.generator.Generate(c.Request.Context(), category)
	if err != nil {
		respondBadRequest(c, "Unknown content category", err.Error())
		return
	}

	c.JSON(http.StatusOK, dto.BoostResponse{Category: string(category), Line: line})
}

// CreateSponsorCheckout opens a hosted checkout session for a sponsor tier
func (h *handler) CreateSponsorCheckout(c *gin.Context) {
	userID := middleware.AuthSubject(c)
	email := middleware.AuthEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError(
			"Authentication failed", "token has no email claim"))
		return
	}

	var req dto.SponsorCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.checkout.CreateCheckout(c.Request.Context(), userID, email, sponsor.CheckoutRequest{
		TierID:      req.TierID,
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
	})
	if err != nil {
		respondDomainError(c, err, "Failed to create checkout")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListSponsorTiers returns the sponsorship tiers
func (h *handler) ListSponsorTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tiers": h.tiers.List()})
}

// ListUserTransactions returns a player's recent wallet ledger entries. This
// is the support surface, guarded by API key rather than a user token.
func (h *handler) ListUserTransactions(c *gin.Context) {
	userID := c.Param("user_id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		respondValidationError(c, "limit must be an integer between 1 and 500")
		return
	}

	txs, err := h.dataStore.ListTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		respondInternalError(c, err, "Failed to list transactions")
		return
	}

	entries := make([]dto.TransactionEntry, 0, len(txs))
	for _, tx := range txs {
		entries = append(entries, dto.TransactionEntry{
			ID:        tx.ID,
			ItemID:    tx.ItemID,
			Amount:    tx.Amount,
			Reason:    tx.Reason,
			CreatedAt: tx.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, dto.TransactionsResponse{UserID: userID, Transactions: entries})
}

// PaymentWebhook receives signed payment processor events. Signature failures
// are rejected with 400; reconciliation failures return 500 so the processor
// redelivers.
func (h *handler) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize))
	if err != nil {
		respondBadRequest(c, "Failed to read request body")
		return
	}

	header := c.GetHeader(webhook.SignatureHeader)
	if err := webhook.VerifySignature(payload, header, h.webhookSecret, time.Now(), h.webhookTolerance); err != nil {
		logger.WarnCtx(c.Request.Context(), "Rejected webhook with invalid signature",
			zap.Error(err),
			zap.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusBadRequest, &apierrors.APIError{
			Code:    apierrors.ErrCodeSignatureInvalid,
			Message: "Invalid webhook signature",
		})
		return
	}

	event, err := webhook.ParseEvent(payload)
	if err != nil {
		respondBadRequest(c, "Malformed webhook payload", err.Error())
		return
	}

	if err := h.reconciler.HandleEvent(c.Request.Context(), event, payload); err != nil {
		respondInternalError(c, err, "Failed to process webhook event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "vyral-api",
	})
}

func (h *handler) progressResponse(state economy.State) dto.ProgressResponse {
	return dto.ProgressResponse{
		State:            state,
		NextLevelXP:      progression.XPRequiredForLevel(state.Level+1, h.engine.Constants()),
		PrestigeEligible: h.engine.PrestigeEligible(state),
	}
}
