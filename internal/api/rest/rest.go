package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/triplegarycodes/vyral-test-sub000/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Progression endpoints (require user authentication)
		v1.GET("/progress", middleware.Auth(authCfg), handler.GetProgress)
		v1.POST("/progress/events", middleware.Auth(authCfg), handler.ApplyEvent)

		// Shop endpoints
		v1.GET("/shop/items", handler.ListShopItems)
		v1.POST("/shop/purchase", middleware.Auth(authCfg), handler.PurchaseItem)

		// Feed boost endpoint (public read access)
		v1.GET("/feed/boost", handler.GetBoost)

		// Sponsor endpoints
		v1.GET("/sponsors/tiers", handler.ListSponsorTiers)
		v1.POST("/sponsors/checkout", middleware.Auth(authCfg), handler.CreateSponsorCheckout)

		// Payment processor webhook (authenticated by HMAC signature, not bearer token)
		v1.POST("/webhooks/payment", handler.PaymentWebhook)

		// Support tooling (requires service API key, not a user token)
		admin := v1.Group("/admin", middleware.APIKeyAuth(authCfg))
		{
			admin.GET("/players/:user_id/transactions", handler.ListUserTransactions)
		}
	}
}
