package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/triplegarycodes/vyral-test-sub000/internal/api/shared/errors"
	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
	"github.com/triplegarycodes/vyral-test-sub000/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, apierrors.NewValidationError(message))
}

// respondInternalError responds with an internal server error and logs it
func respondInternalError(c *gin.Context, err error, message string) {
	logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError(message))
}

// respondDomainError maps known business rejections onto 4xx responses.
// Business rejections are expected outcomes, not server faults, so they are
// not logged as errors. Anything unrecognized falls through to a 500.
func respondDomainError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusConflict, apierrors.NewConflictError(
			apierrors.ErrCodeInsufficientFunds, "Insufficient funds", err.Error()))
	case errors.Is(err, domain.ErrAlreadyOwned):
		c.JSON(http.StatusConflict, apierrors.NewConflictError(
			apierrors.ErrCodeAlreadyOwned, "Item already owned", err.Error()))
	case errors.Is(err, domain.ErrPrestigeNotEligible):
		c.JSON(http.StatusConflict, apierrors.NewConflictError(
			apierrors.ErrCodeNotEligible, "Prestige threshold not reached", err.Error()))
	case errors.Is(err, domain.ErrUnknownTrack),
		errors.Is(err, domain.ErrUnknownItem),
		errors.Is(err, domain.ErrUnknownTier):
		respondNotFound(c, message, err.Error())
	case errors.Is(err, domain.ErrProfileNotFound):
		respondNotFound(c, "Profile not found", err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusBadGateway, apierrors.NewUpstreamError("Payment processor unavailable"))
	default:
		respondInternalError(c, err, message)
	}
}
