package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luminary-arts/memberhub/internal/stripe"
)

const signatureHeader = "stripe-signature"

// handleStripeWebhook answers 400 for signature problems, 500 for
// missing configuration or handler failure, and 200 otherwise. The
// provider retries any non-2xx response.
func (s *Server) handleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	err = s.webhooks.Process(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, stripe.ErrSecretMissing):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook secret not configured"})
	case errors.Is(err, stripe.ErrInvalidSignature),
		errors.Is(err, stripe.ErrInvalidPayload),
		errors.Is(err, stripe.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature or payload"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook handling failed"})
	}
}
