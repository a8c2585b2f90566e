package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/payments"
)

type paymentIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// paymentIntentHandler mirrors the provider contract: 200 with a client
// secret, or 400 with {error:{message}}.
func paymentIntentHandler(pay *payments.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paymentIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			paymentError(c, "invalid request body")
			return
		}
		if req.Amount <= 0 || req.Currency == "" {
			paymentError(c, "amount and currency are required")
			return
		}

		secret, err := pay.CreateIntent(c.Request.Context(), req.Amount, req.Currency)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("create payment intent")
			paymentError(c, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
	}
}

func paymentError(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": msg}})
}
