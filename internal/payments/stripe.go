// Package payments is a stateless wrapper around Stripe payment intents.
package payments

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

var ErrNotConfigured = errors.New("payments not configured")

type Client struct {
	configured bool
}

// New sets the global Stripe key. An empty key leaves the client
// unconfigured; CreateIntent then fails fast.
func New(apiKey string) *Client {
	if apiKey == "" {
		return &Client{}
	}
	stripe.Key = apiKey
	return &Client{configured: true}
}

// CreateIntent creates a payment intent and returns its client secret.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}
