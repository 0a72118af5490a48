// File: internal/payment/stripe.go
package payment

import (
	"context"
	"fmt"

	"life_lesson_backend/internal/config"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"go.uber.org/zap"
)

// Lifetime premium is a single fixed-price purchase.
const (
	premiumUnitAmount  = 1500 * 100
	premiumProductName = "Lifetime Premium Access"
	premiumProductDesc = "Get unlimited premium lessons forever."
)

type stripeCheckoutCreator struct {
	siteDomain string
	logger     *zap.Logger
}

// NewStripeCheckoutCreator configures the Stripe client and returns a
// CheckoutCreator backed by Stripe Checkout.
func NewStripeCheckoutCreator(cfg *config.Config, logger *zap.Logger) CheckoutCreator {
	stripe.Key = cfg.StripeSecretKey
	return &stripeCheckoutCreator{
		siteDomain: cfg.SiteDomain,
		logger:     logger,
	}
}

func (c *stripeCheckoutCreator) CreateSession(ctx context.Context, customerEmail, userID string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(customerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyBDT)),
					UnitAmount: stripe.Int64(premiumUnitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(premiumProductName),
						Description: stripe.String(premiumProductDesc),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.siteDomain + "/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(c.siteDomain + "/dashboard/payment-cancelled"),
	}
	params.Context = ctx
	params.AddMetadata("userId", userID)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("creating stripe checkout session: %w", err)
	}
	return sess.URL, nil
}
