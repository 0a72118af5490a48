// File: internal/payment/service.go
package payment

import (
	"context"
	"encoding/json"
	"time"

	"life_lesson_backend/internal/common"
	"life_lesson_backend/internal/config"
	"life_lesson_backend/internal/user"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// Accounts is the slice of the user service the payment flow needs.
// Satisfied by *user.ServiceImplementation.
type Accounts interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GrantPremium(ctx context.Context, userID string) error
}

// CheckoutCreator creates a hosted checkout session and returns its URL.
type CheckoutCreator interface {
	CreateSession(ctx context.Context, customerEmail, userID string) (string, error)
}

// Service defines payment business logic operations.
type Service interface {
	CreateCheckoutSession(ctx context.Context, caller common.Identity) (string, error)
	ProcessWebhook(ctx context.Context, payload []byte, signature string) error
}

// ServiceImplementation implements the payment Service interface.
type ServiceImplementation struct {
	checkout        CheckoutCreator
	accounts        Accounts
	webhookSecret   string
	checkoutTimeout time.Duration
	logger          *zap.Logger
}

// NewService creates a new payment service.
func NewService(checkout CheckoutCreator, accounts Accounts, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		checkout:        checkout,
		accounts:        accounts,
		webhookSecret:   cfg.StripeWebhookSecret,
		checkoutTimeout: cfg.CheckoutTimeout,
		logger:          logger,
	}
}

// CreateCheckoutSession starts a one-time payment session for the caller.
// The caller must already have an account; the account ID travels in the
// session metadata so the webhook can find it later.
func (s *ServiceImplementation) CreateCheckoutSession(ctx context.Context, caller common.Identity) (string, error) {
	u, err := s.accounts.GetByEmail(ctx, caller.Email)
	if err != nil {
		return "", err
	}
	if u.IsPremium {
		return "", common.ErrConflict.WithDetails("Account already has premium access.")
	}

	ctx, cancel := context.WithTimeout(ctx, s.checkoutTimeout)
	defer cancel()

	url, err := s.checkout.CreateSession(ctx, u.Email, u.ID.Hex())
	if err != nil {
		s.logger.Error("Failed to create checkout session", zap.String("email", caller.Email), zap.Error(err))
		return "", common.ErrInternalServer.WithDetails("Could not start checkout.")
	}

	s.logger.Info("Checkout session created", zap.String("email", caller.Email))
	return url, nil
}

// ProcessWebhook verifies the event signature and activates premium on a
// completed checkout. Unrecognized event types are acknowledged and ignored.
func (s *ServiceImplementation) ProcessWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return common.ErrBadRequest.WithDetails("Invalid webhook signature.")
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		s.logger.Debug("Ignoring webhook event", zap.String("type", string(event.Type)))
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.logger.Error("Failed to decode checkout session from webhook", zap.Error(err))
		return common.ErrBadRequest.WithDetails("Malformed event payload.")
	}

	userID := session.Metadata["userId"]
	if userID == "" {
		s.logger.Error("Webhook checkout session missing userId metadata", zap.String("session_id", session.ID))
		return common.ErrBadRequest.WithDetails("Session metadata missing user reference.")
	}

	if err := s.accounts.GrantPremium(ctx, userID); err != nil {
		s.logger.Error("Failed to grant premium from webhook", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	s.logger.Info("Premium activated via webhook", zap.String("user_id", userID))
	return nil
}
