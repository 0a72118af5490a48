// File: internal/payment/handler.go
package payment

import (
	"io"
	"net/http"

	"life_lesson_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe signs payloads well under this size; anything larger is junk.
const maxWebhookBodyBytes = 65536

// Handler struct holds dependencies for payment handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new payment handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for payment operations. The webhook
// stays outside the auth middleware; Stripe authenticates by signature.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	paymentGroup := router.Group("/payments")
	{
		paymentGroup.POST("/webhook", h.handleWebhook)

		authedPaymentGroup := paymentGroup.Group("")
		authedPaymentGroup.Use(authMW)
		{
			authedPaymentGroup.POST("/create-checkout-session", h.createCheckoutSession)
		}
	}
}

func (h *Handler) createCheckoutSession(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	url, err := h.service.CreateCheckoutSession(c.Request.Context(), identity)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Checkout session created.", gin.H{"url": url})
}

func (h *Handler) handleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("Failed to read webhook body", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Could not read request body."))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.service.ProcessWebhook(c.Request.Context(), payload, signature); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Webhook processed.", gin.H{"received": true})
}
