package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/pkg/payment/stripe"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookVerifier authenticates a raw webhook body against its signature header.
type WebhookVerifier interface {
	ConstructEvent(payload []byte, signatureHeader string) (*stripe.Event, error)
}

type WebhookController struct {
	orderService service.OrderService
	verifier     WebhookVerifier
}

// NewWebhookController accepts a nil verifier when no signing secret is configured.
func NewWebhookController(orderService service.OrderService, verifier WebhookVerifier) *WebhookController {
	return &WebhookController{
		orderService: orderService,
		verifier:     verifier,
	}
}

// HandleStripe verifies and applies a Stripe event. Once the signature is
// valid the event is always acknowledged; processing errors are only logged.
// POST /api/v1/webhooks/stripe
func (ctrl *WebhookController) HandleStripe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.verifier == nil {
		log.Warn("Stripe webhook received without a configured secret", nil)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		errors.BadRequest(c, errors.WebhookPayloadInvalid, "unreadable body")
		return
	}

	event, err := ctrl.verifier.ConstructEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Warn("Rejected webhook with invalid signature", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.WebhookSignatureInvalid, "invalid signature")
		return
	}

	order, err := ctrl.orderService.HandlePaymentEvent(c.Request.Context(), event)
	if err != nil {
		log.Error("Failed to process payment event", err, map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		})
	} else if order != nil {
		log.Info("Payment event produced order", map[string]interface{}{
			"event_id": event.ID,
			"order_id": order.ID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
