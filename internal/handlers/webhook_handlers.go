package handlers

import (
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
	"github.com/payrelay/payrelay-api/internal/interfaces"
	"github.com/payrelay/payrelay-api/internal/logger"
)

// SignatureHeader is the header carrying the platform's webhook signature.
const SignatureHeader = "Stripe-Signature"

// WebhookHandler receives platform webhook events. Verification happens
// against the exact raw request bytes; any body rewriting upstream breaks
// the signature, so this route must stay free of body-consuming middleware.
type WebhookHandler struct {
	common     *CommonServices
	dispatcher interfaces.EventDispatcher
}

func NewWebhookHandler(common *CommonServices, dispatcher interfaces.EventDispatcher) *WebhookHandler {
	return &WebhookHandler{
		common:     common,
		dispatcher: dispatcher,
	}
}

// HandleWebhook godoc
// @Summary Receive a platform webhook event
// @Description Verifies the event signature and queues it for processing
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Signature header"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse "Signature verification failed"
// @Failure 503 {object} ErrorResponse "Webhook verification not configured"
// @Router /webhook [post]
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		sendError(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	event, err := h.common.billing.VerifyWebhook(rawBody, c.GetHeader(SignatureHeader))
	if err != nil {
		if billing.IsConfigError(err) {
			// Fail closed: without a signing secret no event can be trusted,
			// and a 5xx tells the platform to retry once we are configured.
			sendError(c, http.StatusServiceUnavailable, "Webhook verification is not configured", err)
			return
		}
		sendError(c, http.StatusBadRequest, "Webhook signature verification failed", err)
		return
	}

	logger.Info("Webhook event verified",
		zap.String("event_id", event.ProviderEventID),
		zap.String("event_type", event.Type),
		zap.String("provider", event.Provider))

	if gin.Mode() == gin.DebugMode {
		logger.Debug("Webhook event object", zap.String("object", spew.Sdump(event.Object)))
	}

	if err := h.dispatcher.Submit(event); err != nil {
		// Still acknowledge: the platform redelivers unacked events, and a
		// full queue is our problem, not a malformed delivery.
		logger.Error("Failed to queue webhook event",
			zap.Error(err),
			zap.String("event_id", event.ProviderEventID),
			zap.String("event_type", event.Type))
	}

	sendSuccess(c, http.StatusOK, gin.H{"received": true})
}
