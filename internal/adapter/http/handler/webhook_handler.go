package handler

import (
	"checkout-gateway/internal/adapter/metrics"
	"checkout-gateway/internal/core/ports"
	"checkout-gateway/pkg/apperror"
	"checkout-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// HeaderWebhookSignature carries the provider's HMAC over the raw body.
const HeaderWebhookSignature = "X-CC-Webhook-Signature"

// WebhookHandler handles inbound provider notifications.
type WebhookHandler struct {
	processor ports.WebhookProcessor
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(processor ports.WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// Receive handles POST /api/webhook. The raw body is read before any JSON
// binding because the signature covers the exact bytes on the wire.
func (h *WebhookHandler) Receive(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	signature := c.GetHeader(HeaderWebhookSignature)

	if err := h.processor.Process(c.Request.Context(), rawBody, signature); err != nil {
		metrics.WebhooksTotal.WithLabelValues("rejected").Inc()
		response.Error(c, err)
		return
	}

	metrics.WebhooksTotal.WithLabelValues("accepted").Inc()
	response.OK(c, nil)
}
