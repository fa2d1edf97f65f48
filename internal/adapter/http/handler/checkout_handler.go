package handler

import (
	"checkout-gateway/internal/adapter/http/dto"
	"checkout-gateway/internal/adapter/metrics"
	"checkout-gateway/internal/core/ports"
	"checkout-gateway/pkg/apperror"
	"checkout-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles the checkout endpoint.
type CheckoutHandler struct {
	checkoutSvc ports.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutSvc ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutSvc: checkoutSvc}
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.checkoutSvc.Checkout(c.Request.Context(), ports.CheckoutInput{
		Amount: req.Amount,
		Email:  req.Email,
	})
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		response.Error(c, err)
		return
	}

	metrics.CheckoutsTotal.WithLabelValues("created").Inc()
	amount, _ := req.Amount.Float64()
	metrics.CheckoutAmount.Observe(amount)

	response.OK(c, dto.CheckoutResponse{
		PaymentURL: result.PaymentURL,
		CheckoutID: result.CheckoutID.String(),
		ExpiresAt:  result.ExpiresAt,
	})
}
