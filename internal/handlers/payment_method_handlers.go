package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// PaymentMethodHandler handles payment method operations
type PaymentMethodHandler struct {
	common *CommonServices
}

// AttachPaymentMethodRequest is the body for attaching a payment method to a
// customer.
type AttachPaymentMethodRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
}

func NewPaymentMethodHandler(common *CommonServices) *PaymentMethodHandler {
	return &PaymentMethodHandler{common: common}
}

// GetPaymentMethod godoc
// @Summary Get payment method by ID
// @Tags payment-methods
// @Produce json
// @Param payment_method_id path string true "Payment method ID"
// @Success 200 {object} billing.PaymentMethod
// @Failure 404 {object} ErrorResponse
// @Router /payment_methods/{payment_method_id} [get]
func (h *PaymentMethodHandler) GetPaymentMethod(c *gin.Context) {
	paymentMethodID := c.Param("payment_method_id")

	paymentMethod, err := h.common.billing.GetPaymentMethod(c.Request.Context(), paymentMethodID)
	if err != nil {
		sendError(c, http.StatusNotFound, "Payment method not found", err)
		return
	}

	sendSuccess(c, http.StatusOK, paymentMethod)
}

// ListPaymentMethods godoc
// @Summary List payment methods for a customer
// @Tags payment-methods
// @Produce json
// @Param customer_id query string true "Customer ID"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} ListResponse{data=[]billing.PaymentMethod}
// @Failure 400 {object} ErrorResponse
// @Router /payment_methods [get]
func (h *PaymentMethodHandler) ListPaymentMethods(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}
	if params.CustomerID == "" {
		sendError(c, http.StatusBadRequest, "customer_id is required", nil)
		return
	}

	paymentMethods, hasMore, err := h.common.billing.ListPaymentMethods(c.Request.Context(), params)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to list payment methods", err)
		return
	}

	if paymentMethods == nil {
		paymentMethods = []billing.PaymentMethod{}
	}

	sendSuccess(c, http.StatusOK, ListResponse{Data: paymentMethods, HasMore: hasMore})
}

// AttachPaymentMethod godoc
// @Summary Attach payment method to a customer
// @Tags payment-methods
// @Accept json
// @Produce json
// @Param payment_method_id path string true "Payment method ID"
// @Param request body AttachPaymentMethodRequest true "Target customer"
// @Success 200 {object} billing.PaymentMethod
// @Failure 400 {object} ErrorResponse
// @Router /payment_methods/{payment_method_id}/attach [post]
func (h *PaymentMethodHandler) AttachPaymentMethod(c *gin.Context) {
	paymentMethodID := c.Param("payment_method_id")

	var req AttachPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	paymentMethod, err := h.common.billing.AttachPaymentMethod(c.Request.Context(), paymentMethodID, req.CustomerID)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to attach payment method", err)
		return
	}

	sendSuccess(c, http.StatusOK, paymentMethod)
}

// DetachPaymentMethod godoc
// @Summary Detach payment method from its customer
// @Tags payment-methods
// @Produce json
// @Param payment_method_id path string true "Payment method ID"
// @Success 200 {object} billing.PaymentMethod
// @Failure 502 {object} ErrorResponse
// @Router /payment_methods/{payment_method_id}/detach [post]
func (h *PaymentMethodHandler) DetachPaymentMethod(c *gin.Context) {
	paymentMethodID := c.Param("payment_method_id")

	paymentMethod, err := h.common.billing.DetachPaymentMethod(c.Request.Context(), paymentMethodID)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to detach payment method", err)
		return
	}

	sendSuccess(c, http.StatusOK, paymentMethod)
}
