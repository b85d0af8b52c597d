package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// SubscriptionHandler handles subscription-related operations
type SubscriptionHandler struct {
	common *CommonServices
}

// SubscriptionItemRequest is a priced item within a subscription request.
type SubscriptionItemRequest struct {
	PriceID  string `json:"price_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// CreateSubscriptionRequest is the body for creating a subscription.
type CreateSubscriptionRequest struct {
	CustomerID             string                    `json:"customer_id" binding:"required"`
	Items                  []SubscriptionItemRequest `json:"items" binding:"required,min=1,dive"`
	TrialEnd               int64                     `json:"trial_end"`
	DefaultPaymentMethodID string                    `json:"default_payment_method"`
	CancelAtPeriodEnd      bool                      `json:"cancel_at_period_end"`
	Metadata               map[string]string         `json:"metadata"`
}

// UpdateSubscriptionRequest is the body for updating a subscription.
type UpdateSubscriptionRequest struct {
	Items                  []SubscriptionItemRequest `json:"items" binding:"omitempty,dive"`
	DefaultPaymentMethodID string                    `json:"default_payment_method"`
	CancelAtPeriodEnd      *bool                     `json:"cancel_at_period_end"`
	Metadata               map[string]string         `json:"metadata"`
}

// CancelSubscriptionRequest is the optional body for canceling a
// subscription. When at_period_end is true the subscription stays active
// until the current period closes.
type CancelSubscriptionRequest struct {
	AtPeriodEnd bool `json:"at_period_end"`
}

func NewSubscriptionHandler(common *CommonServices) *SubscriptionHandler {
	return &SubscriptionHandler{common: common}
}

func toSubscriptionItems(items []SubscriptionItemRequest) []billing.SubscriptionItem {
	out := make([]billing.SubscriptionItem, 0, len(items))
	for _, item := range items {
		out = append(out, billing.SubscriptionItem{
			PriceID:  item.PriceID,
			Quantity: item.Quantity,
		})
	}
	return out
}

// CreateSubscription godoc
// @Summary Create subscription
// @Description Creates a subscription for a customer on the payment platform
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body CreateSubscriptionRequest true "Subscription details"
// @Success 201 {object} billing.Subscription
// @Failure 400 {object} ErrorResponse
// @Router /subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	subscription, err := h.common.billing.CreateSubscription(c.Request.Context(), billing.Subscription{
		CustomerID:             req.CustomerID,
		Items:                  toSubscriptionItems(req.Items),
		TrialEndDate:           req.TrialEnd,
		DefaultPaymentMethodID: req.DefaultPaymentMethodID,
		CancelAtPeriodEnd:      req.CancelAtPeriodEnd,
		Metadata:               req.Metadata,
	})
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to create subscription", err)
		return
	}

	sendSuccess(c, http.StatusCreated, subscription)
}

// GetSubscription godoc
// @Summary Get subscription by ID
// @Tags subscriptions
// @Produce json
// @Param subscription_id path string true "Subscription ID"
// @Success 200 {object} billing.Subscription
// @Failure 404 {object} ErrorResponse
// @Router /subscriptions/{subscription_id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	subscriptionID := c.Param("subscription_id")

	subscription, err := h.common.billing.GetSubscription(c.Request.Context(), subscriptionID)
	if err != nil {
		sendError(c, http.StatusNotFound, "Subscription not found", err)
		return
	}

	sendSuccess(c, http.StatusOK, subscription)
}

// UpdateSubscription godoc
// @Summary Update subscription
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param subscription_id path string true "Subscription ID"
// @Param request body UpdateSubscriptionRequest true "Fields to update"
// @Success 200 {object} billing.Subscription
// @Failure 400 {object} ErrorResponse
// @Router /subscriptions/{subscription_id} [put]
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	subscriptionID := c.Param("subscription_id")

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	update := billing.Subscription{
		Items:                  toSubscriptionItems(req.Items),
		DefaultPaymentMethodID: req.DefaultPaymentMethodID,
		Metadata:               req.Metadata,
	}
	if req.CancelAtPeriodEnd != nil {
		update.CancelAtPeriodEnd = *req.CancelAtPeriodEnd
	}

	subscription, err := h.common.billing.UpdateSubscription(c.Request.Context(), subscriptionID, update)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to update subscription", err)
		return
	}

	sendSuccess(c, http.StatusOK, subscription)
}

// CancelSubscription godoc
// @Summary Cancel subscription
// @Description Cancels immediately, or at period end when requested
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param subscription_id path string true "Subscription ID"
// @Param request body CancelSubscriptionRequest false "Cancellation options"
// @Success 200 {object} billing.Subscription
// @Failure 502 {object} ErrorResponse
// @Router /subscriptions/{subscription_id} [delete]
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	subscriptionID := c.Param("subscription_id")

	var req CancelSubscriptionRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			sendError(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	subscription, err := h.common.billing.CancelSubscription(c.Request.Context(), subscriptionID, req.AtPeriodEnd)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to cancel subscription", err)
		return
	}

	sendSuccess(c, http.StatusOK, subscription)
}

// ListSubscriptions godoc
// @Summary List subscriptions
// @Tags subscriptions
// @Produce json
// @Param customer_id query string false "Filter by customer ID"
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} ListResponse{data=[]billing.Subscription}
// @Failure 400 {object} ErrorResponse
// @Router /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	subscriptions, hasMore, err := h.common.billing.ListSubscriptions(c.Request.Context(), params)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to list subscriptions", err)
		return
	}

	if subscriptions == nil {
		subscriptions = []billing.Subscription{}
	}

	sendSuccess(c, http.StatusOK, ListResponse{Data: subscriptions, HasMore: hasMore})
}
