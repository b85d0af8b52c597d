package stripe

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// mapStripeSubscriptionToSubscription converts a Stripe Subscription object
// to the canonical billing.Subscription. The current period lives on the
// subscription items; the first item's period is reported.
func mapStripeSubscriptionToSubscription(stripeSub *stripe.Subscription) billing.Subscription {
	if stripeSub == nil {
		return billing.Subscription{}
	}

	var items []billing.SubscriptionItem
	var periodStart, periodEnd int64

	if stripeSub.Items != nil && len(stripeSub.Items.Data) > 0 {
		items = make([]billing.SubscriptionItem, 0, len(stripeSub.Items.Data))
		for _, item := range stripeSub.Items.Data {
			if item == nil {
				continue
			}
			var priceID string
			if item.Price != nil {
				priceID = item.Price.ID
			}
			items = append(items, billing.SubscriptionItem{
				ExternalID: item.ID,
				PriceID:    priceID,
				Quantity:   int(item.Quantity),
			})
		}
		if stripeSub.Items.Data[0] != nil {
			periodStart = stripeSub.Items.Data[0].CurrentPeriodStart
			periodEnd = stripeSub.Items.Data[0].CurrentPeriodEnd
		}
	}

	var customerID string
	if stripeSub.Customer != nil {
		customerID = stripeSub.Customer.ID
	}

	var latestInvoiceID string
	if stripeSub.LatestInvoice != nil {
		latestInvoiceID = stripeSub.LatestInvoice.ID
	}

	var defaultPaymentMethodID string
	if stripeSub.DefaultPaymentMethod != nil {
		defaultPaymentMethodID = stripeSub.DefaultPaymentMethod.ID
	}

	return billing.Subscription{
		ExternalID:             stripeSub.ID,
		CustomerID:             customerID,
		Status:                 string(stripeSub.Status),
		CurrentPeriodStart:     periodStart,
		CurrentPeriodEnd:       periodEnd,
		TrialEndDate:           stripeSub.TrialEnd,
		CancelAtPeriodEnd:      stripeSub.CancelAtPeriodEnd,
		CanceledAt:             stripeSub.CanceledAt,
		EndedAt:                stripeSub.EndedAt,
		DefaultPaymentMethodID: defaultPaymentMethodID,
		LatestInvoiceID:        latestInvoiceID,
		Items:                  items,
		Metadata:               stripeSub.Metadata,
	}
}

// CreateSubscription creates a new subscription in Stripe.
func (s *StripeService) CreateSubscription(ctx context.Context, sub billing.Subscription) (billing.Subscription, error) {
	if s.client == nil {
		return billing.Subscription{}, errors.New("stripe client not configured")
	}
	if sub.CustomerID == "" {
		return billing.Subscription{}, errors.New("stripe_service.CreateSubscription: customer ID is required")
	}
	if len(sub.Items) == 0 {
		return billing.Subscription{}, errors.New("stripe_service.CreateSubscription: at least one item is required")
	}

	stripeItems := make([]*stripe.SubscriptionCreateItemParams, len(sub.Items))
	for i, item := range sub.Items {
		itemP := &stripe.SubscriptionCreateItemParams{
			Price: stripe.String(item.PriceID),
		}
		if item.Quantity > 0 {
			itemP.Quantity = stripe.Int64(int64(item.Quantity))
		}
		stripeItems[i] = itemP
	}

	params := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(sub.CustomerID),
		Items:    stripeItems,
		Metadata: sub.Metadata,
	}
	if sub.TrialEndDate > 0 {
		params.TrialEnd = stripe.Int64(sub.TrialEndDate)
	}
	if sub.DefaultPaymentMethodID != "" {
		params.DefaultPaymentMethod = stripe.String(sub.DefaultPaymentMethodID)
	}
	if sub.CancelAtPeriodEnd {
		params.CancelAtPeriodEnd = stripe.Bool(true)
	}
	params.AddExpand("latest_invoice")
	params.AddExpand("default_payment_method")

	s.logger.Info("Creating Stripe subscription",
		zap.String("customer_id", sub.CustomerID),
		zap.Int("item_count", len(stripeItems)))

	newStripeSub, err := s.client.V1Subscriptions.Create(ctx, params)
	if err != nil {
		s.logger.Error("Failed to create Stripe subscription", zap.Error(err))
		return billing.Subscription{}, errors.Wrap(err, "stripe_service.CreateSubscription")
	}

	s.logger.Info("Successfully created Stripe subscription", zap.String("stripe_subscription_id", newStripeSub.ID))
	return mapStripeSubscriptionToSubscription(newStripeSub), nil
}

// GetSubscription retrieves a subscription by its external ID from Stripe.
func (s *StripeService) GetSubscription(ctx context.Context, externalID string) (billing.Subscription, error) {
	if s.client == nil {
		return billing.Subscription{}, errors.New("stripe client not configured")
	}

	params := &stripe.SubscriptionRetrieveParams{}
	params.AddExpand("latest_invoice")
	params.AddExpand("default_payment_method")

	stripeSub, err := s.client.V1Subscriptions.Retrieve(ctx, externalID, params)
	if err != nil {
		s.logger.Error("Failed to fetch Stripe subscription", zap.Error(err), zap.String("stripe_subscription_id", externalID))
		return billing.Subscription{}, errors.Wrapf(err, "stripe_service.GetSubscription: failed to fetch subscription %s", externalID)
	}

	return mapStripeSubscriptionToSubscription(stripeSub), nil
}

// UpdateSubscription updates top-level fields of an existing subscription.
// Item changes replace the prices on the subscription.
func (s *StripeService) UpdateSubscription(ctx context.Context, externalID string, sub billing.Subscription) (billing.Subscription, error) {
	if s.client == nil {
		return billing.Subscription{}, errors.New("stripe client not configured")
	}

	params := &stripe.SubscriptionUpdateParams{}
	if sub.Metadata != nil {
		params.Metadata = sub.Metadata
	}
	if sub.DefaultPaymentMethodID != "" {
		params.DefaultPaymentMethod = stripe.String(sub.DefaultPaymentMethodID)
	}
	if len(sub.Items) > 0 {
		items := make([]*stripe.SubscriptionUpdateItemParams, len(sub.Items))
		for i, item := range sub.Items {
			itemP := &stripe.SubscriptionUpdateItemParams{}
			if item.ExternalID != "" {
				itemP.ID = stripe.String(item.ExternalID)
			}
			if item.PriceID != "" {
				itemP.Price = stripe.String(item.PriceID)
			}
			if item.Quantity > 0 {
				itemP.Quantity = stripe.Int64(int64(item.Quantity))
			}
			items[i] = itemP
		}
		params.Items = items
	}
	params.AddExpand("latest_invoice")
	params.AddExpand("default_payment_method")

	s.logger.Info("Updating Stripe subscription", zap.String("stripe_subscription_id", externalID))

	updatedStripeSub, err := s.client.V1Subscriptions.Update(ctx, externalID, params)
	if err != nil {
		s.logger.Error("Failed to update Stripe subscription", zap.Error(err), zap.String("stripe_subscription_id", externalID))
		return billing.Subscription{}, errors.Wrapf(err, "stripe_service.UpdateSubscription: failed to update subscription %s", externalID)
	}

	return mapStripeSubscriptionToSubscription(updatedStripeSub), nil
}

// CancelSubscription cancels a subscription, either immediately or at the end
// of the current billing period.
func (s *StripeService) CancelSubscription(ctx context.Context, externalID string, cancelAtPeriodEnd bool) (billing.Subscription, error) {
	if s.client == nil {
		return billing.Subscription{}, errors.New("stripe client not configured")
	}

	var canceledStripeSub *stripe.Subscription
	var err error

	if cancelAtPeriodEnd {
		s.logger.Info("Updating Stripe subscription to cancel at period end", zap.String("stripe_subscription_id", externalID))
		updateParams := &stripe.SubscriptionUpdateParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		updateParams.AddExpand("latest_invoice")
		canceledStripeSub, err = s.client.V1Subscriptions.Update(ctx, externalID, updateParams)
	} else {
		s.logger.Info("Canceling Stripe subscription immediately", zap.String("stripe_subscription_id", externalID))
		canceledStripeSub, err = s.client.V1Subscriptions.Cancel(ctx, externalID, &stripe.SubscriptionCancelParams{})
	}

	if err != nil {
		s.logger.Error("Failed to cancel Stripe subscription", zap.Error(err), zap.String("stripe_subscription_id", externalID))
		return billing.Subscription{}, errors.Wrapf(err, "stripe_service.CancelSubscription: failed to cancel subscription %s", externalID)
	}

	return mapStripeSubscriptionToSubscription(canceledStripeSub), nil
}

// ListSubscriptions retrieves a page of subscriptions from Stripe.
func (s *StripeService) ListSubscriptions(ctx context.Context, params billing.ListParams) ([]billing.Subscription, bool, error) {
	if s.client == nil {
		return nil, false, errors.New("stripe client not configured")
	}

	stripeParams := &stripe.SubscriptionListParams{}
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	stripeParams.Limit = stripe.Int64(int64(limit))
	if params.StartingAfter != "" {
		stripeParams.StartingAfter = stripe.String(params.StartingAfter)
	}
	if params.CustomerID != "" {
		stripeParams.Customer = stripe.String(params.CustomerID)
	}
	if params.Status != "" {
		stripeParams.Status = stripe.String(params.Status)
	}

	subs := make([]billing.Subscription, 0, limit)
	hasMore := false

	for stripeSub, err := range s.client.V1Subscriptions.List(ctx, stripeParams) {
		if err != nil {
			s.logger.Error("Error iterating Stripe subscriptions list", zap.Error(err))
			return nil, false, errors.Wrap(err, "stripe_service.ListSubscriptions")
		}
		if stripeSub == nil {
			continue
		}
		if len(subs) == limit {
			hasMore = true
			break
		}
		subs = append(subs, mapStripeSubscriptionToSubscription(stripeSub))
	}

	return subs, hasMore, nil
}
