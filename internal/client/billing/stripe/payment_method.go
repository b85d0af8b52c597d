package stripe

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// mapStripePaymentMethodToPaymentMethod converts a Stripe PaymentMethod to
// the canonical billing.PaymentMethod.
func mapStripePaymentMethodToPaymentMethod(stripePM *stripe.PaymentMethod) billing.PaymentMethod {
	if stripePM == nil {
		return billing.PaymentMethod{}
	}

	var customerID string
	if stripePM.Customer != nil {
		customerID = stripePM.Customer.ID
	}

	var card *billing.Card
	if stripePM.Card != nil {
		card = &billing.Card{
			Brand:    string(stripePM.Card.Brand),
			Last4:    stripePM.Card.Last4,
			ExpMonth: stripePM.Card.ExpMonth,
			ExpYear:  stripePM.Card.ExpYear,
		}
	}

	return billing.PaymentMethod{
		ExternalID: stripePM.ID,
		Type:       string(stripePM.Type),
		CustomerID: customerID,
		Card:       card,
		CreatedAt:  stripePM.Created,
	}
}

// GetPaymentMethod retrieves a payment method by its external ID.
func (s *StripeService) GetPaymentMethod(ctx context.Context, externalID string) (billing.PaymentMethod, error) {
	if s.client == nil {
		return billing.PaymentMethod{}, errors.New("stripe client not configured")
	}

	stripePM, err := s.client.V1PaymentMethods.Retrieve(ctx, externalID, &stripe.PaymentMethodRetrieveParams{})
	if err != nil {
		s.logger.Error("Failed to fetch Stripe payment method", zap.Error(err), zap.String("stripe_payment_method_id", externalID))
		return billing.PaymentMethod{}, errors.Wrapf(err, "stripe_service.GetPaymentMethod: failed to fetch payment method %s", externalID)
	}

	return mapStripePaymentMethodToPaymentMethod(stripePM), nil
}

// ListPaymentMethods retrieves a page of payment methods for a customer.
// The platform requires a customer filter for this listing.
func (s *StripeService) ListPaymentMethods(ctx context.Context, params billing.ListParams) ([]billing.PaymentMethod, bool, error) {
	if s.client == nil {
		return nil, false, errors.New("stripe client not configured")
	}
	if params.CustomerID == "" {
		return nil, false, errors.New("stripe_service.ListPaymentMethods: customer ID is required")
	}

	stripeParams := &stripe.PaymentMethodListParams{
		Customer: stripe.String(params.CustomerID),
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	stripeParams.Limit = stripe.Int64(int64(limit))
	if params.StartingAfter != "" {
		stripeParams.StartingAfter = stripe.String(params.StartingAfter)
	}

	methods := make([]billing.PaymentMethod, 0, limit)
	hasMore := false

	for stripePM, err := range s.client.V1PaymentMethods.List(ctx, stripeParams) {
		if err != nil {
			s.logger.Error("Error iterating Stripe payment methods list", zap.Error(err))
			return nil, false, errors.Wrap(err, "stripe_service.ListPaymentMethods")
		}
		if stripePM == nil {
			continue
		}
		if len(methods) == limit {
			hasMore = true
			break
		}
		methods = append(methods, mapStripePaymentMethodToPaymentMethod(stripePM))
	}

	return methods, hasMore, nil
}

// AttachPaymentMethod attaches a payment method to a customer.
func (s *StripeService) AttachPaymentMethod(ctx context.Context, externalID string, customerExternalID string) (billing.PaymentMethod, error) {
	if s.client == nil {
		return billing.PaymentMethod{}, errors.New("stripe client not configured")
	}

	params := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerExternalID),
	}

	s.logger.Info("Attaching Stripe payment method",
		zap.String("stripe_payment_method_id", externalID),
		zap.String("stripe_customer_id", customerExternalID))

	stripePM, err := s.client.V1PaymentMethods.Attach(ctx, externalID, params)
	if err != nil {
		s.logger.Error("Failed to attach Stripe payment method", zap.Error(err), zap.String("stripe_payment_method_id", externalID))
		return billing.PaymentMethod{}, errors.Wrapf(err, "stripe_service.AttachPaymentMethod: failed to attach payment method %s", externalID)
	}

	return mapStripePaymentMethodToPaymentMethod(stripePM), nil
}

// DetachPaymentMethod detaches a payment method from its customer.
func (s *StripeService) DetachPaymentMethod(ctx context.Context, externalID string) (billing.PaymentMethod, error) {
	if s.client == nil {
		return billing.PaymentMethod{}, errors.New("stripe client not configured")
	}

	s.logger.Info("Detaching Stripe payment method", zap.String("stripe_payment_method_id", externalID))

	stripePM, err := s.client.V1PaymentMethods.Detach(ctx, externalID, &stripe.PaymentMethodDetachParams{})
	if err != nil {
		s.logger.Error("Failed to detach Stripe payment method", zap.Error(err), zap.String("stripe_payment_method_id", externalID))
		return billing.PaymentMethod{}, errors.Wrapf(err, "stripe_service.DetachPaymentMethod: failed to detach payment method %s", externalID)
	}

	return mapStripePaymentMethodToPaymentMethod(stripePM), nil
}
