package stripe

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// mapStripeCustomerToCustomer converts a Stripe Customer object to the canonical billing.Customer.
func mapStripeCustomerToCustomer(stripeCust *stripe.Customer) billing.Customer {
	if stripeCust == nil {
		return billing.Customer{}
	}

	return billing.Customer{
		ExternalID:     stripeCust.ID,
		Email:          stripeCust.Email,
		Name:           stripeCust.Name,
		Phone:          stripeCust.Phone,
		Metadata:       stripeCust.Metadata,
		BillingAddress: mapStripeAddressToAddress(stripeCust.Address),
		CreatedAt:      stripeCust.Created,
	}
}

// CreateCustomer creates a new customer in Stripe.
func (s *StripeService) CreateCustomer(ctx context.Context, customer billing.Customer) (billing.Customer, error) {
	if s.client == nil {
		return billing.Customer{}, errors.New("stripe client not configured")
	}

	params := &stripe.CustomerCreateParams{
		Email:    stripe.String(customer.Email),
		Metadata: customer.Metadata,
	}
	if customer.Name != "" {
		params.Name = stripe.String(customer.Name)
	}
	if customer.Phone != "" {
		params.Phone = stripe.String(customer.Phone)
	}
	if customer.BillingAddress != nil {
		params.Address = mapAddressToStripeAddressParams(customer.BillingAddress)
	}

	s.logger.Info("Creating Stripe customer", zap.String("email", customer.Email))

	newStripeCustomer, err := s.client.V1Customers.Create(ctx, params)
	if err != nil {
		s.logger.Error("Failed to create Stripe customer", zap.Error(err))
		return billing.Customer{}, errors.Wrap(err, "stripe_service.CreateCustomer")
	}

	s.logger.Info("Successfully created Stripe customer", zap.String("stripe_customer_id", newStripeCustomer.ID))
	return mapStripeCustomerToCustomer(newStripeCustomer), nil
}

// GetCustomer retrieves a customer by their external ID from Stripe.
func (s *StripeService) GetCustomer(ctx context.Context, externalID string) (billing.Customer, error) {
	if s.client == nil {
		return billing.Customer{}, errors.New("stripe client not configured")
	}

	stripeCust, err := s.client.V1Customers.Retrieve(ctx, externalID, &stripe.CustomerRetrieveParams{})
	if err != nil {
		s.logger.Error("Failed to fetch Stripe customer", zap.Error(err), zap.String("stripe_customer_id", externalID))
		return billing.Customer{}, errors.Wrapf(err, "stripe_service.GetCustomer: failed to fetch customer %s", externalID)
	}

	if stripeCust.Deleted {
		s.logger.Warn("Fetched Stripe customer is marked as deleted", zap.String("stripe_customer_id", externalID))
		return billing.Customer{}, errors.Errorf("stripe_service.GetCustomer: customer %s is deleted", externalID)
	}

	return mapStripeCustomerToCustomer(stripeCust), nil
}

// UpdateCustomer updates an existing customer in Stripe. Empty fields are
// left unchanged.
func (s *StripeService) UpdateCustomer(ctx context.Context, externalID string, customer billing.Customer) (billing.Customer, error) {
	if s.client == nil {
		return billing.Customer{}, errors.New("stripe client not configured")
	}

	params := &stripe.CustomerUpdateParams{}
	if customer.Email != "" {
		params.Email = stripe.String(customer.Email)
	}
	if customer.Name != "" {
		params.Name = stripe.String(customer.Name)
	}
	if customer.Phone != "" {
		params.Phone = stripe.String(customer.Phone)
	}
	if customer.Metadata != nil {
		params.Metadata = customer.Metadata
	}
	if customer.BillingAddress != nil {
		params.Address = mapAddressToStripeAddressParams(customer.BillingAddress)
	}

	s.logger.Info("Updating Stripe customer", zap.String("stripe_customer_id", externalID))

	updatedStripeCustomer, err := s.client.V1Customers.Update(ctx, externalID, params)
	if err != nil {
		s.logger.Error("Failed to update Stripe customer", zap.Error(err), zap.String("stripe_customer_id", externalID))
		return billing.Customer{}, errors.Wrapf(err, "stripe_service.UpdateCustomer: failed to update customer %s", externalID)
	}

	return mapStripeCustomerToCustomer(updatedStripeCustomer), nil
}

// DeleteCustomer deletes a customer in Stripe.
func (s *StripeService) DeleteCustomer(ctx context.Context, externalID string) error {
	if s.client == nil {
		return errors.New("stripe client not configured")
	}

	s.logger.Info("Deleting Stripe customer", zap.String("stripe_customer_id", externalID))

	_, err := s.client.V1Customers.Delete(ctx, externalID, &stripe.CustomerDeleteParams{})
	if err != nil {
		s.logger.Error("Failed to delete Stripe customer", zap.Error(err), zap.String("stripe_customer_id", externalID))
		return errors.Wrapf(err, "stripe_service.DeleteCustomer: failed to delete customer %s", externalID)
	}

	return nil
}

// ListCustomers retrieves a page of customers from Stripe.
func (s *StripeService) ListCustomers(ctx context.Context, params billing.ListParams) ([]billing.Customer, bool, error) {
	if s.client == nil {
		return nil, false, errors.New("stripe client not configured")
	}

	stripeParams := &stripe.CustomerListParams{}
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	stripeParams.Limit = stripe.Int64(int64(limit))
	if params.StartingAfter != "" {
		stripeParams.StartingAfter = stripe.String(params.StartingAfter)
	}
	if params.EndingBefore != "" {
		stripeParams.EndingBefore = stripe.String(params.EndingBefore)
	}

	customers := make([]billing.Customer, 0, limit)
	hasMore := false

	// The iterator auto-paginates, so stop once a full page is collected and
	// treat anything beyond it as a further page.
	for stripeCust, err := range s.client.V1Customers.List(ctx, stripeParams) {
		if err != nil {
			s.logger.Error("Error iterating Stripe customers list", zap.Error(err))
			return nil, false, errors.Wrap(err, "stripe_service.ListCustomers")
		}
		if stripeCust == nil || stripeCust.Deleted {
			continue
		}
		if len(customers) == limit {
			hasMore = true
			break
		}
		customers = append(customers, mapStripeCustomerToCustomer(stripeCust))
	}

	return customers, hasMore, nil
}
