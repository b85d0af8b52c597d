package stripe

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
	"github.com/payrelay/payrelay-api/internal/constants"
)

// Ensure StripeService implements the BillingService interface
var _ billing.BillingService = (*StripeService)(nil)

// DefaultWebhookTolerance is the maximum accepted age of a webhook
// timestamp, matching the platform's documented default.
const DefaultWebhookTolerance = 300 * time.Second

// Config holds the credentials and webhook settings for the Stripe relay.
// The webhook signing secret is injected here once at startup; the verifier
// never reads it from the ambient environment at call time.
type Config struct {
	APIKey           string
	WebhookSecret    string
	WebhookTolerance time.Duration
}

// StripeService implements BillingService for Stripe. Method implementations
// for specific resources (Customer, PaymentMethod, Subscription, Invoice,
// webhooks) are in separate files within this package.
type StripeService struct {
	client           *stripe.Client
	webhookSecret    string
	webhookTolerance time.Duration
	logger           *zap.Logger
}

// NewStripeService creates an unconfigured service. Configure must be called
// before any relay or webhook operation.
func NewStripeService(logger *zap.Logger) *StripeService {
	return &StripeService{
		logger:           logger,
		webhookTolerance: DefaultWebhookTolerance,
	}
}

// GetServiceName returns the name of the service.
func (s *StripeService) GetServiceName() string {
	return constants.StripeProvider
}

// Configure initializes the Stripe client. The API key is required; the
// webhook secret may be absent, in which case the webhook verifier fails
// closed with a ConfigError until one is provided.
func (s *StripeService) Configure(cfg Config) error {
	if cfg.APIKey == "" {
		return errors.New("stripe API key not provided in configuration")
	}

	s.client = stripe.NewClient(cfg.APIKey, nil)
	s.webhookSecret = cfg.WebhookSecret
	if cfg.WebhookTolerance > 0 {
		s.webhookTolerance = cfg.WebhookTolerance
	}

	if s.webhookSecret == "" {
		s.logger.Warn("Stripe webhook secret not configured; webhook verification will fail closed")
	}

	return nil
}

// CheckConnection verifies that the service can connect to Stripe with a
// simple non-mutating API call.
func (s *StripeService) CheckConnection(ctx context.Context) error {
	if s.client == nil {
		return errors.New("stripe client not configured. Call Configure first")
	}

	_, err := s.client.V1Accounts.Retrieve(ctx, &stripe.AccountRetrieveParams{})
	if err != nil {
		return errors.Wrap(err, "failed to connect to Stripe")
	}
	return nil
}

// mapStripeAddressToAddress converts a Stripe Address to billing.Address.
func mapStripeAddressToAddress(stripeAddr *stripe.Address) *billing.Address {
	if stripeAddr == nil {
		return nil
	}
	return &billing.Address{
		Line1:      stripeAddr.Line1,
		Line2:      stripeAddr.Line2,
		City:       stripeAddr.City,
		State:      stripeAddr.State,
		PostalCode: stripeAddr.PostalCode,
		Country:    stripeAddr.Country,
	}
}

// mapAddressToStripeAddressParams converts a billing.Address to stripe.AddressParams.
func mapAddressToStripeAddressParams(addr *billing.Address) *stripe.AddressParams {
	if addr == nil {
		return nil
	}
	return &stripe.AddressParams{
		Line1:      stripe.String(addr.Line1),
		Line2:      stripe.String(addr.Line2),
		City:       stripe.String(addr.City),
		State:      stripe.String(addr.State),
		PostalCode: stripe.String(addr.PostalCode),
		Country:    stripe.String(addr.Country),
	}
}
