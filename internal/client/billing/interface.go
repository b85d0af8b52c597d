package billing

import (
	"context"
	"encoding/json"
)

// Customer is the canonical customer shape returned by the relay.
type Customer struct {
	ExternalID     string            `json:"id"`
	Email          string            `json:"email"`
	Name           string            `json:"name,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	BillingAddress *Address          `json:"billing_address,omitempty"`
	CreatedAt      int64             `json:"created_at,omitempty"`
}

// Address represents a physical address.
type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// PaymentMethod is the canonical payment method shape.
type PaymentMethod struct {
	ExternalID string `json:"id"`
	Type       string `json:"type"` // e.g. "card", "us_bank_account"
	CustomerID string `json:"customer_id,omitempty"`
	Card       *Card  `json:"card,omitempty"`
	CreatedAt  int64  `json:"created_at,omitempty"`
}

// Card holds the displayable subset of card details.
type Card struct {
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int64  `json:"exp_month,omitempty"`
	ExpYear  int64  `json:"exp_year,omitempty"`
}

// Subscription is the canonical subscription shape.
type Subscription struct {
	ExternalID             string             `json:"id"`
	CustomerID             string             `json:"customer_id"`
	Status                 string             `json:"status"` // e.g. "active", "past_due", "canceled", "trialing"
	CurrentPeriodStart     int64              `json:"current_period_start,omitempty"`
	CurrentPeriodEnd       int64              `json:"current_period_end,omitempty"`
	TrialEndDate           int64              `json:"trial_end,omitempty"`
	CancelAtPeriodEnd      bool               `json:"cancel_at_period_end"`
	CanceledAt             int64              `json:"canceled_at,omitempty"`
	EndedAt                int64              `json:"ended_at,omitempty"`
	DefaultPaymentMethodID string             `json:"default_payment_method,omitempty"`
	LatestInvoiceID        string             `json:"latest_invoice,omitempty"`
	Items                  []SubscriptionItem `json:"items,omitempty"`
	Metadata               map[string]string  `json:"metadata,omitempty"`
}

// SubscriptionItem represents a priced item within a subscription.
type SubscriptionItem struct {
	ExternalID string `json:"id,omitempty"`
	PriceID    string `json:"price_id"`
	Quantity   int    `json:"quantity,omitempty"`
}

// Invoice is the canonical invoice shape.
type Invoice struct {
	ExternalID       string            `json:"id"`
	CustomerID       string            `json:"customer_id,omitempty"`
	Status           string            `json:"status"` // e.g. "draft", "open", "paid", "void", "uncollectible"
	CollectionMethod string            `json:"collection_method,omitempty"`
	AmountDue        int64             `json:"amount_due"`
	AmountPaid       int64             `json:"amount_paid"`
	AmountRemaining  int64             `json:"amount_remaining"`
	Currency         string            `json:"currency,omitempty"`
	DueDate          int64             `json:"due_date,omitempty"`
	InvoicePDF       string            `json:"invoice_pdf,omitempty"`
	HostedInvoiceURL string            `json:"hosted_invoice_url,omitempty"`
	AttemptCount     int               `json:"attempt_count,omitempty"`
	BillingReason    string            `json:"billing_reason,omitempty"`
	Lines            []InvoiceLineItem `json:"lines,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// InvoiceLineItem represents a line item on an invoice.
type InvoiceLineItem struct {
	ExternalID  string  `json:"id,omitempty"`
	Description string  `json:"description,omitempty"`
	Amount      int64   `json:"amount"`
	Quantity    int     `json:"quantity,omitempty"`
	PriceID     string  `json:"price_id,omitempty"`
	Period      *Period `json:"period,omitempty"`
}

// Period defines a start and end time for a line item or billing period.
type Period struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// ListParams provides common parameters for listing resources.
type ListParams struct {
	Limit         int
	StartingAfter string // Cursor for pagination (an ExternalID)
	EndingBefore  string
	CustomerID    string // Filter by external customer ID, where supported
	Status        string // Filter by status, where supported
}

// VerifiedEvent is a webhook event whose signature has been checked against
// the platform's signing secret. It is only ever constructed by a
// BillingService's VerifyWebhook; there is no raw-to-verified shortcut.
type VerifiedEvent struct {
	ProviderEventID string                 // Event ID assigned by the provider, if any
	Provider        string                 // e.g. "stripe"
	Type            string                 // e.g. "invoice.payment_failed"
	CreatedAt       int64                  // Unix timestamp from the provider
	ReceivedAt      int64                  // Unix timestamp when this process verified it
	Payload         json.RawMessage        // Raw bytes of the event's data object
	Object          map[string]interface{} // Decoded data object
}

// BillingService is the relay's view of an external payment platform.
// Implementations live in provider subpackages (e.g. stripe).
type BillingService interface {
	// GetServiceName returns the provider identifier, e.g. "stripe".
	GetServiceName() string

	// CheckConnection verifies credentials with a non-mutating API call.
	CheckConnection(ctx context.Context) error

	// Customer operations
	CreateCustomer(ctx context.Context, customer Customer) (Customer, error)
	GetCustomer(ctx context.Context, externalID string) (Customer, error)
	UpdateCustomer(ctx context.Context, externalID string, customer Customer) (Customer, error)
	DeleteCustomer(ctx context.Context, externalID string) error
	ListCustomers(ctx context.Context, params ListParams) ([]Customer, bool, error)

	// Payment method operations
	GetPaymentMethod(ctx context.Context, externalID string) (PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, params ListParams) ([]PaymentMethod, bool, error)
	AttachPaymentMethod(ctx context.Context, externalID string, customerExternalID string) (PaymentMethod, error)
	DetachPaymentMethod(ctx context.Context, externalID string) (PaymentMethod, error)

	// Subscription operations
	CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error)
	GetSubscription(ctx context.Context, externalID string) (Subscription, error)
	UpdateSubscription(ctx context.Context, externalID string, sub Subscription) (Subscription, error)
	CancelSubscription(ctx context.Context, externalID string, cancelAtPeriodEnd bool) (Subscription, error)
	ListSubscriptions(ctx context.Context, params ListParams) ([]Subscription, bool, error)

	// Invoice operations
	GetInvoice(ctx context.Context, externalID string) (Invoice, error)
	ListInvoices(ctx context.Context, params ListParams) ([]Invoice, bool, error)
	PayInvoice(ctx context.Context, externalID string) (Invoice, error)
	VoidInvoice(ctx context.Context, externalID string) (Invoice, error)

	// VerifyWebhook validates the signature header against the exact raw
	// request bytes and, on success, parses them into a VerifiedEvent.
	VerifyWebhook(rawBody []byte, signatureHeader string) (VerifiedEvent, error)
}

// Recognized webhook event types. The set is open ended on the wire; these
// are the ones the router binds handlers to.
const (
	EventSubscriptionCreated      = "subscription.created"
	EventSubscriptionUpdated      = "subscription.updated"
	EventSubscriptionDeleted      = "subscription.deleted"
	EventInvoicePaymentSucceeded  = "invoice.payment_succeeded"
	EventInvoicePaymentFailed     = "invoice.payment_failed"
	EventSubscriptionTrialWillEnd = "subscription.trial_will_end"
	EventPaymentMethodAttached    = "payment_method.attached"
	EventPaymentMethodDetached    = "payment_method.detached"
)
