package handlers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// fakeBilling implements billing.BillingService with overridable hooks so
// each test only stubs the calls it cares about. Unstubbed calls fail loudly.
type fakeBilling struct {
	createCustomerFn func(ctx context.Context, customer billing.Customer) (billing.Customer, error)
	getCustomerFn    func(ctx context.Context, externalID string) (billing.Customer, error)
	updateCustomerFn func(ctx context.Context, externalID string, customer billing.Customer) (billing.Customer, error)
	deleteCustomerFn func(ctx context.Context, externalID string) error
	listCustomersFn  func(ctx context.Context, params billing.ListParams) ([]billing.Customer, bool, error)

	getPaymentMethodFn    func(ctx context.Context, externalID string) (billing.PaymentMethod, error)
	listPaymentMethodsFn  func(ctx context.Context, params billing.ListParams) ([]billing.PaymentMethod, bool, error)
	attachPaymentMethodFn func(ctx context.Context, externalID, customerExternalID string) (billing.PaymentMethod, error)
	detachPaymentMethodFn func(ctx context.Context, externalID string) (billing.PaymentMethod, error)

	createSubscriptionFn func(ctx context.Context, sub billing.Subscription) (billing.Subscription, error)
	getSubscriptionFn    func(ctx context.Context, externalID string) (billing.Subscription, error)
	updateSubscriptionFn func(ctx context.Context, externalID string, sub billing.Subscription) (billing.Subscription, error)
	cancelSubscriptionFn func(ctx context.Context, externalID string, cancelAtPeriodEnd bool) (billing.Subscription, error)
	listSubscriptionsFn  func(ctx context.Context, params billing.ListParams) ([]billing.Subscription, bool, error)

	getInvoiceFn   func(ctx context.Context, externalID string) (billing.Invoice, error)
	listInvoicesFn func(ctx context.Context, params billing.ListParams) ([]billing.Invoice, bool, error)
	payInvoiceFn   func(ctx context.Context, externalID string) (billing.Invoice, error)
	voidInvoiceFn  func(ctx context.Context, externalID string) (billing.Invoice, error)

	verifyWebhookFn func(rawBody []byte, signatureHeader string) (billing.VerifiedEvent, error)
}

var errNotStubbed = errors.New("fakeBilling: call not stubbed")

func (f *fakeBilling) GetServiceName() string { return "stripe" }

func (f *fakeBilling) CheckConnection(ctx context.Context) error { return nil }

func (f *fakeBilling) CreateCustomer(ctx context.Context, customer billing.Customer) (billing.Customer, error) {
	if f.createCustomerFn == nil {
		return billing.Customer{}, errNotStubbed
	}
	return f.createCustomerFn(ctx, customer)
}

func (f *fakeBilling) GetCustomer(ctx context.Context, externalID string) (billing.Customer, error) {
	if f.getCustomerFn == nil {
		return billing.Customer{}, errNotStubbed
	}
	return f.getCustomerFn(ctx, externalID)
}

func (f *fakeBilling) UpdateCustomer(ctx context.Context, externalID string, customer billing.Customer) (billing.Customer, error) {
	if f.updateCustomerFn == nil {
		return billing.Customer{}, errNotStubbed
	}
	return f.updateCustomerFn(ctx, externalID, customer)
}

func (f *fakeBilling) DeleteCustomer(ctx context.Context, externalID string) error {
	if f.deleteCustomerFn == nil {
		return errNotStubbed
	}
	return f.deleteCustomerFn(ctx, externalID)
}

func (f *fakeBilling) ListCustomers(ctx context.Context, params billing.ListParams) ([]billing.Customer, bool, error) {
	if f.listCustomersFn == nil {
		return nil, false, errNotStubbed
	}
	return f.listCustomersFn(ctx, params)
}

func (f *fakeBilling) GetPaymentMethod(ctx context.Context, externalID string) (billing.PaymentMethod, error) {
	if f.getPaymentMethodFn == nil {
		return billing.PaymentMethod{}, errNotStubbed
	}
	return f.getPaymentMethodFn(ctx, externalID)
}

func (f *fakeBilling) ListPaymentMethods(ctx context.Context, params billing.ListParams) ([]billing.PaymentMethod, bool, error) {
	if f.listPaymentMethodsFn == nil {
		return nil, false, errNotStubbed
	}
	return f.listPaymentMethodsFn(ctx, params)
}

func (f *fakeBilling) AttachPaymentMethod(ctx context.Context, externalID, customerExternalID string) (billing.PaymentMethod, error) {
	if f.attachPaymentMethodFn == nil {
		return billing.PaymentMethod{}, errNotStubbed
	}
	return f.attachPaymentMethodFn(ctx, externalID, customerExternalID)
}

func (f *fakeBilling) DetachPaymentMethod(ctx context.Context, externalID string) (billing.PaymentMethod, error) {
	if f.detachPaymentMethodFn == nil {
		return billing.PaymentMethod{}, errNotStubbed
	}
	return f.detachPaymentMethodFn(ctx, externalID)
}

func (f *fakeBilling) CreateSubscription(ctx context.Context, sub billing.Subscription) (billing.Subscription, error) {
	if f.createSubscriptionFn == nil {
		return billing.Subscription{}, errNotStubbed
	}
	return f.createSubscriptionFn(ctx, sub)
}

func (f *fakeBilling) GetSubscription(ctx context.Context, externalID string) (billing.Subscription, error) {
	if f.getSubscriptionFn == nil {
		return billing.Subscription{}, errNotStubbed
	}
	return f.getSubscriptionFn(ctx, externalID)
}

func (f *fakeBilling) UpdateSubscription(ctx context.Context, externalID string, sub billing.Subscription) (billing.Subscription, error) {
	if f.updateSubscriptionFn == nil {
		return billing.Subscription{}, errNotStubbed
	}
	return f.updateSubscriptionFn(ctx, externalID, sub)
}

func (f *fakeBilling) CancelSubscription(ctx context.Context, externalID string, cancelAtPeriodEnd bool) (billing.Subscription, error) {
	if f.cancelSubscriptionFn == nil {
		return billing.Subscription{}, errNotStubbed
	}
	return f.cancelSubscriptionFn(ctx, externalID, cancelAtPeriodEnd)
}

func (f *fakeBilling) ListSubscriptions(ctx context.Context, params billing.ListParams) ([]billing.Subscription, bool, error) {
	if f.listSubscriptionsFn == nil {
		return nil, false, errNotStubbed
	}
	return f.listSubscriptionsFn(ctx, params)
}

func (f *fakeBilling) GetInvoice(ctx context.Context, externalID string) (billing.Invoice, error) {
	if f.getInvoiceFn == nil {
		return billing.Invoice{}, errNotStubbed
	}
	return f.getInvoiceFn(ctx, externalID)
}

func (f *fakeBilling) ListInvoices(ctx context.Context, params billing.ListParams) ([]billing.Invoice, bool, error) {
	if f.listInvoicesFn == nil {
		return nil, false, errNotStubbed
	}
	return f.listInvoicesFn(ctx, params)
}

func (f *fakeBilling) PayInvoice(ctx context.Context, externalID string) (billing.Invoice, error) {
	if f.payInvoiceFn == nil {
		return billing.Invoice{}, errNotStubbed
	}
	return f.payInvoiceFn(ctx, externalID)
}

func (f *fakeBilling) VoidInvoice(ctx context.Context, externalID string) (billing.Invoice, error) {
	if f.voidInvoiceFn == nil {
		return billing.Invoice{}, errNotStubbed
	}
	return f.voidInvoiceFn(ctx, externalID)
}

func (f *fakeBilling) VerifyWebhook(rawBody []byte, signatureHeader string) (billing.VerifiedEvent, error) {
	if f.verifyWebhookFn == nil {
		return billing.VerifiedEvent{}, errNotStubbed
	}
	return f.verifyWebhookFn(rawBody, signatureHeader)
}
