package stripe

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// mapStripeInvoiceLineToInvoiceLineItem converts a Stripe invoice line item
// to the canonical billing.InvoiceLineItem.
func mapStripeInvoiceLineToInvoiceLineItem(stripeLine *stripe.InvoiceLineItem) billing.InvoiceLineItem {
	if stripeLine == nil {
		return billing.InvoiceLineItem{}
	}

	var priceID string
	if stripeLine.Pricing != nil && stripeLine.Pricing.PriceDetails != nil {
		priceID = stripeLine.Pricing.PriceDetails.Price
	}

	var period *billing.Period
	if stripeLine.Period != nil {
		period = &billing.Period{
			Start: stripeLine.Period.Start,
			End:   stripeLine.Period.End,
		}
	}

	return billing.InvoiceLineItem{
		ExternalID:  stripeLine.ID,
		Description: stripeLine.Description,
		Amount:      stripeLine.Amount,
		Quantity:    int(stripeLine.Quantity),
		PriceID:     priceID,
		Period:      period,
	}
}

// mapStripeInvoiceToInvoice converts a Stripe Invoice object to the
// canonical billing.Invoice.
func mapStripeInvoiceToInvoice(stripeInv *stripe.Invoice) billing.Invoice {
	if stripeInv == nil {
		return billing.Invoice{}
	}

	var lines []billing.InvoiceLineItem
	if stripeInv.Lines != nil && len(stripeInv.Lines.Data) > 0 {
		lines = make([]billing.InvoiceLineItem, len(stripeInv.Lines.Data))
		for i, line := range stripeInv.Lines.Data {
			lines[i] = mapStripeInvoiceLineToInvoiceLineItem(line)
		}
	}

	var customerID string
	if stripeInv.Customer != nil {
		customerID = stripeInv.Customer.ID
	}

	return billing.Invoice{
		ExternalID:       stripeInv.ID,
		CustomerID:       customerID,
		Status:           string(stripeInv.Status),
		CollectionMethod: string(stripeInv.CollectionMethod),
		AmountDue:        stripeInv.AmountDue,
		AmountPaid:       stripeInv.AmountPaid,
		AmountRemaining:  stripeInv.AmountRemaining,
		Currency:         string(stripeInv.Currency),
		DueDate:          stripeInv.DueDate,
		InvoicePDF:       stripeInv.InvoicePDF,
		HostedInvoiceURL: stripeInv.HostedInvoiceURL,
		AttemptCount:     int(stripeInv.AttemptCount),
		BillingReason:    string(stripeInv.BillingReason),
		Lines:            lines,
		Metadata:         stripeInv.Metadata,
	}
}

// GetInvoice retrieves an invoice by its external ID from Stripe.
func (s *StripeService) GetInvoice(ctx context.Context, externalID string) (billing.Invoice, error) {
	if s.client == nil {
		return billing.Invoice{}, errors.New("stripe client not configured")
	}

	stripeInv, err := s.client.V1Invoices.Retrieve(ctx, externalID, &stripe.InvoiceRetrieveParams{})
	if err != nil {
		s.logger.Error("Failed to fetch Stripe invoice", zap.Error(err), zap.String("stripe_invoice_id", externalID))
		return billing.Invoice{}, errors.Wrapf(err, "stripe_service.GetInvoice: failed to fetch invoice %s", externalID)
	}

	return mapStripeInvoiceToInvoice(stripeInv), nil
}

// ListInvoices retrieves a page of invoices from Stripe.
func (s *StripeService) ListInvoices(ctx context.Context, params billing.ListParams) ([]billing.Invoice, bool, error) {
	if s.client == nil {
		return nil, false, errors.New("stripe client not configured")
	}

	stripeParams := &stripe.InvoiceListParams{}
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

	invoices := make([]billing.Invoice, 0, limit)
	hasMore := false

	for stripeInv, err := range s.client.V1Invoices.List(ctx, stripeParams) {
		if err != nil {
			s.logger.Error("Error iterating Stripe invoices list", zap.Error(err))
			return nil, false, errors.Wrap(err, "stripe_service.ListInvoices")
		}
		if stripeInv == nil {
			continue
		}
		if len(invoices) == limit {
			hasMore = true
			break
		}
		invoices = append(invoices, mapStripeInvoiceToInvoice(stripeInv))
	}

	return invoices, hasMore, nil
}

// PayInvoice attempts payment of an open invoice.
func (s *StripeService) PayInvoice(ctx context.Context, externalID string) (billing.Invoice, error) {
	if s.client == nil {
		return billing.Invoice{}, errors.New("stripe client not configured")
	}

	s.logger.Info("Paying Stripe invoice", zap.String("stripe_invoice_id", externalID))

	paidStripeInvoice, err := s.client.V1Invoices.Pay(ctx, externalID, &stripe.InvoicePayParams{})
	if err != nil {
		s.logger.Error("Failed to pay Stripe invoice", zap.Error(err), zap.String("stripe_invoice_id", externalID))
		return billing.Invoice{}, errors.Wrapf(err, "stripe_service.PayInvoice: failed to pay invoice %s", externalID)
	}

	return mapStripeInvoiceToInvoice(paidStripeInvoice), nil
}

// VoidInvoice voids an open invoice.
func (s *StripeService) VoidInvoice(ctx context.Context, externalID string) (billing.Invoice, error) {
	if s.client == nil {
		return billing.Invoice{}, errors.New("stripe client not configured")
	}

	s.logger.Info("Voiding Stripe invoice", zap.String("stripe_invoice_id", externalID))

	voidedStripeInvoice, err := s.client.V1Invoices.VoidInvoice(ctx, externalID, &stripe.InvoiceVoidInvoiceParams{})
	if err != nil {
		s.logger.Error("Failed to void Stripe invoice", zap.Error(err), zap.String("stripe_invoice_id", externalID))
		return billing.Invoice{}, errors.Wrapf(err, "stripe_service.VoidInvoice: failed to void invoice %s", externalID)
	}

	return mapStripeInvoiceToInvoice(voidedStripeInvoice), nil
}
