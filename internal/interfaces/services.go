package interfaces

import (
	"context"
	"encoding/json"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// CustomerNotifier sends a customer-facing notification for a webhook event.
// Calls are fire-and-forget from the router's point of view; failures are
// logged by the implementation and never propagate to the HTTP boundary.
type CustomerNotifier interface {
	NotifyCustomer(ctx context.Context, kind string, payload json.RawMessage) error
}

// SubscriptionStateStore records the latest observed subscription state.
type SubscriptionStateStore interface {
	PersistSubscriptionState(ctx context.Context, payload json.RawMessage) error
}

// InvoiceStateStore records the latest observed invoice state.
type InvoiceStateStore interface {
	PersistInvoiceState(ctx context.Context, payload json.RawMessage) error
}

// EventDispatcher decouples webhook handler execution from the HTTP
// acknowledgment. Submit must not block the caller.
type EventDispatcher interface {
	Submit(event billing.VerifiedEvent) error
}
