package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
	"github.com/payrelay/payrelay-api/internal/constants"
	"github.com/payrelay/payrelay-api/internal/interfaces"
)

// EventHandlerFunc handles the payload of one verified webhook event.
type EventHandlerFunc func(ctx context.Context, payload json.RawMessage)

// EventRouter maps verified webhook event types to handler funcs. The table
// is fixed at construction time; dispatch is total over the type string, so
// unrecognized types are logged and acknowledged as a no-op.
//
// The platform delivers events at least once and the router performs no
// deduplication: dispatching the same event twice invokes its handler
// twice. Collaborators that need exactly-once behavior must dedupe
// themselves.
type EventRouter struct {
	handlers map[string]EventHandlerFunc
	logger   *zap.Logger
}

// NewEventRouter builds the routing table over the recognized event types.
func NewEventRouter(
	notifier interfaces.CustomerNotifier,
	subStore interfaces.SubscriptionStateStore,
	invStore interfaces.InvoiceStateStore,
	logger *zap.Logger,
) *EventRouter {
	r := &EventRouter{logger: logger}

	notify := func(kind string) EventHandlerFunc {
		return func(ctx context.Context, payload json.RawMessage) {
			if err := notifier.NotifyCustomer(ctx, kind, payload); err != nil {
				logger.Error("Customer notification failed",
					zap.String("kind", kind),
					zap.Error(err))
			}
		}
	}
	persistSubscription := func(ctx context.Context, payload json.RawMessage) {
		if err := subStore.PersistSubscriptionState(ctx, payload); err != nil {
			logger.Error("Failed to persist subscription state", zap.Error(err))
		}
	}
	persistInvoice := func(ctx context.Context, payload json.RawMessage) {
		if err := invStore.PersistInvoiceState(ctx, payload); err != nil {
			logger.Error("Failed to persist invoice state", zap.Error(err))
		}
	}
	both := func(first, second EventHandlerFunc) EventHandlerFunc {
		return func(ctx context.Context, payload json.RawMessage) {
			first(ctx, payload)
			second(ctx, payload)
		}
	}

	r.handlers = map[string]EventHandlerFunc{
		billing.EventSubscriptionCreated:      both(persistSubscription, notify(constants.NotifySubscriptionStarted)),
		billing.EventSubscriptionUpdated:      both(persistSubscription, notify(constants.NotifySubscriptionUpdated)),
		billing.EventSubscriptionDeleted:      both(persistSubscription, notify(constants.NotifySubscriptionCanceled)),
		billing.EventSubscriptionTrialWillEnd: notify(constants.NotifyTrialEnding),
		billing.EventInvoicePaymentSucceeded:  both(persistInvoice, notify(constants.NotifyPaymentSucceeded)),
		billing.EventInvoicePaymentFailed:     both(persistInvoice, notify(constants.NotifyPaymentFailed)),
		billing.EventPaymentMethodAttached:    notify(constants.NotifyPaymentMethodAdded),
		billing.EventPaymentMethodDetached:    notify(constants.NotifyPaymentMethodRemoved),
	}

	return r
}

// Dispatch routes a verified event to its handler. It never fails: unknown
// event types are logged and treated as acknowledged.
func (r *EventRouter) Dispatch(ctx context.Context, event billing.VerifiedEvent) {
	handler, ok := r.handlers[event.Type]
	if !ok {
		r.logger.Info("No handler registered for webhook event type; acknowledging",
			zap.String("event_type", event.Type),
			zap.String("event_id", event.ProviderEventID))
		return
	}

	r.logger.Info("Dispatching webhook event",
		zap.String("event_type", event.Type),
		zap.String("event_id", event.ProviderEventID))

	handler(ctx, event.Payload)
}

// Recognizes reports whether the router has a handler bound for the type.
func (r *EventRouter) Recognizes(eventType string) bool {
	_, ok := r.handlers[eventType]
	return ok
}
