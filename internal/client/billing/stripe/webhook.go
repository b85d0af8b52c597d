package stripe

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// VerifyWebhook validates an incoming webhook payload against the signing
// secret and, on success, parses it into a billing.VerifiedEvent.
//
// rawBody must be the exact, unmodified bytes received on the wire: the
// signature covers "{timestamp}.{rawBody}" and any re-serialization breaks
// it. The header carries the timestamp and one or more HMAC-SHA256
// signatures; the library recomputes the expected digest and compares in
// constant time, rejecting timestamps older than the configured tolerance.
func (s *StripeService) VerifyWebhook(rawBody []byte, signatureHeader string) (billing.VerifiedEvent, error) {
	if s.webhookSecret == "" {
		return billing.VerifiedEvent{}, &billing.ConfigError{Missing: "webhook signing secret"}
	}
	if signatureHeader == "" {
		return billing.VerifiedEvent{}, &billing.SignatureError{Reason: "missing signature header"}
	}

	// The relay forwards event payloads opaquely, so it accepts any API
	// version rather than only the one stripe-go pins.
	event, err := webhook.ConstructEventWithOptions(rawBody, signatureHeader, s.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                s.webhookTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.logger.Error("Webhook signature verification failed", zap.Error(err))
		return billing.VerifiedEvent{}, &billing.SignatureError{Reason: reasonForVerifyError(err), Err: err}
	}

	s.logger.Info("Received verified webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	verified := billing.VerifiedEvent{
		ProviderEventID: event.ID,
		Provider:        s.GetServiceName(),
		Type:            string(event.Type),
		CreatedAt:       event.Created,
		ReceivedAt:      time.Now().Unix(),
	}
	if event.Data != nil {
		verified.Payload = event.Data.Raw
		verified.Object = event.Data.Object
	}
	if verified.Payload == nil {
		verified.Payload = json.RawMessage("{}")
	}

	return verified, nil
}

// reasonForVerifyError maps library verification errors to short,
// human-readable reasons for the 400 response body.
func reasonForVerifyError(err error) string {
	switch {
	case errors.Is(err, webhook.ErrNotSigned):
		return "payload is not signed"
	case errors.Is(err, webhook.ErrInvalidHeader):
		return "malformed signature header"
	case errors.Is(err, webhook.ErrTooOld):
		return "signature timestamp outside tolerance"
	case errors.Is(err, webhook.ErrNoValidSignature):
		return "no matching signature"
	default:
		return "invalid signature"
	}
}
