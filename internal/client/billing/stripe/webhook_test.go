package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload builds a signature header the way the platform documents it:
// an HMAC-SHA256 over "{timestamp}.{body}" keyed with the signing secret.
func signPayload(t *testing.T, body []byte, secret string, ts time.Time) string {
	t.Helper()

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), body)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func newTestService(t *testing.T) *StripeService {
	t.Helper()

	svc := NewStripeService(zap.NewNop())
	err := svc.Configure(Config{
		APIKey:           "sk_test_123",
		WebhookSecret:    testWebhookSecret,
		WebhookTolerance: DefaultWebhookTolerance,
	})
	require.NoError(t, err)
	return svc
}

func TestVerifyWebhook_ValidSignature(t *testing.T) {
	svc := newTestService(t)

	body := []byte(`{"id":"evt_1","type":"invoice.payment_failed","data":{"object":{"id":"in_123"}}}`)
	header := signPayload(t, body, testWebhookSecret, time.Now())

	event, err := svc.VerifyWebhook(body, header)
	require.NoError(t, err)

	assert.Equal(t, "evt_1", event.ProviderEventID)
	assert.Equal(t, "stripe", event.Provider)
	assert.Equal(t, "invoice.payment_failed", event.Type)
	assert.JSONEq(t, `{"id":"in_123"}`, string(event.Payload))
	assert.Equal(t, "in_123", event.Object["id"])
	assert.NotZero(t, event.ReceivedAt)
}

func TestVerifyWebhook_TamperedSignature(t *testing.T) {
	svc := newTestService(t)

	body := []byte(`{"type":"subscription.created","data":{"object":{"id":"sub_1"}}}`)
	header := signPayload(t, body, testWebhookSecret, time.Now())

	// Flip the last hex character of the signature.
	tampered := []byte(header)
	if tampered[len(tampered)-1] == 'a' {
		tampered[len(tampered)-1] = 'b'
	} else {
		tampered[len(tampered)-1] = 'a'
	}

	_, err := svc.VerifyWebhook(body, string(tampered))
	require.Error(t, err)
	assert.True(t, billing.IsSignatureError(err))
}

func TestVerifyWebhook_TamperedBody(t *testing.T) {
	svc := newTestService(t)

	body := []byte(`{"type":"subscription.created","data":{"object":{"id":"sub_1"}}}`)
	header := signPayload(t, body, testWebhookSecret, time.Now())

	tamperedBody := []byte(`{"type":"subscription.created","data":{"object":{"id":"sub_2"}}}`)

	_, err := svc.VerifyWebhook(tamperedBody, header)
	require.Error(t, err)
	assert.True(t, billing.IsSignatureError(err))
}

func TestVerifyWebhook_WrongSecret(t *testing.T) {
	svc := newTestService(t)

	body := []byte(`{"type":"subscription.deleted","data":{"object":{}}}`)
	header := signPayload(t, body, "whsec_other_secret", time.Now())

	_, err := svc.VerifyWebhook(body, header)
	require.Error(t, err)
	assert.True(t, billing.IsSignatureError(err))
}

func TestVerifyWebhook_StaleTimestamp(t *testing.T) {
	svc := newTestService(t)

	body := []byte(`{"type":"invoice.payment_succeeded","data":{"object":{"id":"in_9"}}}`)
	// Correctly signed but older than the tolerance window.
	header := signPayload(t, body, testWebhookSecret, time.Now().Add(-DefaultWebhookTolerance-time.Minute))

	_, err := svc.VerifyWebhook(body, header)
	require.Error(t, err)
	assert.True(t, billing.IsSignatureError(err))
	assert.Contains(t, err.Error(), "tolerance")
}

func TestVerifyWebhook_MissingHeader(t *testing.T) {
	svc := newTestService(t)

	body := []byte(`{"type":"invoice.payment_failed","data":{"object":{"id":"in_123"}}}`)

	_, err := svc.VerifyWebhook(body, "")
	require.Error(t, err)
	assert.True(t, billing.IsSignatureError(err))
	assert.Contains(t, err.Error(), "missing signature header")
}

func TestVerifyWebhook_MalformedHeader(t *testing.T) {
	svc := newTestService(t)

	body := []byte(`{"type":"invoice.payment_failed","data":{"object":{}}}`)

	_, err := svc.VerifyWebhook(body, "not-a-signature-header")
	require.Error(t, err)
	assert.True(t, billing.IsSignatureError(err))
}

func TestVerifyWebhook_MissingSecretFailsClosed(t *testing.T) {
	svc := NewStripeService(zap.NewNop())
	err := svc.Configure(Config{APIKey: "sk_test_123"})
	require.NoError(t, err)

	body := []byte(`{"type":"invoice.payment_failed","data":{"object":{}}}`)
	header := signPayload(t, body, testWebhookSecret, time.Now())

	_, verr := svc.VerifyWebhook(body, header)
	require.Error(t, verr)
	assert.True(t, billing.IsConfigError(verr))
	assert.False(t, billing.IsSignatureError(verr))
}

func TestVerifyWebhook_APIVersionDoesNotAffectVerification(t *testing.T) {
	svc := newTestService(t)

	// Payloads are relayed opaquely, so deliveries pinned to any platform
	// API version must verify, including ones with no api_version at all.
	bodies := map[string][]byte{
		"absent api_version":  []byte(`{"id":"evt_7","type":"invoice.payment_failed","data":{"object":{"id":"in_7"}}}`),
		"older api_version":   []byte(`{"id":"evt_8","api_version":"2020-08-27","type":"invoice.payment_failed","data":{"object":{"id":"in_8"}}}`),
		"unknown api_version": []byte(`{"id":"evt_9","api_version":"2099-01-01","type":"subscription.updated","data":{"object":{"id":"sub_9"}}}`),
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			header := signPayload(t, body, testWebhookSecret, time.Now())

			event, err := svc.VerifyWebhook(body, header)
			require.NoError(t, err)
			assert.NotEmpty(t, event.ProviderEventID)
		})
	}
}

func TestVerifyWebhook_UnknownTypeStillVerifies(t *testing.T) {
	svc := newTestService(t)

	body := []byte(`{"type":"some.unknown.event","data":{"object":{"id":"obj_1"}}}`)
	header := signPayload(t, body, testWebhookSecret, time.Now())

	event, err := svc.VerifyWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, "some.unknown.event", event.Type)
}
