package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

func newPaymentMethodRouter(fb *fakeBilling) *gin.Engine {
	common := NewCommonServices(fb, zap.NewNop())
	handler := NewPaymentMethodHandler(common)

	r := gin.New()
	r.GET("/payment_methods", handler.ListPaymentMethods)
	r.GET("/payment_methods/:payment_method_id", handler.GetPaymentMethod)
	r.POST("/payment_methods/:payment_method_id/attach", handler.AttachPaymentMethod)
	r.POST("/payment_methods/:payment_method_id/detach", handler.DetachPaymentMethod)
	return r
}

func TestGetPaymentMethod(t *testing.T) {
	fb := &fakeBilling{
		getPaymentMethodFn: func(ctx context.Context, externalID string) (billing.PaymentMethod, error) {
			return billing.PaymentMethod{
				ExternalID: externalID,
				Type:       "card",
				Card:       &billing.Card{Brand: "visa", Last4: "4242"},
			}, nil
		},
	}
	r := newPaymentMethodRouter(fb)

	req := httptest.NewRequest(http.MethodGet, "/payment_methods/pm_123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "4242")
}

func TestListPaymentMethods(t *testing.T) {
	t.Run("requires customer_id", func(t *testing.T) {
		r := newPaymentMethodRouter(&fakeBilling{})

		req := httptest.NewRequest(http.MethodGet, "/payment_methods", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "customer_id")
	})

	t.Run("lists for a customer", func(t *testing.T) {
		var seen billing.ListParams
		fb := &fakeBilling{
			listPaymentMethodsFn: func(ctx context.Context, params billing.ListParams) ([]billing.PaymentMethod, bool, error) {
				seen = params
				return []billing.PaymentMethod{{ExternalID: "pm_1", Type: "card"}}, false, nil
			},
		}
		r := newPaymentMethodRouter(fb)

		req := httptest.NewRequest(http.MethodGet, "/payment_methods?customer_id=cus_1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cus_1", seen.CustomerID)
		assert.Contains(t, w.Body.String(), "pm_1")
	})
}

func TestAttachPaymentMethod(t *testing.T) {
	t.Run("attaches to the given customer", func(t *testing.T) {
		var gotPM, gotCustomer string
		fb := &fakeBilling{
			attachPaymentMethodFn: func(ctx context.Context, externalID, customerExternalID string) (billing.PaymentMethod, error) {
				gotPM, gotCustomer = externalID, customerExternalID
				return billing.PaymentMethod{ExternalID: externalID, CustomerID: customerExternalID}, nil
			},
		}
		r := newPaymentMethodRouter(fb)

		req := httptest.NewRequest(http.MethodPost, "/payment_methods/pm_123/attach", bytes.NewBufferString(`{"customer_id":"cus_1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pm_123", gotPM)
		assert.Equal(t, "cus_1", gotCustomer)
	})

	t.Run("rejects missing customer_id", func(t *testing.T) {
		r := newPaymentMethodRouter(&fakeBilling{})

		req := httptest.NewRequest(http.MethodPost, "/payment_methods/pm_123/attach", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDetachPaymentMethod(t *testing.T) {
	fb := &fakeBilling{
		detachPaymentMethodFn: func(ctx context.Context, externalID string) (billing.PaymentMethod, error) {
			return billing.PaymentMethod{ExternalID: externalID}, nil
		},
	}
	r := newPaymentMethodRouter(fb)

	req := httptest.NewRequest(http.MethodPost, "/payment_methods/pm_123/detach", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pm_123")
}
