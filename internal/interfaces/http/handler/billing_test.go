package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	appbilling "github.com/appforge/backend/internal/application/billing"
	"github.com/appforge/backend/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"
)

const testWebhookSecret = "whsec_test_secret"

type observed struct {
	eventType, result string
}

func newWebhookRouter(t *testing.T) (*gin.Engine, *[]observed) {
	t.Helper()
	kv := cache.NewMemoryKV()
	t.Cleanup(func() { _ = kv.Close() })

	var seen []observed
	webhooks := appbilling.NewStripeWebhookService(appbilling.StripeWebhookServiceConfig{
		WebhookSecret: testWebhookSecret,
		Idempotency:   cache.NewKVIdempotencyStore(kv, ""),
	})
	h := NewBillingHandler(nil, webhooks, func(eventType, result string) {
		seen = append(seen, observed{eventType, result})
	})

	r := gin.New()
	r.POST("/webhooks/stripe", h.StripeWebhook)
	r.POST("/billing/checkout", h.Checkout)
	r.GET("/billing/subscription", h.Subscription)
	return r, &seen
}

func postWebhook(r http.Handler, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBillingHandler_StripeWebhook(t *testing.T) {
	r, seen := newWebhookRouter(t)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(`{"id":"evt_1","object":"event","type":"customer.created","data":{"object":{}}}`),
		Secret:  testWebhookSecret,
	})

	w := postWebhook(r, signed.Payload, signed.Header)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res appbilling.WebhookResult
	decode(t, w, &res)
	assert.Equal(t, "evt_1", res.EventID)
	assert.True(t, res.Processed)

	w = postWebhook(r, signed.Payload, signed.Header)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.True(t, res.Duplicate)

	assert.Equal(t, []observed{
		{"customer.created", "processed"},
		{"customer.created", "duplicate"},
	}, *seen)
}

func TestBillingHandler_StripeWebhook_BadSignature(t *testing.T) {
	r, seen := newWebhookRouter(t)
	payload := []byte(`{"id":"evt_2","object":"event","type":"invoice.paid"}`)

	w := postWebhook(r, payload, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postWebhook(r, payload, "t=1,v1=deadbeef")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Len(t, *seen, 2)
	assert.Equal(t, "rejected", (*seen)[0].result)
}

func TestBillingHandler_RequiresSession(t *testing.T) {
	r, _ := newWebhookRouter(t)

	w := doJSON(t, r, http.MethodPost, "/billing/checkout", CheckoutRequest{Tier: "pro", Interval: "month"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/billing/subscription", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
