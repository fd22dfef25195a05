package stripe

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"
)

const testWebhookSecret = "whsec_test_abc"

var completedPayload = []byte(`{
	"id": "evt_1",
	"object": "event",
	"type": "checkout.session.completed",
	"created": 1760000000,
	"data": {"object": {
		"object": "checkout.session",
		"id": "cs_test_1",
		"amount_total": 2100,
		"currency": "usd",
		"payment_status": "paid",
		"metadata": {"userId": "user_1", "checkoutMode": "cart", "items": "[{\"productId\":1,\"quantity\":2}]"}
	}}
}`)

func TestWebhookVerifier_Valid(t *testing.T) {
	verifier := NewWebhookVerifier(testWebhookSecret, 0)

	event, err := verifier.ConstructEvent(completedPayload, SignatureHeader(testWebhookSecret, completedPayload, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, event.Type)
	assert.Equal(t, int64(1760000000), event.Created)

	session, err := event.CheckoutSession()
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, int64(2100), session.AmountTotal)
	assert.Equal(t, "user_1", session.Metadata["userId"])
}

func TestWebhookVerifier_Rejects(t *testing.T) {
	verifier := NewWebhookVerifier(testWebhookSecret, 0)
	now := time.Now()
	valid := SignatureHeader(testWebhookSecret, completedPayload, now)

	tests := []struct {
		name    string
		payload []byte
		header  string
	}{
		{"missing header", completedPayload, ""},
		{"wrong secret", completedPayload, SignatureHeader("whsec_other", completedPayload, now)},
		{"tampered body", append([]byte(" "), completedPayload...), valid},
		{"stale timestamp", completedPayload, SignatureHeader(testWebhookSecret, completedPayload, now.Add(-10*time.Minute))},
		{"no v1", completedPayload, fmt.Sprintf("t=%d", now.Unix())},
		{"bad timestamp", completedPayload, "t=abc,v1=00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.ConstructEvent(tt.payload, tt.header)
			assert.ErrorIs(t, err, ErrSignatureInvalid)
		})
	}
}

func TestWebhookVerifier_Tolerance(t *testing.T) {
	header := SignatureHeader(testWebhookSecret, completedPayload, time.Now().Add(-10*time.Minute))

	_, err := NewWebhookVerifier(testWebhookSecret, time.Hour).ConstructEvent(completedPayload, header)
	assert.NoError(t, err)

	_, err = NewWebhookVerifier(testWebhookSecret, time.Minute).ConstructEvent(completedPayload, header)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestWebhookVerifier_MultipleSignatures(t *testing.T) {
	verifier := NewWebhookVerifier(testWebhookSecret, 0)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   completedPayload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%x", signed.Timestamp.Unix(), signed.Signature)

	_, err := verifier.ConstructEvent(completedPayload, header)
	assert.NoError(t, err)
}

func TestWebhookVerifier_RequiresSecret(t *testing.T) {
	_, err := NewWebhookVerifier(" ", 0).ConstructEvent(completedPayload, "t=1,v1=00")
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestWebhookVerifier_MalformedBody(t *testing.T) {
	verifier := NewWebhookVerifier(testWebhookSecret, 0)
	payload := []byte(`{"id":`)

	_, err := verifier.ConstructEvent(payload, SignatureHeader(testWebhookSecret, payload, time.Now()))
	assert.ErrorIs(t, err, ErrResponseInvalid)
	assert.NotErrorIs(t, err, ErrSignatureInvalid)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(800), ToMinorUnits(decimal.RequireFromString("8.00"), "usd"))
	assert.Equal(t, int64(1999), ToMinorUnits(decimal.RequireFromString("19.985"), "USD"))
	assert.Equal(t, int64(500), ToMinorUnits(decimal.RequireFromString("500"), "jpy"))
	assert.Equal(t, "21", FromMinorUnits(2100, "usd").String())
	assert.Equal(t, "0.99", FromMinorUnits(99, "usd").String())
}
