package stripe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81/webhook"
)

// WebhookVerifier checks webhook deliveries with only the signing secret,
// so webhooks can be verified on instances without an API key.
type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
}

// NewWebhookVerifier returns a verifier for secret. A zero tolerance uses
// DefaultWebhookTolerance.
func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	if tolerance <= 0 {
		tolerance = DefaultWebhookTolerance
	}
	return &WebhookVerifier{
		secret:    strings.TrimSpace(secret),
		tolerance: tolerance,
	}
}

// ConstructEvent checks the Stripe-Signature header against payload and
// decodes the event envelope. The payload's API version is not compared
// with the library's, since only the session subset is read.
func (v *WebhookVerifier) ConstructEvent(payload []byte, signatureHeader string) (*Event, error) {
	if v.secret == "" {
		return nil, fmt.Errorf("%w: webhook secret is required", ErrConfigInvalid)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		return nil, fmt.Errorf("%w: decode event: %v", ErrResponseInvalid, err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("%w: event id and type are required", ErrResponseInvalid)
	}

	out := &Event{
		ID:      event.ID,
		Type:    string(event.Type),
		Created: event.Created,
	}
	if event.Data != nil {
		out.Data.Object = event.Data.Raw
	}
	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld) ||
		errors.Is(err, webhook.ErrInvalidHeader)
}

// SignatureHeader builds a Stripe-Signature header for payload signed at
// the given time, as Stripe would send it.
func SignatureHeader(secret string, payload []byte, at time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	})
	return signed.Header
}
