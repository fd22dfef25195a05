package stripe

import (
	"encoding/json"
	"fmt"
)

const EventCheckoutSessionCompleted = "checkout.session.completed"

// LineItem is one priced line of a checkout session. UnitAmount is in minor units.
type LineItem struct {
	Name       string
	ImageURL   string
	UnitAmount int64
	Quantity   int
}

// CheckoutSessionRequest represents the parameters for creating a Checkout Session
type CheckoutSessionRequest struct {
	LineItems         []LineItem
	Metadata          map[string]string
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
}

// CheckoutSession is the subset of the Checkout Session object the store reads.
type CheckoutSession struct {
	ID                string            `json:"id"`
	Object            string            `json:"object"`
	URL               string            `json:"url"`
	Status            string            `json:"status"`
	PaymentStatus     string            `json:"payment_status"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

// Event is a webhook event envelope.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession decodes the event object as a Checkout Session.
func (e *Event) CheckoutSession() (*CheckoutSession, error) {
	if len(e.Data.Object) == 0 {
		return nil, fmt.Errorf("%w: event has no data object", ErrResponseInvalid)
	}
	var session CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &session); err != nil {
		return nil, fmt.Errorf("%w: decode checkout session: %v", ErrResponseInvalid, err)
	}
	if session.Metadata == nil {
		session.Metadata = map[string]string{}
	}
	return &session, nil
}
