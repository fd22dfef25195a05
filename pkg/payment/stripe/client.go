package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v81"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
)

// Client creates Checkout Sessions through stripe-go with a per-instance
// backend, so tests and multiple accounts never share the global key.
type Client struct {
	config   Config
	sessions *checkoutsession.Client
}

// NewClient creates a new Stripe client with the given configuration
func NewClient(config Config) (*Client, error) {
	config.normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, &stripeapi.BackendConfig{
		URL:               stripeapi.String(config.APIBaseURL),
		HTTPClient:        &http.Client{Timeout: config.HTTPTimeout},
		MaxNetworkRetries: stripeapi.Int64(config.MaxNetworkRetries),
		LeveledLogger:     leveledLogger{},
	})

	return &Client{
		config:   config,
		sessions: &checkoutsession.Client{B: backend, Key: config.SecretKey},
	}, nil
}

// CreateCheckoutSession creates a hosted Checkout Session in payment mode.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	params, err := c.sessionParams(req)
	if err != nil {
		return nil, err
	}
	params.Context = ctx

	session, err := c.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", translateError(err))
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("%w: missing session id or url", ErrResponseInvalid)
	}

	return &CheckoutSession{
		ID:                session.ID,
		Object:            session.Object,
		URL:               session.URL,
		Status:            string(session.Status),
		PaymentStatus:     string(session.PaymentStatus),
		AmountTotal:       session.AmountTotal,
		Currency:          string(session.Currency),
		ClientReferenceID: session.ClientReferenceID,
		Metadata:          session.Metadata,
	}, nil
}

func (c *Client) sessionParams(req CheckoutSessionRequest) (*stripeapi.CheckoutSessionParams, error) {
	if len(req.LineItems) == 0 {
		return nil, fmt.Errorf("%w: at least one line item is required", ErrConfigInvalid)
	}

	successURL := strings.TrimSpace(req.SuccessURL)
	if successURL == "" {
		successURL = c.config.SuccessURL
	}
	cancelURL := strings.TrimSpace(req.CancelURL)
	if cancelURL == "" {
		cancelURL = c.config.CancelURL
	}
	if successURL == "" || cancelURL == "" {
		return nil, fmt.Errorf("%w: success and cancel urls are required", ErrConfigInvalid)
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL: stripeapi.String(successURL),
		CancelURL:  stripeapi.String(cancelURL),
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripeapi.String(req.ClientReferenceID)
	}

	for i, item := range req.LineItems {
		if item.Quantity <= 0 || item.UnitAmount < 0 {
			return nil, fmt.Errorf("%w: line item %d has invalid quantity or amount", ErrConfigInvalid, i)
		}
		productData := &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripeapi.String(item.Name),
		}
		// Stripe rejects the whole session when an image is not an absolute URL
		if IsAbsoluteHTTPURL(item.ImageURL) {
			productData.Images = stripeapi.StringSlice([]string{item.ImageURL})
		}
		params.LineItems = append(params.LineItems, &stripeapi.CheckoutSessionLineItemParams{
			Quantity: stripeapi.Int64(int64(item.Quantity)),
			PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripeapi.String(c.config.Currency),
				UnitAmount:  stripeapi.Int64(item.UnitAmount),
				ProductData: productData,
			},
		})
	}

	if len(req.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(req.Metadata))
		for k, v := range req.Metadata {
			params.Metadata[k] = v
		}
	}
	return params, nil
}

// translateError maps stripe-go errors onto the package sentinels.
func translateError(err error) error {
	var stripeErr *stripeapi.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == 0 {
			return fmt.Errorf("%w: %v", ErrRequestFailed, stripeErr.Msg)
		}
		return &APIError{
			StatusCode: stripeErr.HTTPStatusCode,
			Type:       string(stripeErr.Type),
			Code:       string(stripeErr.Code),
			Message:    stripeErr.Msg,
		}
	}
	return fmt.Errorf("%w: %v", ErrRequestFailed, err)
}
