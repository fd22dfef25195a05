package stripe

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAPIBaseURL       = "https://api.stripe.com"
	DefaultWebhookTolerance = 5 * time.Minute
	defaultHTTPTimeout      = 15 * time.Second
)

// Config represents the configuration for the Stripe client
type Config struct {
	// SecretKey authenticates API calls (sk_live_... / sk_test_...)
	SecretKey string

	// APIBaseURL defaults to https://api.stripe.com
	APIBaseURL string

	// Currency is the ISO code used for line items, lower case
	Currency string

	// SuccessURL and CancelURL are used when a request does not carry its own.
	// SuccessURL may contain the {CHECKOUT_SESSION_ID} placeholder.
	SuccessURL string
	CancelURL  string

	HTTPTimeout time.Duration

	// MaxNetworkRetries is handed to stripe-go, which retries with an idempotency key
	MaxNetworkRetries int64
}

func (c *Config) normalize() {
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	c.Currency = strings.ToLower(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = "usd"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	if c.MaxNetworkRetries < 0 {
		c.MaxNetworkRetries = 0
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("%w: secret key is required", ErrConfigInvalid)
	}
	if !IsAbsoluteHTTPURL(c.APIBaseURL) {
		return fmt.Errorf("%w: api base url is invalid", ErrConfigInvalid)
	}
	if c.SuccessURL != "" {
		placeholderFree := strings.ReplaceAll(c.SuccessURL, "{CHECKOUT_SESSION_ID}", "cs_placeholder")
		if _, err := url.ParseRequestURI(placeholderFree); err != nil {
			return fmt.Errorf("%w: success url is invalid", ErrConfigInvalid)
		}
	}
	if c.CancelURL != "" {
		if _, err := url.ParseRequestURI(c.CancelURL); err != nil {
			return fmt.Errorf("%w: cancel url is invalid", ErrConfigInvalid)
		}
	}
	return nil
}

// IsAbsoluteHTTPURL reports whether raw is an http(s) URL with a host.
func IsAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
