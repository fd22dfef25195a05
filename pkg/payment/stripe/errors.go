package stripe

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigInvalid is returned when the client or request configuration is unusable
	ErrConfigInvalid = errors.New("stripe config invalid")

	// ErrRequestFailed is returned when the API could not be reached
	ErrRequestFailed = errors.New("stripe request failed")

	// ErrResponseInvalid is returned when the API answered with something unexpected
	ErrResponseInvalid = errors.New("stripe response invalid")

	// ErrSignatureInvalid is returned when a webhook signature does not verify
	ErrSignatureInvalid = errors.New("stripe signature invalid")
)

// APIError is the error object Stripe returns with non-2xx responses.
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe api error: status=%d type=%s code=%s msg=%s", e.StatusCode, e.Type, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrResponseInvalid
}
