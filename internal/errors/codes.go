package errors

// Error codes returned alongside the human-readable message.
// Format: CATEGORY_SPECIFIC_DETAIL
const (
	// Authentication
	AuthUnauthorized = "AUTH_UNAUTHORIZED"
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"

	// Validation
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFilter = "VALIDATION_INVALID_FILTER"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// Resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Catalog
	ProductNotFound = "PRODUCT_NOT_FOUND"

	// Cart and wishlist
	CartNotFound          = "CART_NOT_FOUND"
	CartEmpty             = "CART_EMPTY"
	CartInvalidQuantity   = "CART_INVALID_QUANTITY"
	WishlistAlreadyExists = "WISHLIST_ALREADY_EXISTS"

	// Checkout and orders
	CheckoutMissingFields = "CHECKOUT_MISSING_FIELDS"
	CheckoutInvalidMode   = "CHECKOUT_INVALID_MODE"
	OrderNotFound         = "ORDER_NOT_FOUND"

	// Payment webhooks
	WebhookSignatureInvalid = "WEBHOOK_SIGNATURE_INVALID"
	WebhookPayloadInvalid   = "WEBHOOK_PAYLOAD_INVALID"

	// Internal
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
