package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/payment/stripe"
	"gorm.io/gorm"
)

var (
	ErrMissingFields       = errors.New("missing productId or quantity")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrInvalidCheckoutMode = errors.New("invalid checkout mode")
	ErrPaymentProvider     = errors.New("payment provider error")
)

type CheckoutMode string

const (
	CheckoutModeCart   CheckoutMode = "cart"
	CheckoutModeSingle CheckoutMode = "single"
)

// Metadata keys shared by checkout and the order finalizer.
const (
	MetadataUserID       = "userId"
	MetadataCheckoutMode = "checkoutMode"
	MetadataItems        = "items"
)

// PaymentGateway creates hosted checkout sessions.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req stripe.CheckoutSessionRequest) (*stripe.CheckoutSession, error)
}

type CheckoutRequest struct {
	Mode       CheckoutMode
	ProductID  uint
	Quantity   int
	SuccessURL string
	CancelURL  string
}

type CheckoutResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutMetadataItem is one entry of the items metadata payload.
type CheckoutMetadataItem struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type CheckoutOptions struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	// AssetBaseURL resolves relative image paths such as /images/a.png
	AssetBaseURL string
}

type CheckoutService interface {
	CreateSession(ctx context.Context, ownerID string, req CheckoutRequest) (*CheckoutResult, error)
}

type checkoutService struct {
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	gateway     PaymentGateway
	options     CheckoutOptions
	assetBase   *url.URL
}

func NewCheckoutService(
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	gateway PaymentGateway,
	options CheckoutOptions,
) CheckoutService {
	if options.Currency == "" {
		options.Currency = "usd"
	}
	svc := &checkoutService{
		productRepo: productRepo,
		cartRepo:    cartRepo,
		gateway:     gateway,
		options:     options,
	}
	if stripe.IsAbsoluteHTTPURL(options.AssetBaseURL) {
		svc.assetBase, _ = url.Parse(strings.TrimSpace(options.AssetBaseURL))
	}
	return svc
}

func (s *checkoutService) CreateSession(ctx context.Context, ownerID string, req CheckoutRequest) (*CheckoutResult, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	mode := CheckoutMode(strings.ToLower(strings.TrimSpace(string(req.Mode))))
	if mode == "" {
		mode = CheckoutModeCart
	}

	var (
		lines    []stripe.LineItem
		metadata []CheckoutMetadataItem
		err      error
	)
	switch mode {
	case CheckoutModeSingle:
		lines, metadata, err = s.singleLines(ctx, req)
	case CheckoutModeCart:
		lines, metadata, err = s.cartLines(ctx, ownerID)
	default:
		return nil, ErrInvalidCheckoutMode
	}
	if err != nil {
		return nil, err
	}

	itemsJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	sessionReq := stripe.CheckoutSessionRequest{
		LineItems: lines,
		Metadata: map[string]string{
			MetadataUserID:       ownerID,
			MetadataCheckoutMode: string(mode),
			MetadataItems:        string(itemsJSON),
		},
		SuccessURL:        firstNonEmpty(req.SuccessURL, s.options.SuccessURL),
		CancelURL:         firstNonEmpty(req.CancelURL, s.options.CancelURL),
		ClientReferenceID: ownerID,
	}

	if s.gateway == nil {
		logger.Error("Checkout requested without a payment gateway", ErrPaymentProvider)
		return nil, ErrPaymentProvider
	}

	logger.Info("Creating checkout session", map[string]interface{}{
		"user_id":    ownerID,
		"mode":       mode,
		"line_count": len(lines),
	})

	session, err := s.gateway.CreateCheckoutSession(ctx, sessionReq)
	if err != nil {
		logger.Error("Failed to create checkout session", err, map[string]interface{}{
			"user_id": ownerID,
			"mode":    mode,
		})
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	logger.Info("Checkout session created", map[string]interface{}{
		"user_id":    ownerID,
		"session_id": session.ID,
	})
	return &CheckoutResult{ID: session.ID, URL: session.URL}, nil
}

func (s *checkoutService) singleLines(ctx context.Context, req CheckoutRequest) ([]stripe.LineItem, []CheckoutMetadataItem, error) {
	if req.ProductID == 0 || req.Quantity <= 0 {
		return nil, nil, ErrMissingFields
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, err
	}

	lines := []stripe.LineItem{{
		Name:       product.Title,
		ImageURL:   s.imageURL(product.PrimaryImage()),
		UnitAmount: stripe.ToMinorUnits(product.DiscountedPrice.Decimal, s.options.Currency),
		Quantity:   req.Quantity,
	}}
	metadata := []CheckoutMetadataItem{{ProductID: product.ID, Quantity: req.Quantity}}
	return lines, metadata, nil
}

// cartLines prices every line from the product's current discounted price,
// not from the snapshot taken when the line was added.
func (s *checkoutService) cartLines(ctx context.Context, ownerID string) ([]stripe.LineItem, []CheckoutMetadataItem, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCartEmpty
		}
		return nil, nil, err
	}

	items, err := s.cartRepo.FindItems(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		logger.Warn("Checkout attempted with empty cart", map[string]interface{}{
			"user_id": ownerID,
		})
		return nil, nil, ErrCartEmpty
	}

	lines := make([]stripe.LineItem, 0, len(items))
	metadata := make([]CheckoutMetadataItem, 0, len(items))
	for _, item := range items {
		name := item.TitleSnapshot
		price := item.UnitDiscountedPrice
		if item.Product != nil {
			name = item.Product.Title
			price = item.Product.DiscountedPrice
		}
		lines = append(lines, stripe.LineItem{
			Name:       name,
			ImageURL:   s.imageURL(item.ImgSnapshot),
			UnitAmount: stripe.ToMinorUnits(price.Decimal, s.options.Currency),
			Quantity:   item.Quantity,
		})
		metadata = append(metadata, CheckoutMetadataItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines, metadata, nil
}

// imageURL returns raw as an absolute http(s) URL, resolving relative paths
// against AssetBaseURL. Anything that stays relative is dropped.
func (s *checkoutService) imageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || stripe.IsAbsoluteHTTPURL(raw) {
		return raw
	}
	if s.assetBase == nil {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := s.assetBase.ResolveReference(ref).String()
	if !stripe.IsAbsoluteHTTPURL(resolved) {
		return ""
	}
	return resolved
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
