package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/payment/stripe"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidEventPayload = errors.New("invalid payment event payload")
	ErrOrderFinalization   = errors.New("order finalization failed")
)

const paymentProviderStripe = "stripe"

// EventLocker guards a payment event against concurrent redelivery.
type EventLocker interface {
	Acquire(ctx context.Context, name string) (release func(), ok bool, err error)
}

type OrderService interface {
	HandlePaymentEvent(ctx context.Context, event *stripe.Event) (*model.Order, error)
	ListOrders(ctx context.Context, ownerID string) ([]model.Order, error)
	GetOrder(ctx context.Context, ownerID string, orderID uint) (*model.Order, error)
	PrunePaymentEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	eventRepo   repository.PaymentEventRepository
	locker      EventLocker
	currency    string
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	eventRepo repository.PaymentEventRepository,
	locker EventLocker,
	currency string,
) OrderService {
	if currency == "" {
		currency = "usd"
	}
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		eventRepo:   eventRepo,
		locker:      locker,
		currency:    currency,
	}
}

// HandlePaymentEvent turns a completed checkout session into a paid order.
// It returns a nil order when the event is ignored or was already applied.
func (s *orderService) HandlePaymentEvent(ctx context.Context, event *stripe.Event) (order *model.Order, err error) {
	if event == nil {
		return nil, ErrInvalidEventPayload
	}
	if event.Type != stripe.EventCheckoutSessionCompleted {
		logger.Debug("Ignoring payment event", map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		})
		return nil, nil
	}

	session, err := event.CheckoutSession()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEventPayload, err)
	}

	ownerID := session.Metadata[MetadataUserID]
	if ownerID == "" {
		logger.Warn("Checkout session without owner, acknowledging", map[string]interface{}{
			"event_id":   event.ID,
			"session_id": session.ID,
		})
		return nil, nil
	}

	items, err := parseMetadataItems(session.Metadata[MetadataItems])
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, "payment-event:"+event.ID)
		switch {
		case err != nil:
			logger.Warn("Event lock unavailable, relying on database idempotency", map[string]interface{}{
				"event_id": event.ID,
				"error":    err.Error(),
			})
		case !ok:
			logger.Info("Payment event already in flight", map[string]interface{}{
				"event_id": event.ID,
			})
			return nil, nil
		default:
			defer release()
		}
	}

	currency := session.Currency
	if currency == "" {
		currency = s.currency
	}
	total := model.NewMoney(stripe.FromMinorUnits(session.AmountTotal, currency))

	logger.Info("Finalizing order from payment event", map[string]interface{}{
		"event_id":   event.ID,
		"session_id": session.ID,
		"user_id":    ownerID,
		"item_count": len(items),
	})

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			order = nil
			err = fmt.Errorf("%w: panic: %v", ErrOrderFinalization, r)
			logger.Error("Panic during order finalization, rolling back", err, map[string]interface{}{
				"event_id": event.ID,
			})
		}
	}()

	eventRepo := s.eventRepo.WithTx(tx)
	record := &model.PaymentEvent{
		Provider:  paymentProviderStripe,
		EventID:   event.ID,
		EventType: event.Type,
		SessionID: session.ID,
	}
	if err := eventRepo.Record(ctx, record); err != nil {
		tx.Rollback()
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Info("Payment event already processed", map[string]interface{}{
				"event_id": event.ID,
			})
			return nil, nil
		}
		return nil, err
	}

	order = &model.Order{
		UserID:           ownerID,
		Status:           model.OrderStatusPaid,
		PaymentStatus:    model.PaymentStatusPaid,
		SubtotalAmount:   total,
		DiscountAmount:   model.MustMoney("0"),
		ShippingAmount:   model.MustMoney("0"),
		TotalAmount:      total,
		Currency:         currency,
		PaymentProvider:  paymentProviderStripe,
		PaymentSessionID: session.ID,
	}
	orderRepo := s.orderRepo.WithTx(tx)
	if err := orderRepo.Create(ctx, order); err != nil {
		tx.Rollback()
		return nil, err
	}

	productRepo := s.productRepo.WithTx(tx)
	orderItems := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		product, err := productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Skipping order item for missing product", map[string]interface{}{
					"event_id":   event.ID,
					"product_id": item.ProductID,
				})
				continue
			}
			tx.Rollback()
			return nil, err
		}
		orderItems = append(orderItems, model.OrderItem{
			OrderID:             order.ID,
			ProductID:           product.ID,
			TitleSnapshot:       product.Title,
			ImgSnapshot:         product.PrimaryImage(),
			UnitPrice:           product.Price,
			UnitDiscountedPrice: product.DiscountedPrice,
			Quantity:            item.Quantity,
		})
	}
	if err := orderRepo.CreateItems(ctx, orderItems); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := eventRepo.AttachOrder(ctx, event.ID, order.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	cartRepo := s.cartRepo.WithTx(tx)
	cart, err := cartRepo.FindByUserID(ctx, ownerID)
	switch {
	case err == nil:
		if err := cartRepo.ClearItems(ctx, cart.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order finalization", err, map[string]interface{}{
			"event_id": event.ID,
		})
		return nil, err
	}

	order.Items = orderItems
	logger.Info("Order finalized", map[string]interface{}{
		"order_id":   order.ID,
		"user_id":    ownerID,
		"total":      order.TotalAmount.String(),
		"item_count": len(orderItems),
	})
	return order, nil
}

type metadataItem struct {
	ProductID *uint `json:"productId"`
	Quantity  *int  `json:"quantity"`
}

// parseMetadataItems drops entries without a product id or a positive
// quantity and merges repeated product ids.
func parseMetadataItems(raw string) ([]CheckoutMetadataItem, error) {
	if raw == "" {
		return nil, nil
	}

	var entries []metadataItem
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w: items metadata: %v", ErrInvalidEventPayload, err)
	}

	merged := make([]CheckoutMetadataItem, 0, len(entries))
	index := make(map[uint]int, len(entries))
	for _, entry := range entries {
		if entry.ProductID == nil || *entry.ProductID == 0 || entry.Quantity == nil || *entry.Quantity <= 0 {
			continue
		}
		if i, ok := index[*entry.ProductID]; ok {
			merged[i].Quantity += *entry.Quantity
			continue
		}
		index[*entry.ProductID] = len(merged)
		merged = append(merged, CheckoutMetadataItem{ProductID: *entry.ProductID, Quantity: *entry.Quantity})
	}
	return merged, nil
}

func (s *orderService) ListOrders(ctx context.Context, ownerID string) ([]model.Order, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	return s.orderRepo.FindByUserID(ctx, ownerID)
}

func (s *orderService) GetOrder(ctx context.Context, ownerID string, orderID uint) (*model.Order, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	order, err := s.orderRepo.FindByIDAndUser(ctx, orderID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// PrunePaymentEvents deletes idempotency records older than the retention window.
func (s *orderService) PrunePaymentEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	deleted, err := s.eventRepo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to prune payment events", err, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, err
	}

	logger.Info("Pruned payment events", map[string]interface{}{
		"deleted": deleted,
		"cutoff":  cutoff,
	})
	return deleted, nil
}
