package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/payment/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func completedEvent(t *testing.T, eventID string, session stripe.CheckoutSession) *stripe.Event {
	data, err := json.Marshal(session)
	require.NoError(t, err)

	event := &stripe.Event{
		ID:      eventID,
		Type:    stripe.EventCheckoutSessionCompleted,
		Created: time.Now().Unix(),
	}
	event.Data.Object = data
	return event
}

func TestOrderService_EndToEndCartCheckout(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	productA := createTestProduct(t, f.db, "a", "10.00", "8.00")
	productB := createTestProduct(t, f.db, "b", "5.00", "5.00")

	require.NoError(t, f.cart.AddItem(ctx, "user_1", productA.ID, 2))
	require.NoError(t, f.cart.AddItem(ctx, "user_1", productB.ID, 1))

	result, err := f.checkout.CreateSession(ctx, "user_1", CheckoutRequest{})
	require.NoError(t, err)

	req := f.gateway.last()
	var amountTotal int64
	for _, line := range req.LineItems {
		amountTotal += line.UnitAmount * int64(line.Quantity)
	}
	assert.Equal(t, int64(2100), amountTotal)
	assert.Equal(t, "cart", req.Metadata[MetadataCheckoutMode])

	event := completedEvent(t, "evt_1", stripe.CheckoutSession{
		ID:            result.ID,
		Status:        "complete",
		PaymentStatus: "paid",
		AmountTotal:   amountTotal,
		Currency:      "usd",
		Metadata:      req.Metadata,
	})

	order, err := f.orders.HandlePaymentEvent(ctx, event)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, model.OrderStatusPaid, order.Status)
	assert.Equal(t, model.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, "21.00", order.TotalAmount.String())
	assert.Equal(t, "21.00", order.SubtotalAmount.String())
	assert.True(t, order.DiscountAmount.IsZero())
	assert.True(t, order.ShippingAmount.IsZero())
	assert.Equal(t, result.ID, order.PaymentSessionID)

	orders, err := f.orders.ListOrders(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, productA.ID, orders[0].Items[0].ProductID)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
	assert.Equal(t, productB.ID, orders[0].Items[1].ProductID)

	items, err := f.cart.ListCartItems(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, items)

	var carts int64
	f.db.Model(&model.Cart{}).Where("user_id = ?", "user_1").Count(&carts)
	assert.Equal(t, int64(1), carts, "cart row persists")

	var stored model.PaymentEvent
	require.NoError(t, f.db.Where("event_id = ?", "evt_1").First(&stored).Error)
	require.NotNil(t, stored.OrderID)
	assert.Equal(t, order.ID, *stored.OrderID)

	t.Run("redelivery is a no-op", func(t *testing.T) {
		again, err := f.orders.HandlePaymentEvent(ctx, event)
		require.NoError(t, err)
		assert.Nil(t, again)

		var count int64
		f.db.Model(&model.Order{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}

func TestOrderService_IgnoresOtherEventsAndMissingOwner(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	order, err := f.orders.HandlePaymentEvent(ctx, &stripe.Event{ID: "evt_x", Type: "payment_intent.created"})
	require.NoError(t, err)
	assert.Nil(t, order)

	order, err = f.orders.HandlePaymentEvent(ctx, completedEvent(t, "evt_y", stripe.CheckoutSession{
		ID:          "cs_1",
		AmountTotal: 500,
		Metadata:    map[string]string{MetadataItems: `[{"productId":1,"quantity":1}]`},
	}))
	require.NoError(t, err)
	assert.Nil(t, order)

	var orders, events int64
	f.db.Model(&model.Order{}).Count(&orders)
	f.db.Model(&model.PaymentEvent{}).Count(&events)
	assert.Zero(t, orders)
	assert.Zero(t, events)
}

func TestOrderService_SkipsIncompleteAndMissingEntries(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	product := createTestProduct(t, f.db, "kept", "4.00", "4.00")

	items := fmt.Sprintf(`[{"productId":%d,"quantity":1},{"productId":%d},{"quantity":2},{"productId":98765,"quantity":1},{"productId":%d,"quantity":2}]`,
		product.ID, product.ID, product.ID)
	order, err := f.orders.HandlePaymentEvent(ctx, completedEvent(t, "evt_2", stripe.CheckoutSession{
		ID:          "cs_2",
		AmountTotal: 1200,
		Currency:    "usd",
		Metadata:    map[string]string{MetadataUserID: "user_5", MetadataItems: items},
	}))
	require.NoError(t, err)
	require.NotNil(t, order)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, "Product kept", order.Items[0].TitleSnapshot)
	assert.Equal(t, "12.00", order.TotalAmount.String())
}

func TestOrderService_MalformedItems(t *testing.T) {
	f := setupCheckoutTest(t)

	_, err := f.orders.HandlePaymentEvent(context.Background(), completedEvent(t, "evt_3", stripe.CheckoutSession{
		ID:       "cs_3",
		Metadata: map[string]string{MetadataUserID: "user_1", MetadataItems: "not-json"},
	}))
	assert.ErrorIs(t, err, ErrInvalidEventPayload)
}

func TestOrderService_GetOrder(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	order, err := f.orders.HandlePaymentEvent(ctx, completedEvent(t, "evt_4", stripe.CheckoutSession{
		ID:          "cs_4",
		AmountTotal: 999,
		Currency:    "usd",
		Metadata:    map[string]string{MetadataUserID: "user_1"},
	}))
	require.NoError(t, err)
	require.NotNil(t, order)

	found, err := f.orders.GetOrder(ctx, "user_1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, "9.99", found.TotalAmount.String())

	_, err = f.orders.GetOrder(ctx, "user_2", order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_PrunePaymentEvents(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	require.NoError(t, f.db.Create(&model.PaymentEvent{
		EventID: "evt_old", EventType: stripe.EventCheckoutSessionCompleted,
		ProcessedAt: time.Now().Add(-60 * 24 * time.Hour),
	}).Error)
	require.NoError(t, f.db.Create(&model.PaymentEvent{
		EventID: "evt_new", EventType: stripe.EventCheckoutSessionCompleted,
		ProcessedAt: time.Now(),
	}).Error)

	deleted, err := f.orders.PrunePaymentEvents(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

type stubLocker struct {
	ok       bool
	released bool
}

func (l *stubLocker) Acquire(ctx context.Context, name string) (func(), bool, error) {
	return func() { l.released = true }, l.ok, nil
}

func TestOrderService_InFlightLockSkipsEvent(t *testing.T) {
	f := setupCheckoutTest(t)
	locker := &stubLocker{ok: false}
	svc := NewOrderService(f.db, nil, nil, nil, nil, locker, "usd")

	order, err := svc.HandlePaymentEvent(context.Background(), completedEvent(t, "evt_5", stripe.CheckoutSession{
		ID:       "cs_5",
		Metadata: map[string]string{MetadataUserID: "user_1"},
	}))
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.False(t, locker.released)
}

// panickingOrderRepo blows up inside the finalization transaction.
type panickingOrderRepo struct {
	repository.OrderRepository
}

func (r *panickingOrderRepo) WithTx(tx *gorm.DB) repository.OrderRepository { return r }

func (r *panickingOrderRepo) Create(ctx context.Context, order *model.Order) error {
	panic("order insert exploded")
}

func TestOrderService_PanicReturnsErrorAndRollsBack(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()
	product := createTestProduct(t, f.db, "a", "10.00", "8.00")

	svc := NewOrderService(
		f.db,
		&panickingOrderRepo{},
		repository.NewCartRepository(f.db),
		repository.NewProductRepository(f.db),
		repository.NewPaymentEventRepository(f.db),
		nil,
		"usd",
	)
	event := completedEvent(t, "evt_panic", stripe.CheckoutSession{
		ID:          "cs_panic",
		AmountTotal: 800,
		Currency:    "usd",
		Metadata: map[string]string{
			MetadataUserID: "user_1",
			MetadataItems:  fmt.Sprintf(`[{"productId":%d,"quantity":1}]`, product.ID),
		},
	})

	order, err := svc.HandlePaymentEvent(ctx, event)
	assert.ErrorIs(t, err, ErrOrderFinalization)
	assert.Nil(t, order)

	var events int64
	require.NoError(t, f.db.Model(&model.PaymentEvent{}).Count(&events).Error)
	assert.Zero(t, events, "event record rolled back so the redelivery is processed")

	order, err = f.orders.HandlePaymentEvent(ctx, event)
	require.NoError(t, err)
	require.NotNil(t, order)
}
