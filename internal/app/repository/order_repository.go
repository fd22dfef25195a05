package repository

import (
	"context"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *model.Order) error
	CreateItems(ctx context.Context, items []model.OrderItem) error
	FindByUserID(ctx context.Context, userID string) ([]model.Order, error)
	FindByIDAndUser(ctx context.Context, id uint, userID string) (*model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id": order.UserID,
		"total":   order.TotalAmount.String(),
	})

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) CreateItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error; err != nil {
		logger.Error("Failed to create order items in database", err, map[string]interface{}{
			"order_id": items[0].OrderID,
			"count":    len(items),
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	orders := []model.Order{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindByIDAndUser(ctx context.Context, id uint, userID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("ShippingAddress").
		Preload("BillingAddress").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
