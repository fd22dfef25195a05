package repository

import (
	"context"
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUserID(ctx context.Context, userID string) (*model.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (*model.Cart, error)
	FindItems(ctx context.Context, cartID uint) ([]model.CartItem, error)
	IncrementItem(ctx context.Context, cartID, productID uint, quantity int) (bool, error)
	UpsertItem(ctx context.Context, item *model.CartItem) error
	SetItemQuantity(ctx context.Context, cartID, productID uint, quantity int) error
	DeleteItem(ctx context.Context, cartID, productID uint) error
	ClearItems(ctx context.Context, cartID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID string) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate inserts an active cart unless one exists, then reads the owner's cart.
// Concurrent callers converge on the same row through the unique user_id index.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID string) (*model.Cart, error) {
	cart := &model.Cart{UserID: userID, Status: model.CartStatusActive}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(cart).Error
	if err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	existing, err := r.FindByUserID(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart after get-or-create", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return existing, nil
}

func (r *cartRepository) FindItems(ctx context.Context, cartID uint) ([]model.CartItem, error) {
	items := []model.CartItem{}
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Preload("Product").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}

	logger.Debug("Cart items found in database", map[string]interface{}{
		"cart_id": cartID,
		"count":   len(items),
	})
	return items, nil
}

// IncrementItem adds quantity to an existing line. It reports false when no line exists.
func (r *cartRepository) IncrementItem(ctx context.Context, cartID, productID uint, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		logger.Error("Failed to increment cart item", result.Error, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpsertItem inserts a new line. If the (cart, product) pair already exists the
// quantities are summed and the stored snapshot is left as is.
func (r *cartRepository) UpsertItem(ctx context.Context, item *model.CartItem) error {
	logger.Debug("Upserting cart item in database", map[string]interface{}{
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": time.Now(),
			}),
		}).
		Create(item).Error
	if err != nil {
		logger.Error("Failed to upsert cart item in database", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID, productID uint, quantity int) error {
	err := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		logger.Error("Failed to set cart item quantity", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
			"quantity":   quantity,
		})
	}
	return err
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, productID uint) error {
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&model.CartItem{}).Error
	if err != nil {
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
	}
	return err
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uint) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to clear cart items", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}

	logger.Debug("Cart items cleared", map[string]interface{}{
		"cart_id": cartID,
	})
	return nil
}
