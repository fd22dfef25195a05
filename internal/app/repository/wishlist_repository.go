package repository

import (
	"context"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.Wishlist, error)
	GetOrCreate(ctx context.Context, userID string) (*model.Wishlist, error)
	FindItems(ctx context.Context, wishlistID uint) ([]model.WishlistItem, error)
	ExistsItem(ctx context.Context, wishlistID, productID uint) (bool, error)
	CreateItem(ctx context.Context, item *model.WishlistItem) error
	DeleteItem(ctx context.Context, wishlistID, productID uint) error
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) FindByUserID(ctx context.Context, userID string) (*model.Wishlist, error) {
	var wishlist model.Wishlist
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wishlist).Error; err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (r *wishlistRepository) GetOrCreate(ctx context.Context, userID string) (*model.Wishlist, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&model.Wishlist{UserID: userID}).Error
	if err != nil {
		logger.Error("Failed to create wishlist in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return r.FindByUserID(ctx, userID)
}

func (r *wishlistRepository) FindItems(ctx context.Context, wishlistID uint) ([]model.WishlistItem, error) {
	items := []model.WishlistItem{}
	err := r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Preload("Product").
		Preload("Product.Images", preloadImages).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find wishlist items", err, map[string]interface{}{
			"wishlist_id": wishlistID,
		})
		return nil, err
	}
	return items, nil
}

func (r *wishlistRepository) ExistsItem(ctx context.Context, wishlistID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateItem returns ErrDuplicate if the pair already exists.
func (r *wishlistRepository) CreateItem(ctx context.Context, item *model.WishlistItem) error {
	if item.Status == "" {
		item.Status = model.WishlistItemStatusAvailable
	}

	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wishlist_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(item)
	if result.Error != nil {
		logger.Error("Failed to create wishlist item", result.Error, map[string]interface{}{
			"wishlist_id": item.WishlistID,
			"product_id":  item.ProductID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *wishlistRepository) DeleteItem(ctx context.Context, wishlistID, productID uint) error {
	err := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&model.WishlistItem{}).Error
	if err != nil {
		logger.Error("Failed to delete wishlist item", err, map[string]interface{}{
			"wishlist_id": wishlistID,
			"product_id":  productID,
		})
	}
	return err
}
