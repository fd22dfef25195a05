package service

import (
	"context"
	"errors"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAlreadyInWishlist = errors.New("product already in wishlist")
)

type WishlistService interface {
	GetOrCreateWishlist(ctx context.Context, ownerID string) (*model.Wishlist, error)
	ListWishlistItems(ctx context.Context, ownerID string) ([]model.WishlistItem, error)
	AddItem(ctx context.Context, ownerID string, productID uint) error
	RemoveItem(ctx context.Context, ownerID string, productID uint) error
	IsInWishlist(ctx context.Context, ownerID string, productID uint) (bool, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistService) GetOrCreateWishlist(ctx context.Context, ownerID string) (*model.Wishlist, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	return s.wishlistRepo.GetOrCreate(ctx, ownerID)
}

func (s *wishlistService) ListWishlistItems(ctx context.Context, ownerID string) ([]model.WishlistItem, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	wishlist, err := s.wishlistRepo.FindByUserID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []model.WishlistItem{}, nil
		}
		return nil, err
	}

	items, err := s.wishlistRepo.FindItems(ctx, wishlist.ID)
	if err != nil {
		logger.Error("Failed to fetch wishlist items", err, map[string]interface{}{
			"user_id": ownerID,
		})
		return nil, err
	}
	return items, nil
}

func (s *wishlistService) AddItem(ctx context.Context, ownerID string, productID uint) error {
	if ownerID == "" {
		return ErrUnauthorized
	}
	if productID == 0 {
		return ErrInvalidProductRef
	}

	wishlist, err := s.wishlistRepo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return err
	}

	exists, err := s.wishlistRepo.ExistsItem(ctx, wishlist.ID, productID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyInWishlist
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	item := &model.WishlistItem{
		WishlistID: wishlist.ID,
		ProductID:  productID,
		Status:     model.WishlistItemStatusAvailable,
	}
	if err := s.wishlistRepo.CreateItem(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyInWishlist
		}
		logger.Error("Failed to add wishlist item", err, map[string]interface{}{
			"user_id":    ownerID,
			"product_id": productID,
		})
		return err
	}

	logger.Info("Wishlist item added", map[string]interface{}{
		"user_id":    ownerID,
		"product_id": productID,
	})
	return nil
}

func (s *wishlistService) RemoveItem(ctx context.Context, ownerID string, productID uint) error {
	if ownerID == "" {
		return ErrUnauthorized
	}

	wishlist, err := s.wishlistRepo.FindByUserID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.wishlistRepo.DeleteItem(ctx, wishlist.ID, productID)
}

func (s *wishlistService) IsInWishlist(ctx context.Context, ownerID string, productID uint) (bool, error) {
	if ownerID == "" {
		return false, nil
	}

	wishlist, err := s.wishlistRepo.FindByUserID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.wishlistRepo.ExistsItem(ctx, wishlist.ID, productID)
}
