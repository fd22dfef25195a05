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
	ErrUnauthorized      = errors.New("unauthorized")
	ErrCartNotFound      = errors.New("cart not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidProductRef = errors.New("invalid product id")
)

type CartService interface {
	GetOrCreateCart(ctx context.Context, ownerID string) (*model.Cart, error)
	ListCartItems(ctx context.Context, ownerID string) ([]model.CartItem, error)
	AddItem(ctx context.Context, ownerID string, productID uint, quantity int) error
	UpdateItemQuantity(ctx context.Context, ownerID string, productID uint, quantity int) error
	RemoveItem(ctx context.Context, ownerID string, productID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetOrCreateCart(ctx context.Context, ownerID string) (*model.Cart, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	return s.cartRepo.GetOrCreate(ctx, ownerID)
}

// ListCartItems never creates a cart; owners without one get an empty list.
func (s *cartService) ListCartItems(ctx context.Context, ownerID string) ([]model.CartItem, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	cart, err := s.cartRepo.FindByUserID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []model.CartItem{}, nil
		}
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": ownerID,
		})
		return nil, err
	}

	items, err := s.cartRepo.FindItems(ctx, cart.ID)
	if err != nil {
		logger.Error("Failed to fetch cart items", err, map[string]interface{}{
			"user_id": ownerID,
			"cart_id": cart.ID,
		})
		return nil, err
	}
	return items, nil
}

func (s *cartService) AddItem(ctx context.Context, ownerID string, productID uint, quantity int) error {
	if ownerID == "" {
		return ErrUnauthorized
	}
	if productID == 0 {
		return ErrInvalidProductRef
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    ownerID,
		"product_id": productID,
		"quantity":   quantity,
	})

	cart, err := s.cartRepo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return err
	}

	incremented, err := s.cartRepo.IncrementItem(ctx, cart.ID, productID, quantity)
	if err != nil {
		logger.Error("Failed to increment cart item", err, map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
		})
		return err
	}
	if incremented {
		return nil
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add missing product to cart", map[string]interface{}{
				"user_id":    ownerID,
				"product_id": productID,
			})
			return ErrProductNotFound
		}
		return err
	}

	item := &model.CartItem{
		CartID:              cart.ID,
		ProductID:           product.ID,
		TitleSnapshot:       product.Title,
		ImgSnapshot:         product.PrimaryImage(),
		UnitPrice:           product.Price,
		UnitDiscountedPrice: product.DiscountedPrice,
		Quantity:            quantity,
	}
	if err := s.cartRepo.UpsertItem(ctx, item); err != nil {
		return err
	}

	logger.Info("Cart item added", map[string]interface{}{
		"user_id":    ownerID,
		"cart_id":    cart.ID,
		"product_id": productID,
	})
	return nil
}

// UpdateItemQuantity sets an absolute quantity; zero or less removes the line.
func (s *cartService) UpdateItemQuantity(ctx context.Context, ownerID string, productID uint, quantity int) error {
	if ownerID == "" {
		return ErrUnauthorized
	}
	if productID == 0 {
		return ErrInvalidProductRef
	}

	cart, err := s.cartRepo.FindByUserID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		return err
	}

	if quantity <= 0 {
		logger.Info("Removing cart item via zero quantity", map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
		})
		return s.cartRepo.DeleteItem(ctx, cart.ID, productID)
	}

	if err := s.cartRepo.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		logger.Error("Failed to update cart item quantity", err, map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
			"quantity":   quantity,
		})
		return err
	}
	return nil
}

func (s *cartService) RemoveItem(ctx context.Context, ownerID string, productID uint) error {
	if ownerID == "" {
		return ErrUnauthorized
	}

	cart, err := s.cartRepo.FindByUserID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.cartRepo.DeleteItem(ctx, cart.ID, productID)
}
