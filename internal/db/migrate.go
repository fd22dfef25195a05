package db

import (
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Category{},
		&model.Product{},
		&model.ProductImage{},
		&model.ProductCategory{},
		&model.Address{},
		&model.Cart{},
		&model.CartItem{},
		&model.Wishlist{},
		&model.WishlistItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentEvent{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs AutoMigrate against db.
func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
