package repository

import (
	"context"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	FindProductIDsBySlugs(ctx context.Context, slugs []string) ([]uint, error)
	ListWithCounts(ctx context.Context) ([]model.CategoryWithCount, error)
	UpsertBySlug(ctx context.Context, category *model.Category) error
	LinkProduct(ctx context.Context, productID, categoryID uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// FindProductIDsBySlugs returns the distinct ids of products linked to any of the slugs.
func (r *categoryRepository) FindProductIDsBySlugs(ctx context.Context, slugs []string) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&model.ProductCategory{}).
		Distinct("product_categories.product_id").
		Joins("JOIN categories ON categories.id = product_categories.category_id").
		Where("categories.slug IN ?", slugs).
		Pluck("product_categories.product_id", &ids).Error
	if err != nil {
		logger.Error("Failed to resolve category slugs", err, map[string]interface{}{
			"slugs": slugs,
		})
		return nil, err
	}

	logger.Debug("Category slugs resolved", map[string]interface{}{
		"slugs":       slugs,
		"product_ids": len(ids),
	})
	return ids, nil
}

func (r *categoryRepository) ListWithCounts(ctx context.Context) ([]model.CategoryWithCount, error) {
	var rows []model.CategoryWithCount
	err := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Select("categories.id, categories.name, categories.slug, categories.img_url, COUNT(product_categories.product_id) AS product_count").
		Joins("LEFT JOIN product_categories ON product_categories.category_id = categories.id").
		Group("categories.id, categories.name, categories.slug, categories.img_url").
		Order("categories.id ASC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to list categories with counts", err)
		return nil, err
	}
	return rows, nil
}

func (r *categoryRepository) UpsertBySlug(ctx context.Context, category *model.Category) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "img_url"}),
		}).
		Create(category).Error
	if err != nil {
		return err
	}
	if category.ID == 0 {
		var existing model.Category
		if err := r.db.WithContext(ctx).Where("slug = ?", category.Slug).First(&existing).Error; err != nil {
			return err
		}
		category.ID = existing.ID
	}
	return nil
}

func (r *categoryRepository) LinkProduct(ctx context.Context, productID, categoryID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ProductCategory{ProductID: productID, CategoryID: categoryID}).Error
}
