package repository

import (
	"context"
	"strings"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	ProductSortLatest    ProductSort = "latest"
	ProductSortOldest    ProductSort = "oldest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
)

// ProductFilter selects products by discounted price range and, when
// ProductIDs is non-nil, by id membership.
type ProductFilter struct {
	ProductIDs []uint
	MinPrice   model.Money
	MaxPrice   model.Money
	Sort       ProductSort
	Limit      int
	Offset     int
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	FindWithFilter(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	CountWithFilter(ctx context.Context, filter ProductFilter) (int64, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	Search(ctx context.Context, query string, limit, offset int) ([]model.Product, error)
	UpsertBySlug(ctx context.Context, product *model.Product) error
	ReplaceImages(ctx context.Context, productID uint, images []model.ProductImage) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("products.discounted_price BETWEEN ? AND ?", filter.MinPrice, filter.MaxPrice)
	if filter.ProductIDs != nil {
		query = query.Where("products.id IN ?", filter.ProductIDs)
	}
	return query
}

func orderClause(sort ProductSort) string {
	switch sort {
	case ProductSortOldest:
		return "products.id ASC"
	case ProductSortPriceAsc:
		return "products.discounted_price ASC, products.id ASC"
	case ProductSortPriceDesc:
		return "products.discounted_price DESC, products.id DESC"
	default:
		return "products.id DESC"
	}
}

func (r *productRepository) FindWithFilter(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"product_ids": len(filter.ProductIDs),
		"min_price":   filter.MinPrice.String(),
		"max_price":   filter.MaxPrice.String(),
		"sort":        filter.Sort,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	var products []model.Product
	err := r.filtered(ctx, filter).
		Preload("Images", preloadImages).
		Order(orderClause(filter.Sort)).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) CountWithFilter(ctx context.Context, filter ProductFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		logger.Error("Failed to count products with filter", err)
		return 0, err
	}
	return count, nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Images", preloadImages).
		First(&product, id).Error
	if err != nil {
		logger.Debug("Product lookup by ID failed", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Images", preloadImages).
		Preload("Categories").
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		logger.Debug("Product lookup by slug failed", map[string]interface{}{
			"slug":  slug,
			"error": err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

// Search matches title or description case-insensitively, newest first.
func (r *productRepository) Search(ctx context.Context, query string, limit, offset int) ([]model.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Images", preloadImages).
		Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("products.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to search products", err, map[string]interface{}{
			"query": query,
		})
		return nil, err
	}

	logger.Debug("Product search completed", map[string]interface{}{
		"query": query,
		"count": len(products),
	})
	return products, nil
}

// UpsertBySlug inserts the product or refreshes the existing row with the same slug.
func (r *productRepository) UpsertBySlug(ctx context.Context, product *model.Product) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "price", "discounted_price", "stock", "description", "updated_at",
			}),
		}).
		Create(product).Error
	if err != nil {
		logger.Error("Failed to upsert product", err, map[string]interface{}{
			"slug": product.Slug,
		})
		return err
	}

	if product.ID == 0 {
		var existing model.Product
		if err := r.db.WithContext(ctx).Select("id").Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			return err
		}
		product.ID = existing.ID
	}
	return nil
}

func (r *productRepository) ReplaceImages(ctx context.Context, productID uint, images []model.ProductImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		for i := range images {
			images[i].ID = 0
			images[i].ProductID = productID
		}
		return tx.Create(&images).Error
	})
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
