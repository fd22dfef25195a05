package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidFilter   = errors.New("invalid product filter")
)

const (
	DefaultProductLimit = 9
	MaxProductLimit     = 20
	DefaultSearchLimit  = 10
	MaxSearchLimit      = 20
)

var (
	DefaultMinPrice = model.MustMoney("0")
	DefaultMaxPrice = model.MustMoney("1999")
)

// ProductListParams is the caller-facing listing query. Nil pointers and
// empty values fall back to the catalog defaults.
type ProductListParams struct {
	Limit         *int
	Offset        *int
	CategorySlugs []string
	MinPrice      *model.Money
	MaxPrice      *model.Money
	Sort          string
}

// resolvedListParams carries the listing query after defaults are applied.
type resolvedListParams struct {
	Limit         int
	Offset        int
	CategorySlugs []string
	MinPrice      model.Money
	MaxPrice      model.Money
	Sort          repository.ProductSort
}

// ProductPage is one page of a product listing. Total counts every match,
// ignoring Limit and Offset.
type ProductPage struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

type CatalogService interface {
	ListProducts(ctx context.Context, params ProductListParams) (*ProductPage, error)
	CountProducts(ctx context.Context, params ProductListParams) (int64, error)
	GetProduct(ctx context.Context, slug string) (*model.Product, error)
	ListCategoriesWithCounts(ctx context.Context) ([]model.CategoryWithCount, error)
	SearchProducts(ctx context.Context, query string, limit, offset int) ([]model.Product, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func resolveListParams(params ProductListParams) (resolvedListParams, error) {
	resolved := resolvedListParams{
		Limit:    DefaultProductLimit,
		Offset:   0,
		MinPrice: DefaultMinPrice,
		MaxPrice: DefaultMaxPrice,
		Sort:     repository.ProductSortLatest,
	}

	if params.Limit != nil {
		if *params.Limit < 1 || *params.Limit > MaxProductLimit {
			return resolved, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidFilter, MaxProductLimit)
		}
		resolved.Limit = *params.Limit
	}
	if params.Offset != nil {
		if *params.Offset < 0 {
			return resolved, fmt.Errorf("%w: offset must not be negative", ErrInvalidFilter)
		}
		resolved.Offset = *params.Offset
	}
	if params.MinPrice != nil {
		resolved.MinPrice = *params.MinPrice
	}
	if params.MaxPrice != nil {
		resolved.MaxPrice = *params.MaxPrice
	}
	if resolved.MinPrice.IsNegative() {
		return resolved, fmt.Errorf("%w: minimum price must not be negative", ErrInvalidFilter)
	}
	if resolved.MinPrice.GreaterThan(resolved.MaxPrice.Decimal) {
		return resolved, fmt.Errorf("%w: minimum price exceeds maximum price", ErrInvalidFilter)
	}

	switch sort := repository.ProductSort(strings.ToLower(strings.TrimSpace(params.Sort))); sort {
	case "":
	case repository.ProductSortLatest, repository.ProductSortOldest,
		repository.ProductSortPriceAsc, repository.ProductSortPriceDesc:
		resolved.Sort = sort
	default:
		return resolved, fmt.Errorf("%w: unknown sort %q", ErrInvalidFilter, params.Sort)
	}

	for _, slug := range params.CategorySlugs {
		if slug = strings.TrimSpace(slug); slug != "" {
			resolved.CategorySlugs = append(resolved.CategorySlugs, slug)
		}
	}

	return resolved, nil
}

// buildFilter resolves category slugs into product ids. The second return
// value is false when the category restriction can match nothing.
func (s *catalogService) buildFilter(ctx context.Context, resolved resolvedListParams) (repository.ProductFilter, bool, error) {
	filter := repository.ProductFilter{
		MinPrice: resolved.MinPrice,
		MaxPrice: resolved.MaxPrice,
		Sort:     resolved.Sort,
		Limit:    resolved.Limit,
		Offset:   resolved.Offset,
	}

	if len(resolved.CategorySlugs) > 0 {
		ids, err := s.categoryRepo.FindProductIDsBySlugs(ctx, resolved.CategorySlugs)
		if err != nil {
			return filter, false, err
		}
		if len(ids) == 0 {
			return filter, false, nil
		}
		filter.ProductIDs = ids
	}

	return filter, true, nil
}

// ListProducts validates params, then fetches the page and the total count
// with the same filter. Invalid params fail with ErrInvalidFilter before
// any query runs.
func (s *catalogService) ListProducts(ctx context.Context, params ProductListParams) (*ProductPage, error) {
	resolved, err := resolveListParams(params)
	if err != nil {
		return nil, err
	}

	page := &ProductPage{
		Products: []model.Product{},
		Limit:    resolved.Limit,
		Offset:   resolved.Offset,
	}

	filter, ok, err := s.buildFilter(ctx, resolved)
	if err != nil {
		logger.Error("Failed to resolve category filter", err, map[string]interface{}{
			"categories": resolved.CategorySlugs,
		})
		return nil, err
	}
	if !ok {
		logger.Debug("No products match category filter", map[string]interface{}{
			"categories": resolved.CategorySlugs,
		})
		return page, nil
	}

	products, err := s.productRepo.FindWithFilter(ctx, filter)
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"limit":  filter.Limit,
			"offset": filter.Offset,
			"sort":   filter.Sort,
		})
		return nil, err
	}

	total, err := s.productRepo.CountWithFilter(ctx, filter)
	if err != nil {
		logger.Error("Failed to count products", err)
		return nil, err
	}

	if products != nil {
		page.Products = products
	}
	page.Total = total

	logger.Debug("Products listed", map[string]interface{}{
		"count": len(products),
		"total": total,
		"sort":  filter.Sort,
	})
	return page, nil
}

// CountProducts applies the same filtering as ListProducts without the page bounds.
func (s *catalogService) CountProducts(ctx context.Context, params ProductListParams) (int64, error) {
	resolved, err := resolveListParams(params)
	if err != nil {
		return 0, err
	}

	filter, ok, err := s.buildFilter(ctx, resolved)
	if err != nil {
		logger.Error("Failed to resolve category filter", err, map[string]interface{}{
			"categories": resolved.CategorySlugs,
		})
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	total, err := s.productRepo.CountWithFilter(ctx, filter)
	if err != nil {
		logger.Error("Failed to count products", err)
		return 0, err
	}
	return total, nil
}

func (s *catalogService) GetProduct(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}
	return product, nil
}

func (s *catalogService) ListCategoriesWithCounts(ctx context.Context) ([]model.CategoryWithCount, error) {
	categories, err := s.categoryRepo.ListWithCounts(ctx)
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}
	return categories, nil
}

// SearchProducts clamps limit into [1, MaxSearchLimit]; a blank query
// matches nothing.
func (s *catalogService) SearchProducts(ctx context.Context, query string, limit, offset int) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Product{}, nil
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.Search(ctx, query, limit, offset)
	if err != nil {
		logger.Error("Failed to search products", err, map[string]interface{}{
			"query": query,
		})
		return nil, err
	}
	return products, nil
}
