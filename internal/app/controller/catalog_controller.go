package controller

import (
	stdErrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// ListProducts returns a filtered page of products
// GET /api/v1/products?limit=&offset=&category=a,b&price=min-max&sort=
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	params, err := parseProductListQuery(c)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidFilter, err.Error())
		return
	}

	page, err := ctrl.catalogService.ListProducts(c.Request.Context(), params)
	if err != nil {
		if stdErrors.Is(err, service.ErrInvalidFilter) {
			errors.BadRequest(c, errors.ValidationInvalidFilter, err.Error())
			return
		}
		log.Error("Failed to list products", err)
		errors.InternalError(c, "failed to list products")
		return
	}

	c.JSON(http.StatusOK, page)
}

// CountProducts returns the number of products matching the listing filters
// GET /api/v1/products/count?category=a,b&price=min-max
func (ctrl *CatalogController) CountProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	params, err := parseProductListQuery(c)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidFilter, err.Error())
		return
	}

	total, err := ctrl.catalogService.CountProducts(c.Request.Context(), params)
	if err != nil {
		if stdErrors.Is(err, service.ErrInvalidFilter) {
			errors.BadRequest(c, errors.ValidationInvalidFilter, err.Error())
			return
		}
		log.Error("Failed to count products", err)
		errors.InternalError(c, "failed to count products")
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": total})
}

// GetProduct returns one product by slug
// GET /api/v1/products/:slug
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	product, err := ctrl.catalogService.GetProduct(c.Request.Context(), slug)
	if err != nil {
		if stdErrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"slug": slug,
		})
		errors.InternalError(c, "failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListCategories returns every category with its product count
// GET /api/v1/categories
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.catalogService.ListCategoriesWithCounts(c.Request.Context())
	if err != nil {
		log.Error("Failed to list categories", err)
		errors.InternalError(c, "failed to list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Search matches product title and description
// GET /api/v1/search?q=&limit=&offset=
func (ctrl *CatalogController) Search(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	query := c.Query("q")

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	products, err := ctrl.catalogService.SearchProducts(c.Request.Context(), query, limit, offset)
	if err != nil {
		log.Error("Product search failed", err, map[string]interface{}{
			"query": query,
		})
		errors.InternalError(c, "search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func parseProductListQuery(c *gin.Context) (service.ProductListParams, error) {
	var params service.ProductListParams

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return params, stdErrors.New("limit must be an integer")
		}
		params.Limit = &limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return params, stdErrors.New("offset must be an integer")
		}
		params.Offset = &offset
	}
	if raw := c.Query("category"); raw != "" {
		params.CategorySlugs = strings.Split(raw, ",")
	}
	if raw := c.Query("price"); raw != "" {
		minPrice, maxPrice, err := parsePriceRange(raw)
		if err != nil {
			return params, err
		}
		params.MinPrice = minPrice
		params.MaxPrice = maxPrice
	}
	params.Sort = c.Query("sort")

	return params, nil
}

// parsePriceRange reads "min-max"; either side may be empty.
func parsePriceRange(raw string) (*model.Money, *model.Money, error) {
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return nil, nil, stdErrors.New("price must look like min-max")
	}

	parse := func(s string) (*model.Money, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, stdErrors.New("price bounds must be numbers")
		}
		m := model.NewMoney(d)
		return &m, nil
	}

	minPrice, err := parse(parts[0])
	if err != nil {
		return nil, nil, err
	}
	maxPrice, err := parse(parts[1])
	if err != nil {
		return nil, nil, err
	}
	return minPrice, maxPrice, nil
}
