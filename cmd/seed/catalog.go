package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

const (
	categoriesSheet = "categories"
	productsSheet   = "products"
)

var errMissingSheet = errors.New("sheet not found")

// seedProduct is one row of the products sheet.
type seedProduct struct {
	Product       model.Product
	CategorySlugs []string
	Thumbnails    []string
	Previews      []string
}

type seedCatalog struct {
	Categories []model.Category
	Products   []seedProduct
	Skipped    int
}

type importStats struct {
	Categories int
	Products   int
	Links      int
}

// sheetRows maps header names (lower case) to column positions.
type sheetRows struct {
	columns map[string]int
	rows    [][]string
}

func readSheet(f *excelize.File, name string) (*sheetRows, error) {
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", errMissingSheet, name)
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", name, err)
	}
	s := &sheetRows{columns: map[string]int{}}
	if len(rows) == 0 {
		return s, nil
	}
	for i, header := range rows[0] {
		s.columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	s.rows = rows[1:]
	return s, nil
}

// cell returns the trimmed value of column name, or "" when absent.
func (s *sheetRows) cell(row []string, name string) string {
	i, ok := s.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// readCatalog parses the categories and products sheets. The categories
// sheet is optional; categories named by products are created on demand.
func readCatalog(f *excelize.File) (*seedCatalog, error) {
	catalog := &seedCatalog{}
	seenCategories := map[string]bool{}

	addCategory := func(c model.Category) {
		if c.Slug == "" || seenCategories[c.Slug] {
			return
		}
		seenCategories[c.Slug] = true
		catalog.Categories = append(catalog.Categories, c)
	}

	categories, err := readSheet(f, categoriesSheet)
	switch {
	case errors.Is(err, errMissingSheet):
	case err != nil:
		return nil, err
	default:
		for _, row := range categories.rows {
			name := categories.cell(row, "name")
			if name == "" {
				catalog.Skipped++
				continue
			}
			slug := util.Slugify(categories.cell(row, "slug"))
			if slug == "" {
				slug = util.Slugify(name)
			}
			addCategory(model.Category{Name: name, Slug: slug, ImgURL: categories.cell(row, "img_url")})
		}
	}

	products, err := readSheet(f, productsSheet)
	if err != nil {
		return nil, err
	}

	seenProducts := map[string]bool{}
	for _, row := range products.rows {
		p, err := parseProductRow(products, row)
		if err != nil {
			logger.Warn("Skipping product row", map[string]interface{}{
				"error": err.Error(),
				"row":   row,
			})
			catalog.Skipped++
			continue
		}
		if seenProducts[p.Product.Slug] {
			catalog.Skipped++
			continue
		}
		seenProducts[p.Product.Slug] = true

		for _, name := range splitList(products.cell(row, "categories")) {
			slug := util.Slugify(name)
			if slug == "" {
				continue
			}
			addCategory(model.Category{Name: name, Slug: slug})
			p.CategorySlugs = append(p.CategorySlugs, slug)
		}
		catalog.Products = append(catalog.Products, *p)
	}

	return catalog, nil
}

func parseProductRow(s *sheetRows, row []string) (*seedProduct, error) {
	title := s.cell(row, "title")
	if title == "" {
		return nil, errors.New("title is required")
	}
	slug := util.Slugify(s.cell(row, "slug"))
	if slug == "" {
		slug = util.Slugify(title)
	}
	if slug == "" {
		return nil, fmt.Errorf("cannot derive slug from %q", title)
	}

	price, err := parseMoney(s.cell(row, "price"))
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	discounted := price
	if raw := s.cell(row, "discounted_price"); raw != "" {
		if discounted, err = parseMoney(raw); err != nil {
			return nil, fmt.Errorf("discounted_price: %w", err)
		}
	}

	stock := 0
	if raw := s.cell(row, "stock"); raw != "" {
		if stock, err = strconv.Atoi(raw); err != nil || stock < 0 {
			return nil, fmt.Errorf("stock must be a non-negative integer, got %q", raw)
		}
	}

	return &seedProduct{
		Product: model.Product{
			Slug:            slug,
			Title:           title,
			Price:           price,
			DiscountedPrice: discounted,
			Stock:           stock,
			Description:     s.cell(row, "description"),
		},
		Thumbnails: splitList(s.cell(row, "thumbnails")),
		Previews:   splitList(s.cell(row, "previews")),
	}, nil
}

func parseMoney(raw string) (model.Money, error) {
	if raw == "" {
		return model.Money{}, errors.New("value is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Money{}, fmt.Errorf("invalid amount %q", raw)
	}
	if d.IsNegative() {
		return model.Money{}, fmt.Errorf("negative amount %q", raw)
	}
	return model.NewMoney(d), nil
}

// splitList splits on commas and newlines, dropping blanks.
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

type catalogImporter struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func newCatalogImporter(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *catalogImporter {
	return &catalogImporter{productRepo: productRepo, categoryRepo: categoryRepo}
}

// Import upserts categories and products by slug, so running it twice
// leaves the same rows behind.
func (imp *catalogImporter) Import(ctx context.Context, catalog *seedCatalog) (*importStats, error) {
	stats := &importStats{}
	categoryIDs := make(map[string]uint, len(catalog.Categories))

	for i := range catalog.Categories {
		category := catalog.Categories[i]
		if err := imp.categoryRepo.UpsertBySlug(ctx, &category); err != nil {
			return stats, fmt.Errorf("category %s: %w", category.Slug, err)
		}
		categoryIDs[category.Slug] = category.ID
		stats.Categories++
	}

	for i := range catalog.Products {
		seed := catalog.Products[i]
		product := seed.Product
		if err := imp.productRepo.UpsertBySlug(ctx, &product); err != nil {
			return stats, fmt.Errorf("product %s: %w", product.Slug, err)
		}

		images := make([]model.ProductImage, 0, len(seed.Thumbnails)+len(seed.Previews))
		for n, url := range seed.Thumbnails {
			images = append(images, model.ProductImage{URL: url, Kind: model.ImageKindThumbnail, SortOrder: n})
		}
		for n, url := range seed.Previews {
			images = append(images, model.ProductImage{URL: url, Kind: model.ImageKindPreview, SortOrder: n})
		}
		if err := imp.productRepo.ReplaceImages(ctx, product.ID, images); err != nil {
			return stats, fmt.Errorf("images of %s: %w", product.Slug, err)
		}

		for _, slug := range seed.CategorySlugs {
			categoryID, ok := categoryIDs[slug]
			if !ok {
				continue
			}
			if err := imp.categoryRepo.LinkProduct(ctx, product.ID, categoryID); err != nil {
				return stats, fmt.Errorf("link %s to %s: %w", product.Slug, slug, err)
			}
			stats.Links++
		}
		stats.Products++
	}

	logger.Info("Catalog import finished", map[string]interface{}{
		"categories": stats.Categories,
		"products":   stats.Products,
		"links":      stats.Links,
	})
	return stats, nil
}
