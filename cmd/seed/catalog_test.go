package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newWorkbook(t *testing.T, sheets map[string][][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i := range rows {
			cell := fmt.Sprintf("A%d", i+1)
			require.NoError(t, f.SetSheetRow(name, cell, &rows[i]))
		}
	}
	return f
}

func sampleWorkbook(t *testing.T) *excelize.File {
	return newWorkbook(t, map[string][][]interface{}{
		categoriesSheet: {
			{"name", "slug", "img_url"},
			{"Home Decor", "", "https://cdn.example.com/cat/home.jpg"},
			{"", "orphan", ""},
		},
		productsSheet: {
			{"title", "price", "discounted_price", "stock", "description", "categories", "thumbnails", "previews"},
			{"Oak Lamp", "120", "99.5", "4", "warm light", "Home Decor, Lighting", "https://cdn.example.com/lamp/1.jpg", "https://cdn.example.com/lamp/p1.jpg\nhttps://cdn.example.com/lamp/p2.jpg"},
			{"Linen Throw", "45.00", "", "", "", "Home Decor", "", ""},
			{"Oak Lamp", "1", "", "", "", "", "", ""},
			{"No Price", "", "", "", "", "", "", ""},
		},
	})
}

func TestReadCatalog(t *testing.T) {
	catalog, err := readCatalog(sampleWorkbook(t))
	require.NoError(t, err)

	require.Len(t, catalog.Categories, 2)
	assert.Equal(t, "home-decor", catalog.Categories[0].Slug)
	assert.Equal(t, "https://cdn.example.com/cat/home.jpg", catalog.Categories[0].ImgURL)
	assert.Equal(t, "lighting", catalog.Categories[1].Slug)

	require.Len(t, catalog.Products, 2)
	lamp := catalog.Products[0]
	assert.Equal(t, "oak-lamp", lamp.Product.Slug)
	assert.Equal(t, "120.00", lamp.Product.Price.StringFixed(2))
	assert.Equal(t, "99.50", lamp.Product.DiscountedPrice.StringFixed(2))
	assert.Equal(t, 4, lamp.Product.Stock)
	assert.Equal(t, []string{"home-decor", "lighting"}, lamp.CategorySlugs)
	assert.Len(t, lamp.Previews, 2)

	throw := catalog.Products[1]
	assert.True(t, throw.Product.DiscountedPrice.Equal(throw.Product.Price.Decimal))

	// blank category name, duplicate slug, missing price
	assert.Equal(t, 3, catalog.Skipped)
}

func TestReadCatalog_RequiresProductsSheet(t *testing.T) {
	f := newWorkbook(t, map[string][][]interface{}{
		categoriesSheet: {{"name"}, {"Lighting"}},
	})

	_, err := readCatalog(f)
	assert.ErrorIs(t, err, errMissingSheet)
}

func TestCatalogImporter_IsIdempotent(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	catalog, err := readCatalog(sampleWorkbook(t))
	require.NoError(t, err)

	importer := newCatalogImporter(
		repository.NewProductRepository(testDB),
		repository.NewCategoryRepository(testDB),
	)
	ctx := context.Background()

	stats, err := importer.Import(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Products)
	assert.Equal(t, 3, stats.Links)

	_, err = importer.Import(ctx, catalog)
	require.NoError(t, err)

	var products, images, links, categories int64
	testDB.Model(&model.Product{}).Count(&products)
	testDB.Model(&model.ProductImage{}).Count(&images)
	testDB.Model(&model.ProductCategory{}).Count(&links)
	testDB.Model(&model.Category{}).Count(&categories)
	assert.EqualValues(t, 2, products)
	assert.EqualValues(t, 3, images)
	assert.EqualValues(t, 3, links)
	assert.EqualValues(t, 2, categories)

	lamp, err := repository.NewProductRepository(testDB).FindBySlug(ctx, "oak-lamp")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/lamp/1.jpg", lamp.PrimaryImage())
}
