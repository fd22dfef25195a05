package repository

import (
	"fmt"
	"testing"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB
}

func createProduct(t *testing.T, testDB *gorm.DB, slug, price, discounted string) *model.Product {
	product := &model.Product{
		Slug:            slug,
		Title:           fmt.Sprintf("Product %s", slug),
		Price:           model.MustMoney(price),
		DiscountedPrice: model.MustMoney(discounted),
		Stock:           10,
		Description:     "A fine " + slug,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createCategory(t *testing.T, testDB *gorm.DB, slug string, products ...*model.Product) *model.Category {
	category := &model.Category{Name: slug, Slug: slug}
	require.NoError(t, testDB.Create(category).Error)
	for _, p := range products {
		require.NoError(t, testDB.Create(&model.ProductCategory{ProductID: p.ID, CategoryID: category.ID}).Error)
	}
	return category
}
