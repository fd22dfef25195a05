package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/pkg/payment/stripe"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB
}

func createTestProduct(t *testing.T, testDB *gorm.DB, slug, price, discounted string) *model.Product {
	product := &model.Product{
		Slug:            slug,
		Title:           fmt.Sprintf("Product %s", slug),
		Price:           model.MustMoney(price),
		DiscountedPrice: model.MustMoney(discounted),
		Stock:           5,
		Images: []model.ProductImage{
			{URL: "https://cdn.example.com/" + slug + "/thumb.jpg", Kind: model.ImageKindThumbnail},
		},
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createTestCategory(t *testing.T, testDB *gorm.DB, slug string, products ...*model.Product) *model.Category {
	category := &model.Category{Name: slug, Slug: slug}
	require.NoError(t, testDB.Create(category).Error)
	for _, p := range products {
		require.NoError(t, testDB.Create(&model.ProductCategory{ProductID: p.ID, CategoryID: category.ID}).Error)
	}
	return category
}

// fakeGateway records checkout session requests instead of calling Stripe.
type fakeGateway struct {
	mu       sync.Mutex
	requests []stripe.CheckoutSessionRequest
	err      error
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req stripe.CheckoutSessionRequest) (*stripe.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	n := len(g.requests)
	return &stripe.CheckoutSession{
		ID:  fmt.Sprintf("cs_test_%d", n),
		URL: fmt.Sprintf("https://checkout.stripe.test/pay/cs_test_%d", n),
	}, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *fakeGateway) last() stripe.CheckoutSessionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}
