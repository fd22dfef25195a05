package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/pkg/payment/stripe"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupControllerTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	gin.SetMode(gin.TestMode)
	return testDB
}

func createTestProduct(t *testing.T, testDB *gorm.DB, slug, price, discounted string) *model.Product {
	product := &model.Product{
		Slug:            slug,
		Title:           "Product " + slug,
		Price:           model.MustMoney(price),
		DiscountedPrice: model.MustMoney(discounted),
		Stock:           3,
		Images: []model.ProductImage{
			{URL: "https://cdn.example.com/" + slug + ".jpg", Kind: model.ImageKindThumbnail},
		},
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

// withUser stands in for the auth middleware.
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type fakeGateway struct {
	requests []stripe.CheckoutSessionRequest
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req stripe.CheckoutSessionRequest) (*stripe.CheckoutSession, error) {
	g.requests = append(g.requests, req)
	id := fmt.Sprintf("cs_test_%d", len(g.requests))
	return &stripe.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}
