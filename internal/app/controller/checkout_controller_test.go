package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCheckoutControllerTest(t *testing.T, userID string) (*gin.Engine, *gorm.DB, *fakeGateway) {
	testDB := setupControllerTestDB(t)
	gateway := &fakeGateway{}

	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	checkoutSvc := service.NewCheckoutService(productRepo, cartRepo, gateway, service.CheckoutOptions{
		Currency:   "usd",
		SuccessURL: "https://shop.test/success",
		CancelURL:  "https://shop.test/cart",
	})
	cartSvc := service.NewCartService(cartRepo, productRepo)

	router := gin.New()
	group := router.Group("", withUser(userID))
	group.POST("/checkout", NewCheckoutController(checkoutSvc).CreateSession)
	group.POST("/cart/items", NewCartController(cartSvc).AddItem)
	return router, testDB, gateway
}

func TestCheckoutController_Unauthenticated(t *testing.T) {
	router, _, gateway := setupCheckoutControllerTest(t, "")

	w := doJSON(router, http.MethodPost, "/checkout", gin.H{"mode": "cart"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["error"])
	assert.Empty(t, gateway.requests)
}

func TestCheckoutController_Errors(t *testing.T) {
	router, _, gateway := setupCheckoutControllerTest(t, "user_1")

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"empty cart with default mode", nil, http.StatusBadRequest},
		{"empty cart", gin.H{"mode": "cart"}, http.StatusBadRequest},
		{"single missing quantity", gin.H{"mode": "single", "productId": 1}, http.StatusBadRequest},
		{"single unknown product", gin.H{"mode": "single", "productId": 404, "quantity": 1}, http.StatusNotFound},
		{"unknown mode", gin.H{"mode": "layaway"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/checkout", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, decodeBody(t, w)["error"])
		})
	}
	assert.Empty(t, gateway.requests)
}

func TestCheckoutController_CartSuccess(t *testing.T) {
	router, testDB, gateway := setupCheckoutControllerTest(t, "user_1")
	product := createTestProduct(t, testDB, "desk", "100.00", "80.00")

	w := doJSON(router, http.MethodPost, "/cart/items", gin.H{"productId": product.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/checkout", gin.H{"mode": "cart", "cancel_url": "https://shop.test/back"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"cs_test_1","url":"https://checkout.stripe.test/cs_test_1"}`, w.Body.String())

	require.Len(t, gateway.requests, 1)
	req := gateway.requests[0]
	assert.Equal(t, int64(8000), req.LineItems[0].UnitAmount)
	assert.Equal(t, "https://shop.test/success", req.SuccessURL)
	assert.Equal(t, "https://shop.test/back", req.CancelURL)
}
