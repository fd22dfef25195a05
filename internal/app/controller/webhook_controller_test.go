package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/pkg/payment/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_controller_test"

func setupWebhookControllerTest(t *testing.T, verifier WebhookVerifier) (*gin.Engine, *gorm.DB) {
	testDB := setupControllerTestDB(t)

	orderSvc := service.NewOrderService(
		testDB,
		repository.NewOrderRepository(testDB),
		repository.NewCartRepository(testDB),
		repository.NewProductRepository(testDB),
		repository.NewPaymentEventRepository(testDB),
		nil,
		"usd",
	)
	orderCtrl := NewOrderController(orderSvc)

	router := gin.New()
	router.POST("/webhooks/stripe", NewWebhookController(orderSvc, verifier).HandleStripe)
	orders := router.Group("/orders", withUser("user_1"))
	orders.GET("", orderCtrl.ListOrders)
	orders.GET("/:id", orderCtrl.GetOrder)
	return router, testDB
}

func completedPayload(t *testing.T, eventID string, productID uint) []byte {
	items := fmt.Sprintf(`[{"productId":%d,"quantity":2}]`, productID)
	payload, err := json.Marshal(map[string]interface{}{
		"id":   eventID,
		"type": stripe.EventCheckoutSessionCompleted,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":           "cs_" + eventID,
				"amount_total": 1600,
				"currency":     "usd",
				"metadata": map[string]string{
					"userId":       "user_1",
					"checkoutMode": "cart",
					"items":        items,
				},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func postWebhook(router http.Handler, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookController_CreatesOrderOnce(t *testing.T) {
	router, testDB := setupWebhookControllerTest(t, stripe.NewWebhookVerifier(testWebhookSecret, 0))
	product := createTestProduct(t, testDB, "chair", "10.00", "8.00")
	payload := completedPayload(t, "evt_1", product.ID)
	signature := stripe.SignatureHeader(testWebhookSecret, payload, time.Now())

	w := postWebhook(router, payload, signature)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())

	w = postWebhook(router, payload, signature)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	testDB.Model(&model.Order{}).Count(&count)
	assert.Equal(t, int64(1), count)

	w = doJSON(router, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decodeBody(t, w)["orders"].([]interface{})
	require.Len(t, orders, 1)
	order := orders[0].(map[string]interface{})
	assert.Equal(t, "16.00", order["total_amount"])
	assert.Equal(t, "paid", order["status"])

	orderID := strconv.Itoa(int(order["id"].(float64)))
	w = doJSON(router, http.MethodGet, "/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeBody(t, w)["order"].(map[string]interface{})
	assert.Len(t, detail["items"], 1)

	w = doJSON(router, http.MethodGet, "/orders/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookController_RejectsBadSignature(t *testing.T) {
	router, testDB := setupWebhookControllerTest(t, stripe.NewWebhookVerifier(testWebhookSecret, 0))
	product := createTestProduct(t, testDB, "chair", "10.00", "8.00")
	payload := completedPayload(t, "evt_2", product.ID)

	w := postWebhook(router, payload, stripe.SignatureHeader("whsec_wrong", payload, time.Now()))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postWebhook(router, payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	testDB.Model(&model.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestWebhookController_ProcessingFailureStillAcknowledged(t *testing.T) {
	router, testDB := setupWebhookControllerTest(t, stripe.NewWebhookVerifier(testWebhookSecret, 0))

	payload := []byte(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_3","metadata":{"userId":"user_1","items":"{broken"}}}}`)
	w := postWebhook(router, payload, stripe.SignatureHeader(testWebhookSecret, payload, time.Now()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())

	var count int64
	testDB.Model(&model.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestWebhookController_NoSecretConfigured(t *testing.T) {
	router, _ := setupWebhookControllerTest(t, nil)

	w := postWebhook(router, []byte(`{}`), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}
