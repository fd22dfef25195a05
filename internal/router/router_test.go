package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/internal/app/controller"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

func newTestRouter(pinger Pinger) http.Handler {
	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: "test"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"https://shop.test"}},
	}
	auth := middleware.NewAuthMiddleware(util.TokenValidation{Secret: "router-secret"})

	return NewRouter(
		controller.NewCatalogController(nil),
		controller.NewCartController(nil),
		controller.NewWishlistController(nil),
		controller.NewCheckoutController(nil),
		controller.NewWebhookController(nil, nil),
		controller.NewOrderController(nil),
		auth,
		pinger,
		cfg,
	).Setup()
}

func TestRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(stubPinger{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	newTestRouter(stubPinger{err: errors.New("down")}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(nil)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/cart/items"},
		{http.MethodGet, "/api/v1/wishlist"},
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodGet, "/api/v1/orders"},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func TestRouter_WebhookWithoutSecret(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "https://shop.test")
	w := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.test", w.Header().Get("Access-Control-Allow-Origin"))
}
