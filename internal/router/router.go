package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/internal/app/controller"
	"github.com/storefront/storefront-backend/internal/middleware"
)

// Pinger reports database reachability for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Router struct {
	catalogController  *controller.CatalogController
	cartController     *controller.CartController
	wishlistController *controller.WishlistController
	checkoutController *controller.CheckoutController
	webhookController  *controller.WebhookController
	orderController    *controller.OrderController
	authMiddleware     *middleware.AuthMiddleware
	pinger             Pinger
	config             *config.Config
}

func NewRouter(
	catalogController *controller.CatalogController,
	cartController *controller.CartController,
	wishlistController *controller.WishlistController,
	checkoutController *controller.CheckoutController,
	webhookController *controller.WebhookController,
	orderController *controller.OrderController,
	authMiddleware *middleware.AuthMiddleware,
	pinger Pinger,
	cfg *config.Config,
) *Router {
	return &Router{
		catalogController:  catalogController,
		cartController:     cartController,
		wishlistController: wishlistController,
		checkoutController: checkoutController,
		webhookController:  webhookController,
		orderController:    orderController,
		authMiddleware:     authMiddleware,
		pinger:             pinger,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", r.catalogController.ListProducts)
		v1.GET("/products/count", r.catalogController.CountProducts)
		v1.GET("/products/:slug", r.catalogController.GetProduct)
		v1.GET("/categories", r.catalogController.ListCategories)
		v1.GET("/search", r.catalogController.Search)

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PATCH("/items/:productId", r.cartController.UpdateItem)
			cart.DELETE("/items/:productId", r.cartController.RemoveItem)
		}

		wishlist := v1.Group("/wishlist")
		wishlist.Use(r.authMiddleware.Authenticate())
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("/items", r.wishlistController.AddItem)
			wishlist.GET("/items/:productId", r.wishlistController.CheckItem)
			wishlist.DELETE("/items/:productId", r.wishlistController.RemoveItem)
		}

		v1.POST("/checkout", r.authMiddleware.Authenticate(), r.checkoutController.CreateSession)

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/:id", r.orderController.GetOrder)
		}

		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/stripe", r.webhookController.HandleStripe)
		}
	}

	return router
}

func (r *Router) health(c *gin.Context) {
	status := http.StatusOK
	database := "ok"
	if r.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := r.pinger.PingContext(ctx); err != nil {
			middleware.GetLoggerFromContext(c).Error("Health check database ping failed", err)
			status = http.StatusServiceUnavailable
			database = "unreachable"
		}
	}

	healthy := "healthy"
	if status != http.StatusOK {
		healthy = "degraded"
	}
	c.JSON(status, gin.H{
		"status":   healthy,
		"database": database,
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Stripe-Signature, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
