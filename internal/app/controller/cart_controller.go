package controller

import (
	stdErrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddCartItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart returns the owner's cart lines and total
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	items, err := ctrl.cartService.ListCartItems(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "failed to fetch cart")
		return
	}

	total := model.MustMoney("0")
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
		"total": total,
	})
}

// AddItem adds a product or increments an existing line
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		respondMutation(c, http.StatusBadRequest, "productId and a positive quantity are required")
		return
	}

	err := ctrl.cartService.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, userID, err)
		return
	}

	respondMutation(c, http.StatusOK, "")
}

// UpdateItem sets an absolute quantity; zero removes the line
// PATCH /api/v1/cart/items/:productId
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	productID, err := parseProductIDParam(c)
	if err != nil {
		respondMutation(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart update request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		respondMutation(c, http.StatusBadRequest, "quantity is required")
		return
	}

	if err := ctrl.cartService.UpdateItemQuantity(c.Request.Context(), userID, productID, *req.Quantity); err != nil {
		ctrl.respondCartError(c, userID, err)
		return
	}

	respondMutation(c, http.StatusOK, "")
}

// RemoveItem deletes a cart line if present
// DELETE /api/v1/cart/items/:productId
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	productID, err := parseProductIDParam(c)
	if err != nil {
		respondMutation(c, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := ctrl.cartService.RemoveItem(c.Request.Context(), userID, productID); err != nil {
		ctrl.respondCartError(c, userID, err)
		return
	}

	respondMutation(c, http.StatusOK, "")
}

func (ctrl *CartController) respondCartError(c *gin.Context, userID string, err error) {
	switch {
	case stdErrors.Is(err, service.ErrProductNotFound):
		respondMutation(c, http.StatusNotFound, "product not found")
	case stdErrors.Is(err, service.ErrCartNotFound):
		respondMutation(c, http.StatusNotFound, "cart not found")
	case stdErrors.Is(err, service.ErrInvalidQuantity), stdErrors.Is(err, service.ErrInvalidProductRef):
		respondMutation(c, http.StatusBadRequest, err.Error())
	case stdErrors.Is(err, service.ErrUnauthorized):
		errors.Unauthorized(c, "")
	default:
		middleware.GetLoggerFromContext(c).Error("Cart mutation failed", err, map[string]interface{}{
			"user_id": userID,
		})
		respondMutation(c, http.StatusInternalServerError, "failed to update cart")
	}
}

// respondMutation writes the {success, error?} body used by cart and wishlist mutations.
func respondMutation(c *gin.Context, status int, message string) {
	if message == "" {
		c.JSON(status, gin.H{"success": true})
		return
	}
	c.JSON(status, gin.H{"success": false, "error": message})
}

func parseProductIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil || id == 0 {
		return 0, stdErrors.New("invalid product id")
	}
	return uint(id), nil
}
