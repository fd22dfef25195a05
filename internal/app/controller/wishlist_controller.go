package controller

import (
	stdErrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
)

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

type AddWishlistItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
}

// GetWishlist lists wishlist items with product details
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	items, err := ctrl.wishlistService.ListWishlistItems(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch wishlist", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "failed to fetch wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// AddItem adds a product to the wishlist
// POST /api/v1/wishlist/items
func (ctrl *WishlistController) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	var req AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMutation(c, http.StatusBadRequest, "productId is required")
		return
	}

	if err := ctrl.wishlistService.AddItem(c.Request.Context(), userID, req.ProductID); err != nil {
		ctrl.respondWishlistError(c, userID, err)
		return
	}

	respondMutation(c, http.StatusOK, "")
}

// RemoveItem removes a product from the wishlist
// DELETE /api/v1/wishlist/items/:productId
func (ctrl *WishlistController) RemoveItem(c *gin.Context) {
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

	if err := ctrl.wishlistService.RemoveItem(c.Request.Context(), userID, productID); err != nil {
		ctrl.respondWishlistError(c, userID, err)
		return
	}

	respondMutation(c, http.StatusOK, "")
}

// CheckItem reports whether a product is in the wishlist
// GET /api/v1/wishlist/items/:productId
func (ctrl *WishlistController) CheckItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	productID, err := parseProductIDParam(c)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "invalid product id")
		return
	}

	inWishlist, err := ctrl.wishlistService.IsInWishlist(c.Request.Context(), userID, productID)
	if err != nil {
		log.Error("Failed to check wishlist", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		errors.InternalError(c, "failed to check wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"in_wishlist": inWishlist})
}

func (ctrl *WishlistController) respondWishlistError(c *gin.Context, userID string, err error) {
	switch {
	case stdErrors.Is(err, service.ErrAlreadyInWishlist):
		respondMutation(c, http.StatusConflict, "product already in wishlist")
	case stdErrors.Is(err, service.ErrProductNotFound):
		respondMutation(c, http.StatusNotFound, "product not found")
	case stdErrors.Is(err, service.ErrInvalidProductRef):
		respondMutation(c, http.StatusBadRequest, err.Error())
	case stdErrors.Is(err, service.ErrUnauthorized):
		errors.Unauthorized(c, "")
	default:
		middleware.GetLoggerFromContext(c).Error("Wishlist mutation failed", err, map[string]interface{}{
			"user_id": userID,
		})
		respondMutation(c, http.StatusInternalServerError, "failed to update wishlist")
	}
}
