package controller

import (
	stdErrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// ListOrders returns the owner's orders, newest first
// GET /api/v1/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.ListOrders(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one of the owner's orders
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "invalid order id")
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), userID, uint(id))
	if err != nil {
		if stdErrors.Is(err, service.ErrOrderNotFound) {
			errors.NotFound(c, errors.OrderNotFound, "order not found")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": id,
		})
		errors.RespondWithParsedError(c, err, "order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
