package controller

import (
	stdErrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

type CreateCheckoutRequest struct {
	Mode       string `json:"mode"`
	ProductID  uint   `json:"productId"`
	Quantity   int    `json:"quantity"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// CreateSession starts a hosted checkout for one product or the whole cart
// POST /api/v1/checkout
func (ctrl *CheckoutController) CreateSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	var req CreateCheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, errors.ValidationInvalidInput, "invalid request body")
			return
		}
	}

	result, err := ctrl.checkoutService.CreateSession(c.Request.Context(), userID, service.CheckoutRequest{
		Mode:       service.CheckoutMode(req.Mode),
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		switch {
		case stdErrors.Is(err, service.ErrUnauthorized):
			errors.Unauthorized(c, "")
		case stdErrors.Is(err, service.ErrMissingFields):
			errors.BadRequest(c, errors.CheckoutMissingFields, "missing productId or quantity")
		case stdErrors.Is(err, service.ErrCartEmpty):
			errors.BadRequest(c, errors.CartEmpty, "cart is empty")
		case stdErrors.Is(err, service.ErrInvalidCheckoutMode):
			errors.BadRequest(c, errors.CheckoutInvalidMode, "mode must be cart or single")
		case stdErrors.Is(err, service.ErrProductNotFound):
			errors.NotFound(c, errors.ProductNotFound, "product not found")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"user_id": userID,
				"mode":    req.Mode,
			})
			errors.InternalError(c, "failed to create checkout session")
		}
		return
	}

	log.Info("Checkout session created", map[string]interface{}{
		"user_id":    userID,
		"session_id": result.ID,
	})
	c.JSON(http.StatusOK, result)
}
