package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

type AddToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gte=1,lte=99"`
}

// GetCart returns the session user's cart
// GET /api/users/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	c.JSON(http.StatusOK, ctrl.cartService.GetCart(user))
}

// AddToCart adds or merges a line
// POST /api/users/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		respondAddToCartBindError(c, err)
		return
	}

	cart, err := ctrl.cartService.AddItem(c.Request.Context(), user, req.ProductID, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// RemoveFromCart drops every line for a product
// DELETE /api/users/cart/:productId
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		// no line can reference a malformed id; removal is a no-op
		c.JSON(http.StatusOK, ctrl.cartService.GetCart(user))
		return
	}

	cart, err := ctrl.cartService.RemoveItem(c.Request.Context(), user, uint(productID))
	if err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// ClearCart empties the persisted cart
// DELETE /api/users/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	cart, err := ctrl.cartService.ClearCart(c.Request.Context(), user)
	if err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// respondAddToCartBindError separates a body that is not valid JSON from a
// missing product and an out of range quantity.
func respondAddToCartBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Request body must be JSON with a numeric productId and an integer quantity")
		return
	}
	for _, fe := range verrs {
		if fe.Field() == "ProductID" {
			apperrors.BadRequest(c, apperrors.ValidationRequired, "productId is required")
			return
		}
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidRange,
		fmt.Sprintf("quantity must be between 1 and %d", model.MaxLineQuantity))
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		apperrors.NotFound(c, apperrors.ItemNotFound, "Item not found")
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.Unauthorized(c, "Not authorized, user not found")
	default:
		middleware.GetLoggerFromContext(c).Error("Cart update failed", err)
		apperrors.InternalError(c, "")
	}
}
