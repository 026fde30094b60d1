package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rivermart/storefront-backend/internal/services"
)

type CartHandler struct {
	cartService services.CartService
}

func NewCartHandler(cartService services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart returns the caller's cart with light items; guests get a null cart.
func (ch *CartHandler) GetCart(c *gin.Context) {
	cart, err := ch.cartService.GetOrCreateCart(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"cart": cart})
}

// GetCartDetails returns the joined variant/product projection for rendering.
func (ch *CartHandler) GetCartDetails(c *gin.Context) {
	cart, err := ch.cartService.GetCartWithDetails(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"cart": cart})
}

func (ch *CartHandler) GetCartItemCount(c *gin.Context) {
	count, err := ch.cartService.GetCartItemCount(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"count": count})
}

type addToCartInput struct {
	ProductVariantID uuid.UUID `json:"product_variant_id" binding:"required"`
	Quantity         int       `json:"quantity"`
}

func (ch *CartHandler) AddToCart(c *gin.Context) {
	var input addToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: "invalid input: " + err.Error()}})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if err := ch.cartService.AddToCart(c.Request.Context(), input.ProductVariantID, input.Quantity); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

type updateQuantityInput struct {
	Quantity int `json:"quantity"`
}

func (ch *CartHandler) UpdateCartItemQuantity(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: "invalid item id"}})
		return
	}
	var input updateQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: "invalid input: " + err.Error()}})
		return
	}
	if err := ch.cartService.UpdateCartItemQuantity(c.Request.Context(), itemID, input.Quantity); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CartHandler) RemoveFromCart(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: "invalid item id"}})
		return
	}
	if err := ch.cartService.RemoveFromCart(c.Request.Context(), itemID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CartHandler) ClearCart(c *gin.Context) {
	if err := ch.cartService.ClearCart(c.Request.Context()); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

type migrateInput struct {
	Items []services.GuestCartItem `json:"items"`
}

// MigrateGuestCart merges the client's local guest lines into the
// authenticated cart. Called by the client once, right after sign-in.
func (ch *CartHandler) MigrateGuestCart(c *gin.Context) {
	var input migrateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: "invalid input: " + err.Error()}})
		return
	}
	ok, err := ch.cartService.MigrateGuestCart(c.Request.Context(), input.Items)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": ok})
}
