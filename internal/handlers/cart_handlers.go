package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medscan/medscan-golang/internal/middleware"
)

// GetCart is the handler for GET /api/cart. A user with no cart gets an
// empty one, never a 404.
func (h *Handlers) GetCart(c *gin.Context) {
	cart, err := h.Cart.Get(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
}

// AddToCartInput is the payload for adding a medicine to the cart.
type AddToCartInput struct {
	MedicineID int64 `json:"medicineId" binding:"required"`
	Quantity   int   `json:"quantity" binding:"required,gt=0"`
}

// AddToCart is the handler for POST /api/cart/add. Adding a medicine
// already in the cart accumulates its quantity.
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
		return
	}

	cart, err := h.Cart.AddItem(c.Request.Context(), middleware.CurrentUserID(c), input.MedicineID, input.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Item added to cart",
		"cart":    cart,
	})
}

// UpdateCartItemInput sets an item's quantity. Zero removes the line.
// Quantity is a pointer so an explicit zero passes required validation.
type UpdateCartItemInput struct {
	MedicineID int64 `json:"medicineId" binding:"required"`
	Quantity   *int  `json:"quantity" binding:"required,gte=0"`
}

// UpdateCartItem is the handler for PUT /api/cart/update.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
		return
	}

	cart, err := h.Cart.UpdateQuantity(c.Request.Context(), middleware.CurrentUserID(c), input.MedicineID, *input.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cart updated",
		"cart":    cart,
	})
}

// RemoveCartItem is the handler for DELETE /api/cart/remove/:medicineId.
// Removing a medicine that is not in the cart is a no-op.
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	medicineID, ok := pathID(c, "medicineId")
	if !ok {
		return
	}

	cart, err := h.Cart.RemoveItem(c.Request.Context(), middleware.CurrentUserID(c), medicineID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Item removed from cart",
		"cart":    cart,
	})
}

// ClearCart is the handler for DELETE /api/cart/clear.
func (h *Handlers) ClearCart(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared"})
}
