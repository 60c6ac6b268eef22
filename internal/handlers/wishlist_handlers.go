package handlers

import (
	"net/http"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/gin-gonic/gin"
)

// ListWishlist handles GET /v1/wishlist
func (h *Handlers) ListWishlist(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	items, err := h.Wishlist.ListWishlist(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to load wishlist")
		return
	}
	if items == nil {
		items = []models.WishlistItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type WishlistInput struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
}

// AddToWishlist handles POST /v1/wishlist
// Adding a product twice is not an error.
func (h *Handlers) AddToWishlist(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input WishlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Wishlist.AddToWishlist(c.Request.Context(), userID, input.ProductID); err != nil {
		h.respondError(c, err, "Failed to update wishlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Added to wishlist", "inWishlist": true})
}

// ToggleWishlist handles POST /v1/wishlist/:productId/toggle
func (h *Handlers) ToggleWishlist(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}

	added, err := h.Wishlist.ToggleWishlist(c.Request.Context(), userID, productID)
	if err != nil {
		h.respondError(c, err, "Failed to update wishlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"inWishlist": added})
}

// RemoveFromWishlist handles DELETE /v1/wishlist/:productId
func (h *Handlers) RemoveFromWishlist(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}

	if err := h.Wishlist.RemoveFromWishlist(c.Request.Context(), userID, productID); err != nil {
		h.respondError(c, err, "Failed to update wishlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist", "inWishlist": false})
}
