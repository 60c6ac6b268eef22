package handlers

import (
	"net/http"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/pricing"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// --- Responses ---

// CartLine is one priced line of the cart.
type CartLine struct {
	ItemID      int64           `json:"itemId"`
	VariantID   int64           `json:"variantId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	ProductSlug string          `json:"productSlug"`
	VariantName string          `json:"variantName"`
	SKU         string          `json:"sku"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	Stock       int             `json:"stock"`
	Available   bool            `json:"available"` // product active and enough stock
}

type CartView struct {
	Items   []CartLine      `json:"items"`
	Summary pricing.Summary `json:"summary"`
}

// buildCartView prices a loaded cart with the configured policy.
func buildCartView(cart *models.Cart, policy pricing.Policy) CartView {
	view := CartView{Items: make([]CartLine, 0, len(cart.Items))}
	lines := make([]pricing.Line, 0, len(cart.Items))

	for _, item := range cart.Items {
		v := item.Variant
		if v == nil || v.Product == nil {
			continue
		}
		unit := v.EffectivePrice(v.Product.Price)
		line := CartLine{
			ItemID:      item.ID,
			VariantID:   v.ID,
			ProductID:   v.Product.ID,
			ProductName: v.Product.Name,
			ProductSlug: v.Product.Slug,
			VariantName: v.DisplayName(),
			SKU:         v.SKU,
			UnitPrice:   unit,
			Quantity:    item.Quantity,
			LineTotal:   unit.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Stock:       v.Stock,
			Available:   v.Product.IsActive && item.Quantity <= v.Stock,
		}
		if img := v.Product.PrimaryImage(); img != nil {
			line.ImageURL = img.URL
		}
		view.Items = append(view.Items, line)
		lines = append(lines, pricing.Line{UnitPrice: unit, Quantity: item.Quantity})
	}

	view.Summary = policy.Quote(lines)
	return view
}

// --- Handlers ---

// GetCart handles GET /v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	cart, err := h.Carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to load cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": buildCartView(cart, h.Pricing)})
}

// GetCartCount handles GET /v1/cart/count
func (h *Handlers) GetCartCount(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	n, err := h.Carts.CountItems(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to count cart items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

type AddToCartInput struct {
	VariantID int64 `json:"variantId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0,lte=100"`
}

// AddToCart handles POST /v1/cart/items
func (h *Handlers) AddToCart(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	// 1. Bind & Validate JSON
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. Add (merges with an existing line; stock is checked in the same transaction)
	if err := h.Carts.AddItem(c.Request.Context(), userID, input.VariantID, input.Quantity); err != nil {
		h.respondError(c, err, "Failed to add item to cart")
		return
	}

	// 3. Return the new badge count
	n, err := h.Carts.CountItems(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to count cart items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "count": n})
}

type UpdateCartItemInput struct {
	// Zero removes the line.
	Quantity *int `json:"quantity" binding:"required,gte=0,lte=100"`
}

// UpdateCartItem handles PUT /v1/cart/items/:id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	itemID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Carts.SetItemQuantity(c.Request.Context(), userID, itemID, *input.Quantity); err != nil {
		h.respondError(c, err, "Failed to update cart item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
}

// RemoveCartItem handles DELETE /v1/cart/items/:id
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	itemID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Carts.RemoveItem(c.Request.Context(), userID, itemID); err != nil {
		h.respondError(c, err, "Failed to remove cart item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed"})
}

// ClearCart handles DELETE /v1/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	if err := h.Carts.ClearCart(c.Request.Context(), userID); err != nil {
		h.respondError(c, err, "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
