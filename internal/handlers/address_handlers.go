package handlers

import (
	"net/http"
	"strings"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/gin-gonic/gin"
)

type AddressInput struct {
	FullName   string `json:"fullName" binding:"required,max=150"`
	Phone      string `json:"phone" binding:"required,max=30"`
	Line1      string `json:"line1" binding:"required,max=255"`
	Line2      string `json:"line2" binding:"max=255"`
	City       string `json:"city" binding:"required,max=100"`
	Province   string `json:"province" binding:"max=100"`
	PostalCode string `json:"postalCode" binding:"max=20"`
	Country    string `json:"country" binding:"max=80"`
	IsDefault  bool   `json:"isDefault"`
}

func (in *AddressInput) apply(a *models.Address) {
	a.FullName = strings.TrimSpace(in.FullName)
	a.Phone = strings.TrimSpace(in.Phone)
	a.Line1 = strings.TrimSpace(in.Line1)
	a.Line2 = strings.TrimSpace(in.Line2)
	a.City = strings.TrimSpace(in.City)
	a.Province = strings.TrimSpace(in.Province)
	a.PostalCode = strings.TrimSpace(in.PostalCode)
	a.Country = strings.TrimSpace(in.Country)
	if a.Country == "" {
		a.Country = "Nepal"
	}
}

// ListAddresses handles GET /v1/addresses
func (h *Handlers) ListAddresses(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	addresses, err := h.Users.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to load addresses")
		return
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// CreateAddress handles POST /v1/addresses
// The first address a user saves becomes the default.
func (h *Handlers) CreateAddress(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addr := &models.Address{UserID: userID, IsDefault: input.IsDefault}
	input.apply(addr)

	if err := h.Users.CreateAddress(c.Request.Context(), addr); err != nil {
		h.respondError(c, err, "Failed to save address")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Address saved", "address": addr})
}

// UpdateAddress handles PUT /v1/addresses/:id
func (h *Handlers) UpdateAddress(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addr, err := h.Users.GetAddress(c.Request.Context(), userID, id)
	if err != nil {
		h.respondError(c, err, "Failed to load address")
		return
	}
	input.apply(addr)
	// The default can only move by making another address default.
	addr.IsDefault = addr.IsDefault || input.IsDefault

	if err := h.Users.UpdateAddress(c.Request.Context(), addr); err != nil {
		h.respondError(c, err, "Failed to update address")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address updated", "address": addr})
}

// DeleteAddress handles DELETE /v1/addresses/:id
func (h *Handlers) DeleteAddress(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Users.DeleteAddress(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err, "Failed to delete address")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

// SetDefaultAddress handles POST /v1/addresses/:id/default
func (h *Handlers) SetDefaultAddress(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Users.SetDefaultAddress(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err, "Failed to set default address")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default address updated"})
}
