package handlers

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/antiquenepal/storefront/internal/events"
	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Admin: Order Management Handlers ---
//

// AdminListOrders is the handler for GET /v1/admin/orders
// Optional filters: ?status=, ?q= (order number or customer email).
func (h *Handlers) AdminListOrders(c *gin.Context) {
	// 1. --- Build Filter ---
	f := store.OrderFilter{
		Status: c.Query("status"),
		Search: strings.TrimSpace(c.Query("q")),
	}
	if f.Status != "" && !slices.Contains(models.OrderStatuses, f.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	// 2. --- Query ---
	orders, meta, err := fetchPage(parsePage(c), func(p store.Page) ([]models.Order, int64, error) {
		f.Page = p
		return h.Orders.ListOrders(c.Request.Context(), f)
	})
	if err != nil {
		h.respondError(c, err, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "pagination": meta})
}

// AdminGetOrder is the handler for GET /v1/admin/orders/:id
func (h *Handlers) AdminGetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// UpdateOrderStatus is the handler for PATCH /v1/admin/orders/:id/status
// Any status may be set. Moving into or out of cancelled moves stock back.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Update (row lock, stock moves in the same transaction) ---
	order, previous, err := h.Orders.UpdateOrderStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		h.respondError(c, err, "Failed to update order status")
		return
	}
	if previous == order.Status {
		c.JSON(http.StatusOK, gin.H{"message": "Order status unchanged", "order": order})
		return
	}

	// 3. --- Side effects (best-effort) ---
	ctx := c.Request.Context()
	if previous == models.OrderStatusCancelled || order.Status == models.OrderStatusCancelled {
		h.invalidateCatalog(ctx)
	}
	msg := fmt.Sprintf("Your order %s is now %s.", order.OrderNumber, strings.ToLower(order.Badge.Label))
	h.notify(ctx, order, msg)
	h.publish(ctx, events.OrderStatusChanged, events.NewOrderEvent(events.OrderStatusChanged, order))

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

type UpdatePaymentStatusInput struct {
	PaymentStatus string `json:"paymentStatus" binding:"required,oneof=unpaid paid refunded"`
}

// UpdatePaymentStatus is the handler for PATCH /v1/admin/orders/:id/payment
func (h *Handlers) UpdatePaymentStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input UpdatePaymentStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Orders.UpdatePaymentStatus(c.Request.Context(), id, input.PaymentStatus)
	if err != nil {
		h.respondError(c, err, "Failed to update payment status")
		return
	}

	h.publish(c.Request.Context(), events.OrderStatusChanged, events.NewOrderEvent(events.OrderStatusChanged, order))
	c.JSON(http.StatusOK, gin.H{"message": "Payment status updated", "order": order})
}
