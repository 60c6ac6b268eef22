package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/antiquenepal/storefront/internal/email"
	"github.com/antiquenepal/storefront/internal/events"
	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/receipt"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
)

// --- Checkout ---

type CheckoutInput struct {
	AddressID     int64  `json:"addressId" binding:"required,gt=0"`
	PaymentMethod string `json:"paymentMethod" binding:"required,oneof=cod esewa khalti"`
	Notes         string `json:"notes" binding:"max=1000"`
}

// Checkout handles POST /v1/checkout
// It converts the user's cart into a pending order.
func (h *Handlers) Checkout(c *gin.Context) {
	// 1. --- Get User ID ---
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	// 2. --- Bind & Validate JSON ---
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. --- Place the order ---
	// Stock locking, snapshotting, totals and cart clearing all happen in one
	// transaction inside the store.
	order, err := h.Orders.PlaceOrder(c.Request.Context(), store.PlaceOrderInput{
		UserID:        userID,
		AddressID:     input.AddressID,
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
		Pricing:       h.Pricing,
	})
	if err != nil {
		h.respondError(c, err, "Failed to place order")
		return
	}

	// 4. --- Side effects (best-effort) ---
	ctx := c.Request.Context()
	h.invalidateCatalog(ctx)
	h.publish(ctx, events.OrderPlaced, events.NewOrderEvent(events.OrderPlaced, order))
	h.sendConfirmation(ctx, userID, order)

	// 5. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

func (h *Handlers) sendConfirmation(ctx context.Context, userID int64, order *models.Order) {
	user, err := h.Users.GetUser(ctx, userID)
	if err != nil {
		h.Log.WarnContext(ctx, "failed to load user for confirmation email", "order", order.OrderNumber, "error", err)
		return
	}
	if err := email.SendOrderConfirmation(ctx, h.Mailer, user.Email, h.Shop.Name, h.Shop.Currency, h.PaymentWindow, order); err != nil {
		h.Log.WarnContext(ctx, "failed to send confirmation email", "order", order.OrderNumber, "error", err)
	}
}

// --- My orders ---

// ListMyOrders handles GET /v1/orders
func (h *Handlers) ListMyOrders(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	orders, meta, err := fetchPage(parsePage(c), func(p store.Page) ([]models.Order, int64, error) {
		return h.Orders.ListUserOrders(c.Request.Context(), userID, p)
	})
	if err != nil {
		h.respondError(c, err, "Failed to load orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "pagination": meta})
}

// GetMyOrder handles GET /v1/orders/:id
func (h *Handlers) GetMyOrder(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.GetUserOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		h.respondError(c, err, "Failed to load order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// DownloadReceipt handles GET /v1/orders/:id/receipt.pdf
func (h *Handlers) DownloadReceipt(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.GetUserOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		h.respondError(c, err, "Failed to load order")
		return
	}

	var buf bytes.Buffer
	if err := receipt.Render(&buf, h.Shop, order); err != nil {
		h.respondError(c, err, "Failed to render receipt")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt-%s.pdf"`, order.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// --- Worker ---

// ProcessOverdueOrders cancels online-payment orders left unpaid past the
// payment window, then notifies each customer. It returns how many orders
// were cancelled.
func (h *Handlers) ProcessOverdueOrders(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-h.PaymentWindow)

	cancelled, err := h.Orders.CancelOverdueOrders(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(cancelled) == 0 {
		return 0, nil
	}

	h.invalidateCatalog(ctx)
	for i := range cancelled {
		o := &cancelled[i]
		msg := fmt.Sprintf("Order %s was cancelled because payment was not received in time.", o.OrderNumber)
		h.notify(ctx, o, msg)
		h.publish(ctx, events.OrderCancelled, events.NewOrderEvent(events.OrderCancelled, o))
	}
	h.Log.InfoContext(ctx, "cancelled overdue orders", "count", len(cancelled))
	return len(cancelled), nil
}

// notify adds an order notification for the order's owner. Failures are logged.
func (h *Handlers) notify(ctx context.Context, o *models.Order, message string) {
	link := fmt.Sprintf("/orders/%d", o.ID)
	if err := h.Notifications.AddNotification(ctx, o.UserID, message, link); err != nil {
		h.Log.WarnContext(ctx, "failed to add notification", "order", o.OrderNumber, "error", err)
	}
}
