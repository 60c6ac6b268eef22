package handlers

import (
	"net/http"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

const notificationLimit = 50

// GetMyNotifications is the handler for GET /v1/notifications
// It returns the latest notifications for the logged-in user, unread first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	// 1. --- Get User ID ---
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	// 2. --- Query ---
	notifications, err := h.Notifications.ListNotifications(c.Request.Context(), userID, notificationLimit)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve notifications")
		return
	}

	// 3. --- Count unread for the badge ---
	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unread": unread})
}

// MarkNotificationAsRead is the handler for PATCH /v1/notifications/:id/read
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// The store only matches rows owned by this user.
	if err := h.Notifications.MarkNotificationRead(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err, "Failed to update notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllNotificationsAsRead is the handler for PATCH /v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsAsRead(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	if err := h.Notifications.MarkAllNotificationsRead(c.Request.Context(), userID); err != nil {
		h.respondError(c, err, "Failed to update notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
