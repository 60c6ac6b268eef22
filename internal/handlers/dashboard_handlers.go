package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Admin Dashboard Stats ---
//

// lowStockThreshold is the stock level at or below which a variant counts
// as low on the dashboard.
const lowStockThreshold = 5

// GetDashboardStats returns KPI data for the admin landing page
// GET /v1/admin/dashboard-stats
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	stats, err := h.Orders.DashboardStats(c.Request.Context(), lowStockThreshold)
	if err != nil {
		h.respondError(c, err, "Failed to load dashboard stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "lowStockThreshold": lowStockThreshold})
}
