package handlers

import (
	"net/http"
	"strings"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
)

// ListReviews handles GET /v1/products/:slug/reviews
func (h *Handlers) ListReviews(c *gin.Context) {
	product, err := h.Catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err, "Failed to load product")
		return
	}

	reviews, meta, err := fetchPage(parsePage(c), func(p store.Page) ([]models.Review, int64, error) {
		return h.Reviews.ListReviews(c.Request.Context(), product.ID, p)
	})
	if err != nil {
		h.respondError(c, err, "Failed to load reviews")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews":    reviews,
		"summary":    models.RatingSummary{Average: product.AverageRating, Count: product.ReviewCount},
		"pagination": meta,
	})
}

type ReviewInput struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Title  string `json:"title" binding:"max=150"`
	Body   string `json:"body" binding:"max=5000"`
}

// CreateReview handles POST /v1/products/:slug/reviews
// A customer may review each product once.
func (h *Handlers) CreateReview(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.Catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err, "Failed to load product")
		return
	}

	review := &models.Review{
		ProductID: product.ID,
		UserID:    userID,
		Rating:    input.Rating,
		Title:     strings.TrimSpace(input.Title),
		Body:      strings.TrimSpace(input.Body),
	}
	if err := h.Reviews.CreateReview(c.Request.Context(), review); err != nil {
		h.respondError(c, err, "Failed to save review")
		return
	}

	// Product detail carries the rating summary.
	h.invalidateCatalog(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": "Review saved", "review": review})
}

// DeleteReview handles DELETE /v1/reviews/:id
// Customers may only remove their own reviews; admins may remove any.
func (h *Handlers) DeleteReview(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	review, err := h.Reviews.GetReview(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to load review")
		return
	}
	if review.UserID != userID {
		// The stored role decides, not the token claim.
		caller, err := h.Users.GetUser(c.Request.Context(), userID)
		if err != nil {
			h.respondError(c, err, "Failed to load user")
			return
		}
		if !caller.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own reviews"})
			return
		}
	}

	h.removeReview(c, id)
}

// AdminDeleteReview handles DELETE /v1/admin/reviews/:id
func (h *Handlers) AdminDeleteReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.removeReview(c, id)
}

func (h *Handlers) removeReview(c *gin.Context, id int64) {
	if err := h.Reviews.DeleteReview(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete review")
		return
	}
	h.invalidateCatalog(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
