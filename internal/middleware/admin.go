package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
)

// UserLookup loads the current user for role checks.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// AdminMiddleware must run after AuthMiddleware. The role is read from the
// database, not the token, so a demoted admin loses access immediately.
func AdminMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get userID from AuthMiddleware
		userID_raw, exists := c.Get("userID")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
			return
		}
		userID := userID_raw.(int64)

		// 2. Load the user's current role
		user, err := users.GetUser(c.Request.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			return
		}

		// 3. Check permission
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: Admin role required"})
			return
		}

		// 4. Success! Add role to context and proceed.
		c.Set("userRole", user.Role)
		c.Next()
	}
}
