package middleware

import (
	"net/http"
	"strings"

	"github.com/antiquenepal/storefront/internal/auth"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware creates a gin.HandlerFunc that acts as our "security guard".
// A valid Bearer token puts userID and userRole into the context.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			return
		}

		// 2. --- Validate Token ---
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		userID, _ := claims.UserID()

		// 3. --- Success ---
		c.Set("userID", userID)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}
