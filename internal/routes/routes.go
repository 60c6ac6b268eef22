package routes

import (
	"log/slog"
	"net/http"

	"github.com/antiquenepal/storefront/internal/handlers"
	"github.com/antiquenepal/storefront/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Options carries the router settings that do not belong to handlers.
type Options struct {
	FrontendOrigin string
	UploadsDir     string                     // served at /uploads; empty disables it
	AuthLimiter    *middleware.IPRateLimiter // nil disables rate limiting
	Log            *slog.Logger
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	handlers.RegisterValidators()

	router := gin.Default()

	// --- APPLY THE CORS GUARD ---
	// This must be the very first thing the router uses
	router.Use(middleware.CORSMiddleware(opts.FrontendOrigin))

	if opts.UploadsDir != "" {
		router.Static("/uploads", opts.UploadsDir)
	}

	requireAuth := middleware.AuthMiddleware(h.Tokens)
	requireAdmin := middleware.AdminMiddleware(h.Users)
	maintenance := middleware.MaintenanceMiddleware(h.Content, opts.Log)

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public, rate limited, never in maintenance) ---
		authRoutes := v1.Group("/auth")
		if opts.AuthLimiter != nil {
			authRoutes.Use(middleware.RateLimit(opts.AuthLimiter))
		}
		{
			authRoutes.POST("/register", h.Register)
			authRoutes.POST("/login", h.Login)
			authRoutes.GET("/google/login", h.GoogleLogin)
			authRoutes.GET("/google/callback", h.GoogleCallback)
		}

		// --- Content Routes (Public) ---
		// Kept outside maintenance so the frontend can read the flag itself.
		v1.GET("/content/footer", h.GetFooter)
		v1.GET("/content/settings/:key", h.GetSetting)

		// --- Storefront Routes (Public) ---
		storefront := v1.Group("/")
		storefront.Use(maintenance)
		{
			storefront.GET("/categories", h.ListCategories)
			storefront.GET("/categories/:slug", h.GetCategory)
			storefront.GET("/products", h.ListProducts)
			storefront.GET("/products/:slug", h.GetProduct)
			storefront.GET("/products/:slug/reviews", h.ListReviews)
		}

		// --- Customer Routes (Auth required) ---
		customer := v1.Group("/")
		customer.Use(requireAuth)
		{
			// Profile and notifications stay reachable during maintenance.
			customer.GET("/me", h.Me)
			customer.PUT("/me", h.UpdateMe)
			customer.GET("/notifications", h.GetMyNotifications)
			customer.PATCH("/notifications/read-all", h.MarkAllNotificationsAsRead)
			customer.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)

			shop := customer.Group("/")
			shop.Use(maintenance)

			// Cart
			shop.GET("/cart", h.GetCart)
			shop.GET("/cart/count", h.GetCartCount)
			shop.POST("/cart/items", h.AddToCart)
			shop.PUT("/cart/items/:id", h.UpdateCartItem)
			shop.DELETE("/cart/items/:id", h.RemoveCartItem)
			shop.DELETE("/cart", h.ClearCart)

			// Checkout & orders
			shop.POST("/checkout", h.Checkout)
			shop.GET("/orders", h.ListMyOrders)
			shop.GET("/orders/:id", h.GetMyOrder)
			shop.GET("/orders/:id/receipt.pdf", h.DownloadReceipt)

			// Addresses
			shop.GET("/addresses", h.ListAddresses)
			shop.POST("/addresses", h.CreateAddress)
			shop.PUT("/addresses/:id", h.UpdateAddress)
			shop.DELETE("/addresses/:id", h.DeleteAddress)
			shop.POST("/addresses/:id/default", h.SetDefaultAddress)

			// Wishlist
			shop.GET("/wishlist", h.ListWishlist)
			shop.POST("/wishlist", h.AddToWishlist)
			shop.POST("/wishlist/:productId/toggle", h.ToggleWishlist)
			shop.DELETE("/wishlist/:productId", h.RemoveFromWishlist)

			// Reviews
			shop.POST("/products/:slug/reviews", h.CreateReview)
			shop.DELETE("/reviews/:id", h.DeleteReview)
		}

		// --- Admin Routes (Auth + admin role) ---
		admin := v1.Group("/admin")
		admin.Use(requireAuth, requireAdmin)
		{
			admin.GET("/dashboard-stats", h.GetDashboardStats)
			admin.POST("/uploads", h.UploadImage)

			// Products
			admin.GET("/products", h.AdminListProducts)
			admin.POST("/products", h.CreateProduct)
			admin.GET("/products/:id", h.AdminGetProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.PUT("/products/:id/bundle", h.SaveProductBundle)
			admin.POST("/products/:id/images", h.AddProductImage)
			admin.PUT("/products/:id/images/:imageId", h.UpdateProductImage)
			admin.DELETE("/products/:id/images/:imageId", h.DeleteProductImage)
			admin.POST("/products/:id/variants", h.CreateVariant)
			admin.PUT("/products/:id/variants/:variantId", h.UpdateVariant)
			admin.DELETE("/products/:id/variants/:variantId", h.DeleteVariant)

			// Categories
			admin.POST("/categories", h.CreateCategory)
			admin.PUT("/categories/:id", h.UpdateCategory)
			admin.DELETE("/categories/:id", h.DeleteCategory)

			// Orders
			admin.GET("/orders", h.AdminListOrders)
			admin.GET("/orders/:id", h.AdminGetOrder)
			admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
			admin.PATCH("/orders/:id/payment", h.UpdatePaymentStatus)

			// Content
			admin.PUT("/content/footer", h.SaveFooter)
			admin.GET("/content/settings", h.ListSettings)
			admin.PUT("/content/settings/:key", h.PutSetting)

			// Reviews & assistant
			admin.DELETE("/reviews/:id", h.AdminDeleteReview)
			admin.POST("/assistant/chat", h.AssistantChat)
		}
	}

	return router
}
