package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/antiquenepal/storefront/internal/ai"
	"github.com/antiquenepal/storefront/internal/auth"
	"github.com/antiquenepal/storefront/internal/email"
	"github.com/antiquenepal/storefront/internal/events"
	"github.com/antiquenepal/storefront/internal/pricing"
	"github.com/antiquenepal/storefront/internal/receipt"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
)

// Uploader stores image files and removes them again.
type Uploader interface {
	SaveFileHeader(kind string, fh *multipart.FileHeader) (string, error)
	Delete(url string) error
}

// OAuthProvider runs the Google sign-in flow.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (*auth.GoogleProfile, error)
}

// AssistantService answers back-office questions.
type AssistantService interface {
	Ask(ctx context.Context, question string) (*ai.Answer, error)
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Catalog       store.CatalogStore
	Carts         store.CartStore
	Orders        store.OrderStore
	Users         store.UserStore
	Wishlist      store.WishlistStore
	Reviews       store.ReviewStore
	Content       store.ContentStore
	Notifications store.NotificationStore

	Pricing   pricing.Policy
	Shop      receipt.Shop
	Tokens    *auth.TokenManager
	OAuth     OAuthProvider    // nil when Google sign-in is not configured
	Assistant AssistantService // nil when no API key is configured
	Uploads   Uploader
	Events    events.Publisher
	Mailer    email.Mailer

	PaymentWindow time.Duration
	SecureCookies bool
	Log           *slog.Logger
}

// respondError maps store sentinels onto HTTP statuses. Anything else is
// logged and reported as a 500 with the given message.
func (h *Handlers) respondError(c *gin.Context, err error, failMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInactiveProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrEmptyCart), errors.Is(err, store.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		h.Log.ErrorContext(c.Request.Context(), failMsg, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": failMsg})
	}
}

// paramID parses a positive integer path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// invalidateCatalog drops cached catalog reads after stock moved outside the
// catalog store (checkout, cancellations).
func (h *Handlers) invalidateCatalog(ctx context.Context) {
	if inv, ok := h.Catalog.(interface{ Invalidate(context.Context) }); ok {
		inv.Invalidate(ctx)
	}
}

// publish sends an order event. Failures are logged, never returned.
func (h *Handlers) publish(ctx context.Context, eventType string, e events.OrderEvent) {
	e.Type = eventType
	if err := h.Events.PublishOrderEvent(ctx, e); err != nil {
		h.Log.WarnContext(ctx, "failed to publish order event", "type", eventType, "order", e.OrderNumber, "error", err)
	}
}
