package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
)

// SettingReader reads one site setting.
type SettingReader interface {
	GetSetting(ctx context.Context, key string) (*models.SiteSetting, error)
}

// MaintenanceMiddleware answers 503 while the maintenance_mode setting is
// "true". It is only attached to storefront routes; auth and admin keep
// working. A failed lookup lets the request through.
func MaintenanceMiddleware(settings SettingReader, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := settings.GetSetting(c.Request.Context(), models.SettingMaintenanceMode)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Warn("maintenance check failed", "error", err)
		}

		if err == nil && s.Value == "true" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "The store is currently in maintenance mode. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
