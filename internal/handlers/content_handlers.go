package handlers

import (
	"net/http"
	"strings"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/gin-gonic/gin"
)

// GetFooter handles GET /v1/content/footer
func (h *Handlers) GetFooter(c *gin.Context) {
	footer, err := h.Content.GetFooter(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load footer")
		return
	}
	if footer.Links == nil {
		footer.Links = []models.FooterLink{}
	}
	c.JSON(http.StatusOK, gin.H{"footer": footer})
}

type FooterLinkInput struct {
	Section  string `json:"section" binding:"required,max=80"`
	Label    string `json:"label" binding:"required,max=120"`
	URL      string `json:"url" binding:"required,max=500"`
	Position int    `json:"position" binding:"gte=0"`
}

type FooterInput struct {
	About     string            `json:"about"`
	Email     string            `json:"email" binding:"omitempty,email,max=191"`
	Phone     string            `json:"phone" binding:"max=50"`
	Address   string            `json:"address" binding:"max=255"`
	Copyright string            `json:"copyright" binding:"max=255"`
	Links     []FooterLinkInput `json:"links" binding:"omitempty,dive"`
}

// SaveFooter handles PUT /v1/admin/content/footer
// The footer and its links are replaced as a whole.
func (h *Handlers) SaveFooter(c *gin.Context) {
	var input FooterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	footer := &models.FooterContent{
		About:     input.About,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Copyright: input.Copyright,
		Links:     make([]models.FooterLink, 0, len(input.Links)),
	}
	for _, l := range input.Links {
		footer.Links = append(footer.Links, models.FooterLink{
			Section:  strings.TrimSpace(l.Section),
			Label:    strings.TrimSpace(l.Label),
			URL:      strings.TrimSpace(l.URL),
			Position: l.Position,
		})
	}

	if err := h.Content.SaveFooter(c.Request.Context(), footer); err != nil {
		h.respondError(c, err, "Failed to save footer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Footer saved", "footer": footer})
}

// GetSetting handles GET /v1/content/settings/:key
func (h *Handlers) GetSetting(c *gin.Context) {
	setting, err := h.Content.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.respondError(c, err, "Failed to load setting")
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

// ListSettings handles GET /v1/admin/content/settings
func (h *Handlers) ListSettings(c *gin.Context) {
	settings, err := h.Content.ListSettings(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load settings")
		return
	}
	if settings == nil {
		settings = []models.SiteSetting{}
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type SettingInput struct {
	Value string `json:"value" binding:"max=10000"`
}

// PutSetting handles PUT /v1/admin/content/settings/:key
func (h *Handlers) PutSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" || len(key) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key"})
		return
	}

	var input SettingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setting, err := h.Content.PutSetting(c.Request.Context(), key, input.Value)
	if err != nil {
		h.respondError(c, err, "Failed to save setting")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Setting saved", "setting": setting})
}
