package handlers

import (
	"net/http"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/gin-gonic/gin"
)

// ChatInput defines the structure of the JSON request body.
type ChatInput struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// AssistantChat handles POST /v1/admin/assistant/chat
func (h *Handlers) AssistantChat(c *gin.Context) {
	if h.Assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured"})
		return
	}

	// 1. Get User Context (set by AuthMiddleware)
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	// 2. Parse Input
	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. Ask the assistant
	answer, err := h.Assistant.Ask(c.Request.Context(), input.Message)
	if err != nil {
		h.Log.ErrorContext(c.Request.Context(), "assistant request failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant is unavailable"})
		return
	}

	// 4. Save to history
	// A failed write is logged; the admin already has the answer.
	entry := &models.AssistantLog{
		UserID:     userID,
		Question:   input.Message,
		Answer:     answer.Text,
		TokensUsed: answer.TokensUsed,
	}
	if err := h.Notifications.SaveAssistantLog(c.Request.Context(), entry); err != nil {
		h.Log.WarnContext(c.Request.Context(), "failed to save assistant log", "error", err)
	}

	// 5. Return the Answer
	c.JSON(http.StatusOK, answer)
}
