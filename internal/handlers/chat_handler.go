package handlers

import (
	"net/http"

	"github.com/sunjava/telcodesk/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ChatMessage(c *gin.Context) {
	accountID, ok := h.objectIDParam(c, "account_id")
	if !ok {
		return
	}

	var req struct {
		Message string               `json:"message" binding:"required"`
		History []models.ChatMessage `json:"history"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.accounts.GetAccount(c.Request.Context(), accountID); err != nil {
		h.respondError(c, err)
		return
	}

	reply := h.assistant.ProcessMessage(c.Request.Context(), accountID, req.Message, req.History)
	c.JSON(http.StatusOK, reply)
}
