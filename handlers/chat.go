package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"voyago/models"
	"voyago/services/dialog"
	"voyago/services/session"
)

// ChatTurnHandler runs one message through the conversation engine. An empty
// conversation_id starts a new conversation; the generated ID comes back in
// the response.
func ChatTurnHandler(svc dialog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)

		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		if req.ConversationID == "" {
			req.ConversationID = uuid.NewString()
		}

		resp, err := svc.ProcessTurn(c.Request.Context(), req.ConversationID, req.Message)
		if err != nil {
			var derr *dialog.DialogError
			if errors.As(err, &derr) {
				logger.Error("conversation storage unavailable",
					zap.String("conversationId", req.ConversationID),
					zap.String("code", derr.Code))
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": derr.Message})
				return
			}
			logger.Error("process turn", zap.String("conversationId", req.ConversationID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// ChatHistoryHandler returns the stored message window of a conversation.
func ChatHistoryHandler(svc dialog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		history, err := svc.History(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
				return
			}
			getLogger(c).Error("load history", zap.String("conversationId", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"conversation_id": id, "messages": history})
	}
}

// ChatResetHandler deletes a conversation so the next message starts fresh.
func ChatResetHandler(svc dialog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if err := svc.Reset(c.Request.Context(), id); err != nil {
			getLogger(c).Error("reset conversation", zap.String("conversationId", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset conversation"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
