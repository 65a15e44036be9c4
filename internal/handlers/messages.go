package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/repositories"
)

// MessageHandler serves conversation history endpoints.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	profileRepo repositories.ProfileRepository
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, profileRepo repositories.ProfileRepository) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo, profileRepo: profileRepo}
}

// GetConversation returns the messages exchanged between the authenticated
// user and a contact, oldest first.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	contactID, ok := pathID(c, "contact_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	userID := c.GetInt("userID")
	if contactID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot load conversation with yourself"})
		return
	}

	msgs, err := h.messageRepo.ListConversation(c.Request.Context(), userID, contactID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	contactName, err := h.profileRepo.DisplayName(c.Request.Context(), contactID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contact_id":   contactID,
		"contact_name": contactName,
		"messages":     msgs,
	})
}
