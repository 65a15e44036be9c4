package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/repositories"
)

// NotificationHandler serves stored notifications and per-sender
// notification preferences.
type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
	preferenceRepo   repositories.PreferenceRepository
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(notificationRepo repositories.NotificationRepository, preferenceRepo repositories.PreferenceRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo, preferenceRepo: preferenceRepo}
}

// ListNotifications returns the caller's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := c.GetInt("userID")

	list, err := h.notificationRepo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// SetPreference stores whether the caller wants notifications about a sender.
func (h *NotificationHandler) SetPreference(c *gin.Context) {
	senderID, ok := pathID(c, "sender_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sender id"})
		return
	}

	var req struct {
		Notify *bool `json:"notify" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.preferenceRepo.Set(c.Request.Context(), userID, senderID, *req.Notify); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store preference"})
		return
	}

	c.Status(http.StatusNoContent)
}
