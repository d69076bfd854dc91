package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListComplaintNotifications returns the lifecycle notifications emitted for
// one complaint, oldest first.
func (h *Handler) ListComplaintNotifications(c *gin.Context) {
	code := c.Param("code")

	complaint, err := h.Storage.GetComplaintByCode(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if complaint == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
		return
	}

	notifications, err := h.Storage.NotificationsByComplaint(complaint.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// ListMyNotifications returns every notification addressed to the
// authenticated reporter, newest first.
func (h *Handler) ListMyNotifications(c *gin.Context) {
	reporterID, ok := reporterFromRequest(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing or invalid"})
		return
	}

	notifications, err := h.Storage.NotificationsByReporter(reporterID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkNotificationRead flips a notification's read flag.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.Storage.MarkNotificationRead(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
