package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medscan/medscan-golang/internal/middleware"
)

// ListNotifications is the handler for GET /api/notifications. The filter
// query accepts "unread" or "read"; anything else returns everything.
func (h *Handlers) ListNotifications(c *gin.Context) {
	notifications, unreadCount, pagination, err := h.Notifications.List(c.Request.Context(),
		middleware.CurrentUserID(c), c.Query("filter"),
		queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
		"unreadCount":   unreadCount,
		"pagination":    pagination,
	})
}

// UnreadCount is the handler for GET /api/notifications/unread-count.
func (h *Handlers) UnreadCount(c *gin.Context) {
	count, err := h.Notifications.UnreadCount(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "unreadCount": count})
}

// MarkNotificationRead is the handler for PUT /api/notifications/:notificationId/read.
// Marking an already-read notification succeeds without changing readAt.
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c, "notificationId")
	if !ok {
		return
	}

	notification, err := h.Notifications.MarkRead(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notification": notification})
}

// MarkAllNotificationsRead is the handler for PUT /api/notifications/mark-all-read.
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := h.Notifications.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked as read",
		"updated": updated,
	})
}

// DeleteNotification is the handler for DELETE /api/notifications/:notificationId.
func (h *Handlers) DeleteNotification(c *gin.Context) {
	id, ok := pathID(c, "notificationId")
	if !ok {
		return
	}

	if err := h.Notifications.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification deleted"})
}
