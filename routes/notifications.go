package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/middleware"
	"event-marketplace-server/services"
)

// RegisterNotificationRoutes registers the in-app notification feed.
func RegisterNotificationRoutes(router *gin.RouterGroup, notifications *services.NotificationService) {
	group := router.Group("/notifications")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("", listNotifications(notifications))
		group.GET("/unread-count", notificationUnreadCount(notifications))
		group.POST("/read-all", markAllNotificationsRead(notifications))
		group.POST("/read/:id", markNotificationRead(notifications))
	}
}

func listNotifications(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		results, err := notifications.List(user.ID, queryInt(c, "limit", 50))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": results})
	}
}

func notificationUnreadCount(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		count, err := notifications.UnreadCount(user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread_count": count})
	}
}

func markNotificationRead(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		notification, err := notifications.MarkRead(user.ID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":      "Notification marked as read",
			"notification": notification,
		})
	}
}

func markAllNotificationsRead(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		marked, err := notifications.MarkAllRead(user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":      "All notifications marked as read",
			"marked_count": marked,
		})
	}
}
