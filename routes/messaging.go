package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/middleware"
	"event-marketplace-server/services"
)

// RegisterMessagingRoutes registers the conversation endpoints.
func RegisterMessagingRoutes(router *gin.RouterGroup, messaging *services.MessagingService, dispatcher services.Dispatcher) {
	group := router.Group("/conversations")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("", listConversations(messaging))
		group.GET("/:id/messages", listConversationMessages(messaging))
		group.POST("/:id/messages", postMessage(messaging, dispatcher))
		group.POST("/:id/read", markConversationRead(messaging))
	}

	// Kept off /conversations so the :id wildcard stays unambiguous.
	messages := router.Group("/messages")
	messages.Use(middleware.AuthMiddleware())
	{
		messages.GET("/unread-count", unreadCount(messaging))
	}
}

func listConversations(messaging *services.MessagingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		summaries, err := messaging.ListConversations(user)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversations": summaries})
	}
}

func unreadCount(messaging *services.MessagingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		count, err := messaging.UnreadCount(user)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread_count": count})
	}
}

func listConversationMessages(messaging *services.MessagingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		messages, err := messaging.ListMessages(user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages})
	}
}

// postMessage accepts multipart form data: "content" plus an optional
// "attachment" file.
func postMessage(messaging *services.MessagingService, dispatcher services.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		content := c.PostForm("content")

		var attachment *services.AttachmentUpload
		if fileHeader, err := c.FormFile("attachment"); err == nil {
			head, file, err := openUpload(fileHeader)
			if err != nil {
				respondError(c, err)
				return
			}
			defer file.Close()
			attachment = &services.AttachmentUpload{
				Filename: fileHeader.Filename,
				Size:     fileHeader.Size,
				Head:     head,
				Content:  file,
			}
		}

		message, events, err := messaging.PostMessage(c.Request.Context(), user, id, content, attachment)
		if err != nil {
			respondError(c, err)
			return
		}
		dispatcher.Dispatch(events...)

		c.JSON(http.StatusCreated, gin.H{
			"message": "Message sent",
			"data":    message,
		})
	}
}

func markConversationRead(messaging *services.MessagingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		marked, err := messaging.MarkConversationRead(user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":      "Conversation marked as read",
			"marked_count": marked,
		})
	}
}
