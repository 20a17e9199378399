package routes

import (
	"github.com/gin-gonic/gin"

	"event-marketplace-server/middleware"
	"event-marketplace-server/websocket"
)

// RegisterWebSocketRoutes registers the notification push socket. The
// token rides in the query string because browsers cannot set headers
// on WebSocket upgrades.
func RegisterWebSocketRoutes(router *gin.RouterGroup, hub *websocket.Hub) {
	router.GET("/ws/notifications", middleware.WebSocketAuthMiddleware(), func(c *gin.Context) {
		userID := c.GetUint("user_id")
		websocket.ServeWebSocket(hub, c.Writer, c.Request, userID)
	})
}
