package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"event-marketplace-server/middleware"
	"event-marketplace-server/services"
	"event-marketplace-server/websocket"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Hub             *websocket.Hub
	Dispatcher      services.Dispatcher
	JWT             *services.JWTService
	Vendors         *services.VendorService
	Projects        *services.ProjectService
	Negotiation     *services.NegotiationService
	Messaging       *services.MessagingService
	Notifications   *services.NotificationService
	Reviews         *services.ReviewService
	Recommendations *services.RecommendationService
	Reference       *services.ReferenceService
	Contact         *services.ContactService
	Subscriptions   *services.SubscriptionService
	Quota           *services.QuotaService
}

// RegisterRoutes wires all API routes onto the engine.
func RegisterRoutes(router *gin.Engine, deps Deps) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RequestSizeMiddleware(12 * 1024 * 1024))
	router.Use(middleware.RateLimitMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"connections": deps.Hub.ConnectedUsers(),
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		RegisterAuthRoutes(apiV1, deps.JWT)
		RegisterVendorRoutes(apiV1, deps.Vendors, deps.Reviews, deps.Quota)
		RegisterProjectRoutes(apiV1, deps.Projects, deps.Recommendations)
		RegisterProposalRoutes(apiV1, deps.Negotiation, deps.Dispatcher)
		RegisterMessagingRoutes(apiV1, deps.Messaging, deps.Dispatcher)
		RegisterNotificationRoutes(apiV1, deps.Notifications)
		RegisterReviewRoutes(apiV1, deps.Reviews)
		RegisterRecommendationRoutes(apiV1, deps.Recommendations)
		RegisterReferenceRoutes(apiV1, deps.Reference)
		RegisterContactRoutes(apiV1, deps.Contact)
		RegisterAdminRoutes(apiV1, AdminDeps{
			Vendors:         deps.Vendors,
			Reviews:         deps.Reviews,
			Recommendations: deps.Recommendations,
			Reference:       deps.Reference,
			Contact:         deps.Contact,
			Subscriptions:   deps.Subscriptions,
			Dispatcher:      deps.Dispatcher,
		})
		RegisterWebSocketRoutes(apiV1, deps.Hub)
	}
}
