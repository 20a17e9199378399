package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/middleware"
	"event-marketplace-server/services"
)

// RegisterRecommendationRoutes registers the client-side recommendation
// progression. Creation and sending are admin operations.
func RegisterRecommendationRoutes(router *gin.RouterGroup, recommendations *services.RecommendationService) {
	group := router.Group("/recommendations")
	group.Use(middleware.AuthMiddleware())
	{
		group.POST("/:id/viewed", progressRecommendation(recommendations, "viewed"))
		group.POST("/:id/contacted", progressRecommendation(recommendations, "contacted"))
		group.POST("/:id/accept", progressRecommendation(recommendations, "accept"))
		group.POST("/:id/decline", progressRecommendation(recommendations, "decline"))
	}
}

func progressRecommendation(recommendations *services.RecommendationService, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var err error
		var recommendation interface{}
		switch action {
		case "viewed":
			recommendation, err = recommendations.MarkViewed(user, id)
		case "contacted":
			recommendation, err = recommendations.MarkContacted(user, id)
		case "accept":
			recommendation, err = recommendations.Decide(user, id, true)
		case "decline":
			recommendation, err = recommendations.Decide(user, id, false)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":        "Recommendation updated",
			"recommendation": recommendation,
		})
	}
}
