package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/middleware"
	"event-marketplace-server/models"
	"event-marketplace-server/services"
)

// VendorResponseRequest is the vendor's public reply to a review
type VendorResponseRequest struct {
	Response string `json:"response" binding:"required"`
}

// RegisterReviewRoutes registers review creation and vendor responses.
// Approved reviews are read through the public vendor routes.
func RegisterReviewRoutes(router *gin.RouterGroup, reviews *services.ReviewService) {
	group := router.Group("/reviews")
	group.Use(middleware.AuthMiddleware())
	{
		group.POST("", createReview(reviews))
		group.POST("/:id/respond", respondToReview(reviews))
	}
}

func createReview(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var payload models.ReviewPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		review, err := reviews.Create(user, &payload)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Review submitted and awaiting moderation",
			"review":  review,
		})
	}
}

func respondToReview(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var req VendorResponseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		review, err := reviews.VendorRespond(user, id, req.Response)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Response published",
			"review":  review,
		})
	}
}
