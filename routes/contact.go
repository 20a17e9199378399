package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/models"
	"event-marketplace-server/services"
)

// RegisterContactRoutes registers the public contact form.
func RegisterContactRoutes(router *gin.RouterGroup, contact *services.ContactService) {
	router.POST("/contact", submitContact(contact))
}

func submitContact(contact *services.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload models.ContactPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		message, err := contact.Submit(&payload)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Thank you for reaching out, we will get back to you soon",
			"id":      message.ID,
		})
	}
}
