package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/middleware"
	"event-marketplace-server/models"
	"event-marketplace-server/services"
)

// RegisterProjectRoutes registers the client's project management.
func RegisterProjectRoutes(router *gin.RouterGroup, projects *services.ProjectService, recommendations *services.RecommendationService) {
	group := router.Group("/projects")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("", listMyProjects(projects))
		group.POST("", createProject(projects))
		group.GET("/:id", getProject(projects))
		group.PUT("/:id", updateProject(projects))
		group.POST("/:id/publish", changeProjectStatus(projects, "publish"))
		group.POST("/:id/start", changeProjectStatus(projects, "start"))
		group.POST("/:id/complete", changeProjectStatus(projects, "complete"))
		group.POST("/:id/cancel", changeProjectStatus(projects, "cancel"))
		group.GET("/:id/recommendations", listProjectRecommendations(recommendations))
	}
}

func listMyProjects(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		results, err := projects.ListMine(user)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": results})
	}
}

func createProject(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var payload models.ProjectRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		project, err := projects.Create(user, &payload)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Project created successfully",
			"project": project,
		})
	}
}

func getProject(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		project, err := projects.Get(user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"project": project})
	}
}

func updateProject(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var payload models.ProjectRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		project, err := projects.Update(user, id, &payload)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Project updated successfully",
			"project": project,
		})
	}
}

func changeProjectStatus(projects *services.ProjectService, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var project *models.Project
		var err error
		switch action {
		case "publish":
			project, err = projects.Publish(user, id)
		case "start":
			project, err = projects.Start(user, id)
		case "complete":
			project, err = projects.Complete(user, id)
		case "cancel":
			project, err = projects.Cancel(user, id)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Project " + string(project.Status),
			"project": project,
		})
	}
}

func listProjectRecommendations(recommendations *services.RecommendationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		results, err := recommendations.ListForProject(user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recommendations": results})
	}
}
