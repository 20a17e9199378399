package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/services"
)

// RegisterReferenceRoutes registers the public reference-data reads
// that power signup and search forms.
func RegisterReferenceRoutes(router *gin.RouterGroup, reference *services.ReferenceService) {
	group := router.Group("/reference")
	{
		group.GET("/countries", listCountries(reference))
		group.GET("/cities", listCities(reference))
		group.GET("/cities/:id/districts", listDistricts(reference))
		group.GET("/service-types", listServiceTypes(reference))
		group.GET("/event-types", listEventTypes(reference))
	}
}

func listCountries(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		countries, err := reference.Countries(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"countries": countries})
	}
}

func listCities(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cities, err := reference.Cities(queryUint(c, "country_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cities": cities})
	}
}

func listDistricts(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		districts, err := reference.DistrictsByCity(id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"districts": districts})
	}
}

func listServiceTypes(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		types, err := reference.ServiceTypes(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"service_types": types})
	}
}

func listEventTypes(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		types, err := reference.EventTypes(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"event_types": types})
	}
}
