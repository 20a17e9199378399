package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/database"
	"event-marketplace-server/middleware"
	"event-marketplace-server/models"
	"event-marketplace-server/services"
)

// AdminDeps bundles the services the admin surface touches.
type AdminDeps struct {
	Vendors         *services.VendorService
	Reviews         *services.ReviewService
	Recommendations *services.RecommendationService
	Reference       *services.ReferenceService
	Contact         *services.ContactService
	Subscriptions   *services.SubscriptionService
	Dispatcher      services.Dispatcher
}

// RegisterAdminRoutes registers the back-office endpoints.
func RegisterAdminRoutes(router *gin.RouterGroup, deps AdminDeps) {
	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", adminDashboard)
		admin.GET("/users", adminListUsers)
		admin.POST("/users/:id/activate", adminSetUserActive(true))
		admin.POST("/users/:id/deactivate", adminSetUserActive(false))

		admin.GET("/tiers", adminListTiers(deps.Subscriptions))
		admin.POST("/vendors/:id/activate", adminSetVendorActive(deps.Vendors, true))
		admin.POST("/vendors/:id/deactivate", adminSetVendorActive(deps.Vendors, false))
		admin.POST("/vendors/:id/feature", adminSetVendorFeatured(deps.Vendors, true))
		admin.POST("/vendors/:id/unfeature", adminSetVendorFeatured(deps.Vendors, false))
		admin.POST("/vendors/:id/tier", adminAssignTier(deps.Vendors))

		admin.GET("/reviews/pending", adminListPendingReviews(deps.Reviews))
		admin.POST("/reviews/:id/approve", adminModerateReview(deps.Reviews, true))
		admin.POST("/reviews/:id/reject", adminModerateReview(deps.Reviews, false))
		admin.DELETE("/reviews/:id", adminDeleteReview(deps.Reviews))

		admin.GET("/recommendations", adminListRecommendations(deps.Recommendations))
		admin.POST("/recommendations", adminCreateRecommendation(deps.Recommendations))
		admin.POST("/recommendations/:id/send", adminSendRecommendation(deps.Recommendations, deps.Dispatcher))

		admin.POST("/service-types", adminCreateServiceType(deps.Reference))
		admin.PUT("/service-types/:id", adminUpdateServiceType(deps.Reference))
		admin.DELETE("/service-types/:id", adminDeleteServiceType(deps.Reference))
		admin.POST("/event-types", adminCreateEventType(deps.Reference))
		admin.POST("/countries", adminCreateCountry(deps.Reference))
		admin.POST("/cities", adminCreateCity(deps.Reference))
		admin.POST("/districts", adminCreateDistrict(deps.Reference))

		admin.GET("/contact-messages", adminListContactMessages(deps.Contact))
		admin.PUT("/contact-messages/:id", adminUpdateContactMessage(deps.Contact))
	}
}

// adminDashboard aggregates the headline platform numbers.
func adminDashboard(c *gin.Context) {
	var stats struct {
		Users           int64 `json:"users"`
		Clients         int64 `json:"clients"`
		Providers       int64 `json:"providers"`
		Vendors         int64 `json:"vendors"`
		ActiveVendors   int64 `json:"active_vendors"`
		FeaturedVendors int64 `json:"featured_vendors"`
		Projects        int64 `json:"projects"`
		OpenProjects    int64 `json:"open_projects"`
		Requests        int64 `json:"requests"`
		Proposals       int64 `json:"proposals"`
		PendingReviews  int64 `json:"pending_reviews"`
		NewContacts     int64 `json:"new_contacts"`
	}

	db := database.DB
	db.Model(&models.User{}).Count(&stats.Users)
	db.Model(&models.User{}).Where("role = ?", models.RoleClient).Count(&stats.Clients)
	db.Model(&models.User{}).Where("role = ?", models.RoleProvider).Count(&stats.Providers)
	db.Model(&models.VendorProfile{}).Count(&stats.Vendors)
	db.Model(&models.VendorProfile{}).Where("is_active = ?", true).Count(&stats.ActiveVendors)
	db.Model(&models.VendorProfile{}).Where("is_featured = ?", true).Count(&stats.FeaturedVendors)
	db.Model(&models.Project{}).Count(&stats.Projects)
	db.Model(&models.Project{}).Where("status IN ?", []models.ProjectStatus{
		models.ProjectStatusPublished, models.ProjectStatusInProgress,
	}).Count(&stats.OpenProjects)
	db.Model(&models.ProposalRequest{}).Count(&stats.Requests)
	db.Model(&models.Proposal{}).Count(&stats.Proposals)
	db.Model(&models.Review{}).Where("status = ?", models.ReviewStatusPending).Count(&stats.PendingReviews)
	db.Model(&models.ContactMessage{}).Where("status = ?", models.ContactStatusNew).Count(&stats.NewContacts)

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func adminListUsers(c *gin.Context) {
	query := database.DB.Order("created_at DESC")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func adminSetUserActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		result := database.DB.Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
		if result.Error != nil {
			respondError(c, result.Error)
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "message": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User updated"})
	}
}

func adminListTiers(subscriptions *services.SubscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tiers, err := subscriptions.ListTiers()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tiers": tiers})
	}
}

func adminSetVendorActive(vendors *services.VendorService, active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		vendor, err := vendors.SetActive(id, active)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vendor updated", "vendor": vendor})
	}
}

func adminSetVendorFeatured(vendors *services.VendorService, featured bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		vendor, err := vendors.SetFeatured(id, featured)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vendor updated", "vendor": vendor})
	}
}

// AssignTierRequest sets a vendor's subscription
type AssignTierRequest struct {
	TierID    *uint      `json:"tier_id"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func adminAssignTier(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req AssignTierRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}
		vendor, err := vendors.AssignTier(id, req.TierID, req.ExpiresAt)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Subscription updated", "vendor": vendor})
	}
}

func adminListPendingReviews(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, err := reviews.ListPending()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": pending})
	}
}

// ModerationRequest carries the optional moderation note
type ModerationRequest struct {
	Note string `json:"note"`
}

func adminModerateReview(reviews *services.ReviewService, approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req ModerationRequest
		c.ShouldBindJSON(&req)

		var review *models.Review
		var err error
		if approve {
			review, err = reviews.Approve(user, id, req.Note)
		} else {
			review, err = reviews.Reject(user, id, req.Note)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review moderated", "review": review})
	}
}

func adminDeleteReview(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := reviews.Delete(id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
	}
}

func adminListRecommendations(recommendations *services.RecommendationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := recommendations.ListAll()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recommendations": results})
	}
}

// RecommendationRequest creates a vendor recommendation for a project
type RecommendationRequest struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	VendorID  uint   `json:"vendor_id" binding:"required"`
	Note      string `json:"note"`
}

func adminCreateRecommendation(recommendations *services.RecommendationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		var req RecommendationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}
		recommendation, err := recommendations.Create(user, req.ProjectID, req.VendorID, req.Note)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":        "Recommendation created",
			"recommendation": recommendation,
		})
	}
}

func adminSendRecommendation(recommendations *services.RecommendationService, dispatcher services.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		recommendation, events, err := recommendations.MarkSent(id)
		if err != nil {
			respondError(c, err)
			return
		}
		dispatcher.Dispatch(events...)
		c.JSON(http.StatusOK, gin.H{
			"message":        "Recommendation sent to client",
			"recommendation": recommendation,
		})
	}
}

// ReferenceEntryRequest covers service type and event type writes
type ReferenceEntryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func adminCreateServiceType(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReferenceEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "message": err.Error()})
			return
		}
		serviceType, err := reference.CreateServiceType(c.Request.Context(), req.Name, req.Description, req.Icon)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"service_type": serviceType})
	}
}

func adminUpdateServiceType(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req ReferenceEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "message": err.Error()})
			return
		}
		serviceType, err := reference.UpdateServiceType(c.Request.Context(), id, req.Name, req.Description, req.Icon)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"service_type": serviceType})
	}
}

func adminDeleteServiceType(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := reference.DeleteServiceType(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Service type deleted"})
	}
}

func adminCreateEventType(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReferenceEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "message": err.Error()})
			return
		}
		eventType, err := reference.CreateEventType(c.Request.Context(), req.Name, req.Description, req.Icon)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"event_type": eventType})
	}
}

// CountryRequest creates a country
type CountryRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Code         string `json:"code" binding:"required,len=2"`
	FlagEmoji    string `json:"flag_emoji"`
	DisplayOrder int    `json:"display_order"`
}

func adminCreateCountry(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CountryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "message": err.Error()})
			return
		}
		country, err := reference.CreateCountry(c.Request.Context(), req.Name, req.Code, req.FlagEmoji, req.DisplayOrder)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"country": country})
	}
}

// CityRequest creates a city
type CityRequest struct {
	CountryID *uint  `json:"country_id"`
	Name      string `json:"name" binding:"required,max=100"`
}

func adminCreateCity(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "message": err.Error()})
			return
		}
		city, err := reference.CreateCity(c.Request.Context(), req.CountryID, req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"city": city})
	}
}

// DistrictRequest creates a district
type DistrictRequest struct {
	CityID uint   `json:"city_id" binding:"required"`
	Name   string `json:"name" binding:"required,max=100"`
}

func adminCreateDistrict(reference *services.ReferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DistrictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "message": err.Error()})
			return
		}
		district, err := reference.CreateDistrict(c.Request.Context(), req.CityID, req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"district": district})
	}
}

func adminListContactMessages(contact *services.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		messages, err := contact.List(c.Query("status"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"contact_messages": messages})
	}
}

// ContactUpdateRequest moves a contact message through the workflow
type ContactUpdateRequest struct {
	Status     string  `json:"status" binding:"required,oneof=new read replied archived"`
	AdminNotes *string `json:"admin_notes"`
}

func adminUpdateContactMessage(contact *services.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req ContactUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "message": err.Error()})
			return
		}
		message, err := contact.UpdateStatus(id, req.Status, req.AdminNotes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Contact message updated", "contact_message": message})
	}
}
