package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/middleware"
	"event-marketplace-server/models"
	"event-marketplace-server/services"
)

// RegisterVendorRoutes registers public vendor browsing and the
// provider's own profile management.
func RegisterVendorRoutes(router *gin.RouterGroup, vendors *services.VendorService, reviews *services.ReviewService, quota *services.QuotaService) {
	public := router.Group("/vendors")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("", listVendors(vendors))
		public.GET("/:id", getVendor(vendors))
		public.GET("/:id/reviews", listVendorReviews(reviews))
	}

	// Own-profile management lives under /vendor to keep the public
	// /vendors/:id wildcard free of conflicts.
	my := router.Group("/vendor")
	my.Use(middleware.AuthMiddleware(), middleware.ProviderMiddleware())
	{
		my.GET("/profile", getMyVendorProfile(vendors))
		my.PUT("/profile", saveMyVendorProfile(vendors))
		my.POST("/logo", uploadLogo(vendors))
		my.POST("/images", addPortfolioImage(vendors))
		my.DELETE("/images/:id", deletePortfolioImage(vendors))
		my.GET("/storage", getStorageInfo(quota))
	}
}

func listVendors(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := services.VendorFilter{
			ServiceTypeID: queryUint(c, "service_type_id"),
			CityID:        queryUint(c, "city_id"),
			DistrictID:    queryUint(c, "district_id"),
			MinBudget:     queryFloat(c, "min_budget"),
			MaxBudget:     queryFloat(c, "max_budget"),
			Search:        strings.TrimSpace(c.Query("search")),
			FeaturedOnly:  c.Query("featured") == "true",
			Page:          queryInt(c, "page", 1),
			PageSize:      queryInt(c, "page_size", 20),
		}

		results, total, err := vendors.ListVendors(filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"vendors": results,
			"total":   total,
			"page":    filter.Page,
		})
	}
}

func getVendor(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		viewer, _ := middleware.CurrentUser(c)
		vendor, err := vendors.GetVendor(id, viewer)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vendor": vendor})
	}
}

func listVendorReviews(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		results, err := reviews.ListForVendor(id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": results})
	}
}

func getMyVendorProfile(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		profile, err := vendors.GetProfileByUser(user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": profile})
	}
}

func saveMyVendorProfile(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var payload models.VendorProfileRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		profile, err := vendors.SaveProfile(user, &payload)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Profile saved successfully",
			"profile": profile,
		})
	}
}

func uploadLogo(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		fileHeader, err := c.FormFile("logo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Missing file",
				"message": "Provide the logo as multipart field \"logo\"",
			})
			return
		}

		head, file, err := openUpload(fileHeader)
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()

		profile, err := vendors.UploadLogo(c.Request.Context(), user, &services.ImageUpload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Head:     head,
			Content:  file,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Logo uploaded successfully",
			"profile": profile,
		})
	}
}

func addPortfolioImage(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Missing file",
				"message": "Provide the image as multipart field \"image\"",
			})
			return
		}

		head, file, err := openUpload(fileHeader)
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()

		image, err := vendors.AddPortfolioImage(c.Request.Context(), user, &services.ImageUpload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Head:     head,
			Content:  file,
			Caption:  c.PostForm("caption"),
			IsCover:  c.PostForm("is_cover") == "true",
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Image added successfully",
			"image":   image,
		})
	}
}

func deletePortfolioImage(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := vendors.DeletePortfolioImage(c.Request.Context(), user, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
	}
}

func getStorageInfo(quota *services.QuotaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		info, err := quota.StorageInfo(user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"storage": info})
	}
}
