package routes

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/database"
	"event-marketplace-server/middleware"
	"event-marketplace-server/models"
	"event-marketplace-server/services"
	"event-marketplace-server/utils"
)

// RegisterRequest is the signup payload. Role picks between client and
// provider; admins are created out of band.
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=client provider"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
}

// LoginRequest is the signin payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token to exchange
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest is the payload for editing account basics
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,max=255"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
}

// RegisterAuthRoutes registers authentication routes
func RegisterAuthRoutes(router *gin.RouterGroup, jwtService *services.JWTService) {
	auth := router.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware())
	{
		auth.POST("/register", register(jwtService))
		auth.POST("/login", login(jwtService))
		auth.POST("/refresh", refresh(jwtService))
		auth.POST("/logout", middleware.AuthMiddleware(), logout(jwtService))
		auth.GET("/me", middleware.AuthMiddleware(), getCurrentUser)
		auth.PUT("/profile", middleware.AuthMiddleware(), updateProfile)
	}
}

func register(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var existing models.User
		if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "User already exists",
				"message": "An account with this email already exists",
			})
			return
		}

		hashedPassword, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Password hashing failed",
				"message": "Failed to process password",
			})
			return
		}

		role := models.UserRole(req.Role)
		if role == "" {
			role = models.RoleClient
		}

		user := models.User{
			FullName:     req.FullName,
			Email:        email,
			PasswordHash: hashedPassword,
			Role:         role,
			Phone:        req.Phone,
			City:         req.City,
			IsActive:     true,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "User creation failed",
				"message": "Failed to create user account",
			})
			return
		}

		tokens, err := jwtService.GenerateTokenPair(&user, c.Request.UserAgent(), c.ClientIP())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Token generation failed",
				"message": "Failed to generate authentication token",
			})
			return
		}

		log.Printf("✅ New %s registered: %s", user.Role, user.Email)
		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully",
			"tokens":  tokens,
			"user":    user,
		})
	}
}

func login(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var user models.User
		if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Email or password is incorrect",
			})
			return
		}
		if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Email or password is incorrect",
			})
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "User inactive",
				"message": "User account is deactivated",
			})
			return
		}

		tokens, err := jwtService.GenerateTokenPair(&user, c.Request.UserAgent(), c.ClientIP())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Token generation failed",
				"message": "Failed to generate authentication token",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"tokens":  tokens,
			"user":    user,
		})
	}
}

func refresh(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"message": err.Error(),
			})
			return
		}

		tokens, err := jwtService.RefreshAccessToken(req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid refresh token",
				"message": "Refresh token is invalid, revoked or expired",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tokens": tokens})
	}
}

func logout(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			// Logout without a refresh token just revokes everything.
			user, _ := middleware.CurrentUser(c)
			if err := jwtService.RevokeAllUserTokens(user.ID); err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Logged out everywhere"})
			return
		}

		if err := jwtService.RevokeRefreshToken(req.RefreshToken); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

func getCurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func updateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"full_name": req.FullName,
		"phone":     req.Phone,
		"city":      req.City,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Update failed",
			"message": "Failed to update profile",
		})
		return
	}

	var updated models.User
	database.DB.First(&updated, user.ID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}
