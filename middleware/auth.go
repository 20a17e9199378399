package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/database"
	"event-marketplace-server/models"
	"event-marketplace-server/utils"
)

// AuthMiddleware validates the Bearer token and puts the user in the
// gin context under "user" / "user_id".
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := utils.ExtractBearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authorization header required",
				"message": "Please provide a valid token",
			})
			c.Abort()
			return
		}

		user, ok := authenticate(c, tokenString)
		if !ok {
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the user when a valid token is present
// and stays silent otherwise. Public endpoints that behave differently
// for owners (draft projects, inactive vendor profiles) use it.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := utils.ExtractBearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := utils.VerifyToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		var user models.User
		if err := database.DB.First(&user, claims.UserID).Error; err == nil && user.IsActive {
			c.Set("user", user)
			c.Set("user_id", user.ID)
		}
		c.Next()
	}
}

// WebSocketAuthMiddleware reads the token from the query string.
// Browsers cannot set headers on WebSocket upgrades.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Token required",
				"message": "Please provide a valid token in query parameters",
			})
			c.Abort()
			return
		}

		user, ok := authenticate(c, tokenString)
		if !ok {
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// AdminMiddleware requires an authenticated admin. Mount after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// ProviderMiddleware requires an authenticated provider.
func ProviderMiddleware() gin.HandlerFunc {
	return RequireRole(models.RoleProvider)
}

// ClientMiddleware requires an authenticated client.
func ClientMiddleware() gin.HandlerFunc {
	return RequireRole(models.RoleClient)
}

// RequireRole gates a route group on the authenticated user's role.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Please log in",
			})
			c.Abort()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Access denied",
			"message": "Your account does not have access to this resource",
		})
		c.Abort()
	}
}

// CurrentUser reads the authenticated user from the gin context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(models.User)
	if !ok {
		return nil, false
	}
	return &user, true
}

func authenticate(c *gin.Context, tokenString string) (models.User, bool) {
	claims, err := utils.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Invalid token",
			"message": "Token is invalid or expired",
		})
		c.Abort()
		return models.User{}, false
	}

	var user models.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "User not found",
			"message": "User associated with token not found",
		})
		c.Abort()
		return models.User{}, false
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "User inactive",
			"message": "User account is deactivated",
		})
		c.Abort()
		return models.User{}, false
	}
	return user, true
}
