package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"linkpage-be/internal/jwt"
)

const (
	userIDKey = "user_id"
	emailKey  = "email"
)

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header and
// stores the caller's id and email on the gin context.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header with Bearer token is required",
			})
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// CurrentUserID returns the id stored by AuthMiddleware
func CurrentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDKey)
	return userID, userID != ""
}
