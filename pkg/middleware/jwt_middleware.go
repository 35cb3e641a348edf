package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"tripwise/pkg/utils"
)

func JWTAuthMiddleware(secret []byte) gin.HandlerFunc {

	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil || claims.UserID == "" {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		// Pass user information to the next handler
		c.Set("user_id", claims.UserID)
		c.Set("Role", claims.Role)
		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to the
// "token" query parameter for websocket upgrades from browsers.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

func RoleMiddleware(requiredRole string) gin.HandlerFunc {

	return func(c *gin.Context) {
		role := c.GetString("Role")

		if role != requiredRole {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
