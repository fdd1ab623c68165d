package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"mealplan-system/internal/orders"
	"mealplan-system/internal/utils"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}

// JWTAuth requires a valid bearer token and stores its claims on the
// context. Event streams cannot set headers, so a token query parameter is
// accepted as well.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if header := c.GetHeader("Authorization"); header != "" {
			scheme, value, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				unauthorized(c, "Invalid authorization header")
				return
			}
			token = strings.TrimSpace(value)
		} else {
			token = c.Query("token")
		}
		if token == "" {
			unauthorized(c, "Authorization token required")
			return
		}

		claims, err := utils.ParseToken(secret, token)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole lets through only users whose role is one of roles.
func RequireRole(roles ...orders.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role := CurrentUser(c)
		if !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (string, orders.Role) {
	role, _ := c.Get(ContextRole)
	r, _ := role.(orders.Role)
	return c.GetString(ContextUserID), r
}
