package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medscan/medscan-golang/internal/auth"
	"github.com/medscan/medscan-golang/internal/models"
	"github.com/medscan/medscan-golang/internal/store"
)

const (
	userIDKey = "userID"
	userKey   = "user"
)

// Auth validates the Bearer token and loads the authenticated user into the
// Gin context. Requests without a valid token are rejected with 401.
func Auth(tokens *auth.TokenManager, users store.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header required"})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header must be a Bearer token"})
			return
		}

		userID, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Set(userKey, user)
		c.Next()
	}
}

// AdminOnly rejects requests from non-admin users. It must run after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID, or 0 outside Auth.
func CurrentUserID(c *gin.Context) int64 {
	id, _ := c.Get(userIDKey)
	userID, _ := id.(int64)
	return userID
}

// CurrentUser returns the authenticated user, or nil outside Auth.
func CurrentUser(c *gin.Context) *models.User {
	u, _ := c.Get(userKey)
	user, _ := u.(*models.User)
	return user
}
