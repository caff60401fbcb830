package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devlink-social/devlink/internal/config"
	"github.com/devlink-social/devlink/internal/pkg/jwt"
	"github.com/devlink-social/devlink/internal/pkg/response"
)

// NewAuthMiddleware creates a Gin middleware for JWT authentication. On
// success it sets both the full "user" document and the hex "userID".
func NewAuthMiddleware(repo *Repository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header required", "AUTH_REQUIRED")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "Invalid authorization format", "INVALID_AUTH_FORMAT")
			c.Abort()
			return
		}

		claims, err := jwt.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token", "INVALID_TOKEN")
			c.Abort()
			return
		}

		user, err := repo.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Unauthorized(c, "User not found", "USER_NOT_FOUND")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", claims.UserID)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the current user if a valid token is
// present but never aborts the request. Handlers check for "user" themselves.
func OptionalAuthMiddleware(repo *Repository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := jwt.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			c.Next()
			return
		}

		if user, err := repo.GetUserByID(c.Request.Context(), claims.UserID); err == nil {
			c.Set("user", user)
			c.Set("userID", claims.UserID)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the Gin context
func CurrentUser(c *gin.Context) (*User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*User)
	return user, ok
}
