package follows

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/features/notifications"
)

// RegisterRoutes registers follow routes and returns the repository so the
// home feed can resolve who a user follows
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, authRepo *auth.Repository, notificationService *notifications.Service, authMiddleware, optionalAuth gin.HandlerFunc) *Repository {
	repo := NewRepository(db)
	handler := NewHandler(repo, authRepo, notificationService)

	users := router.Group("/users/:username")
	{
		users.POST("/follow", authMiddleware, handler.Follow)
		users.DELETE("/follow", authMiddleware, handler.Unfollow)
		users.GET("/follow/status", authMiddleware, handler.Status)
		users.GET("/followers", optionalAuth, handler.Followers)
		users.GET("/following", optionalAuth, handler.Following)
	}

	return repo
}
