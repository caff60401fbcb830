package likes

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/features/notifications"
	"github.com/devlink-social/devlink/internal/features/posts"
)

// RegisterRoutes registers like routes
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, repo *Repository, postsRepo *posts.Repository, authRepo *auth.Repository, notificationService *notifications.Service, authMiddleware gin.HandlerFunc) {
	handler := NewHandler(repo, postsRepo, authRepo, notificationService)

	postLikes := router.Group("/posts/:id")
	{
		postLikes.POST("/like", authMiddleware, handler.Like)
		postLikes.DELETE("/like", authMiddleware, handler.Unlike)
		postLikes.GET("/like/status", authMiddleware, handler.Status)
		postLikes.GET("/likes", handler.Likers)
	}
}
