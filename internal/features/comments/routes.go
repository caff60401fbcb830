package comments

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/features/notifications"
	"github.com/devlink-social/devlink/internal/features/posts"
)

// RegisterRoutes registers comment routes
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, postsRepo *posts.Repository, authRepo *auth.Repository, notificationService *notifications.Service, authMiddleware, optionalAuth gin.HandlerFunc) {
	repo := NewRepository(db)
	service := NewService(repo, postsRepo, authRepo, notificationService)
	handler := NewHandler(service)

	postComments := router.Group("/posts/:id/comments")
	{
		postComments.POST("", authMiddleware, handler.Add)
		postComments.GET("", optionalAuth, handler.List)
		postComments.GET("/tree", optionalAuth, handler.Tree)
	}

	comments := router.Group("/comments")
	{
		comments.GET("/:id/replies", optionalAuth, handler.ListReplies)
		comments.PATCH("/:id", authMiddleware, handler.Edit)
		comments.DELETE("/:id", authMiddleware, handler.Delete)
	}
}
