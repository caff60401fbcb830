package posts

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/features/notifications"
	"github.com/devlink-social/devlink/internal/mentions"
)

// RegisterRoutes registers post routes and returns the repository for
// features that hang off posts
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, authRepo *auth.Repository, notificationService *notifications.Service, likes LikeChecker, authMiddleware, optionalAuth gin.HandlerFunc) *Repository {
	repo := NewRepository(db)
	processor := mentions.NewProcessor(authRepo, notificationService)
	handler := NewHandler(repo, authRepo, processor, likes)

	posts := router.Group("/posts")
	{
		posts.GET("", optionalAuth, handler.Discover)
		posts.POST("", authMiddleware, handler.Create)
		posts.GET("/:id", optionalAuth, handler.Get)
		posts.PATCH("/:id", authMiddleware, handler.Update)
		posts.DELETE("/:id", authMiddleware, handler.Delete)
	}

	users := router.Group("/users")
	{
		users.GET("/:username/posts", optionalAuth, handler.ListUserPosts)
	}

	return repo
}
