package notifications

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devlink-social/devlink/internal/features/auth"
)

// RegisterRoutes registers the notification routes and returns the service
// other features notify through
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, authRepo *auth.Repository, authMiddleware gin.HandlerFunc) *Service {
	repo := NewRepository(db)
	handler := NewHandler(repo, authRepo)

	notifications := router.Group("/notifications")
	notifications.Use(authMiddleware)
	{
		notifications.GET("", handler.List)
		notifications.GET("/unread-count", handler.UnreadCount)
		notifications.PATCH("/:id/read", handler.MarkAsRead)
		notifications.PATCH("/read-all", handler.MarkAllAsRead)
	}

	return NewService(repo)
}
