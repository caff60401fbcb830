package routes

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devlink-social/devlink/internal/config"
	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/features/comments"
	"github.com/devlink-social/devlink/internal/features/feed"
	"github.com/devlink-social/devlink/internal/features/follows"
	"github.com/devlink-social/devlink/internal/features/likes"
	"github.com/devlink-social/devlink/internal/features/media"
	"github.com/devlink-social/devlink/internal/features/notifications"
	"github.com/devlink-social/devlink/internal/features/posts"
)

// SetupRoutes wires every feature under /api/v1. Auth registers first so the
// other features can share its repository and middleware; the likes
// repository is created here because posts needs it as a like checker before
// the likes routes exist.
func SetupRoutes(router *gin.Engine, db *mongo.Database, cfg *config.Config) {
	api := router.Group("/api/v1")

	authRepo, authMiddleware := auth.RegisterRoutes(api, db, cfg)
	optionalAuth := auth.OptionalAuthMiddleware(authRepo, cfg)

	notificationService := notifications.RegisterRoutes(api, db, authRepo, authMiddleware)

	likesRepo := likes.NewRepository(db)

	postsRepo := posts.RegisterRoutes(api, db, authRepo, notificationService, likesRepo, authMiddleware, optionalAuth)
	comments.RegisterRoutes(api, db, postsRepo, authRepo, notificationService, authMiddleware, optionalAuth)
	likes.RegisterRoutes(api, db, likesRepo, postsRepo, authRepo, notificationService, authMiddleware)

	followsRepo := follows.RegisterRoutes(api, db, authRepo, notificationService, authMiddleware, optionalAuth)

	feed.RegisterRoutes(api, postsRepo, authRepo, followsRepo, likesRepo, authMiddleware)
	media.RegisterRoutes(api, cfg, authMiddleware)
}
