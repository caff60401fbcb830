package feed

import (
	"github.com/gin-gonic/gin"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/features/follows"
	"github.com/devlink-social/devlink/internal/features/likes"
	"github.com/devlink-social/devlink/internal/features/posts"
)

// RegisterRoutes registers the home feed route
func RegisterRoutes(router *gin.RouterGroup, postsRepo *posts.Repository, authRepo *auth.Repository, followsRepo *follows.Repository, likesRepo *likes.Repository, authMiddleware gin.HandlerFunc) {
	service := NewService(postsRepo, authRepo, followsRepo, likesRepo)
	handler := NewHandler(service)

	router.GET("/feed", authMiddleware, handler.GetHomeFeed)
}
