package media

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/devlink-social/devlink/internal/config"
	"github.com/devlink-social/devlink/internal/features/posts"
	"github.com/devlink-social/devlink/internal/pkg/cloudinary"
)

// RegisterRoutes registers media routes. When Cloudinary credentials are
// missing the upload endpoints answer 503 instead of failing startup.
func RegisterRoutes(router *gin.RouterGroup, cfg *config.Config, authMiddleware gin.HandlerFunc) {
	cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, "devlink")
	if err != nil {
		log.Printf("Cloudinary not configured, uploads disabled: %v", err)
	}

	handler := NewHandler(cld, posts.NewScraper())

	media := router.Group("/media", authMiddleware)
	{
		media.POST("/upload", handler.UploadImage)
		media.POST("/avatar", handler.UploadAvatar)
		media.GET("/preview", handler.Preview)
	}
}
