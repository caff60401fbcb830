package auth

import (
	"log"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devlink-social/devlink/internal/config"
	"github.com/devlink-social/devlink/internal/pkg/ratelimit"
)

// RegisterRoutes registers the auth and public user routes
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config) (*Repository, gin.HandlerFunc) {
	var fbAuth *firebaseauth.Client
	if cfg.FirebaseServiceAccountPath != "" {
		client, err := InitFirebase(cfg)
		if err != nil {
			log.Printf("Firebase unavailable, falling back to direct token validation: %v", err)
		} else {
			fbAuth = client
		}
	}

	repo := NewRepository(db)
	handler := NewHandler(repo, cfg, NewSMTPMailer(cfg), fbAuth)
	authMiddleware := NewAuthMiddleware(repo, cfg)

	// Credential endpoints get a tighter limit than the global one
	authLimiter := ratelimit.New(10, time.Minute)
	resetLimiter := ratelimit.New(3, time.Minute)

	auth := router.Group("/auth")
	{
		auth.POST("/register", ratelimit.Middleware(authLimiter), handler.Register)
		auth.POST("/login", ratelimit.Middleware(authLimiter), handler.Login)
		auth.POST("/google", ratelimit.Middleware(authLimiter), handler.GoogleSignIn)
		auth.POST("/password-reset", ratelimit.Middleware(resetLimiter), handler.RequestPasswordReset)
		auth.POST("/password-reset/confirm", ratelimit.Middleware(resetLimiter), handler.ConfirmPasswordReset)

		auth.GET("/me", authMiddleware, handler.Me)
		auth.PATCH("/profile", authMiddleware, handler.UpdateProfile)
	}

	users := router.Group("/users")
	{
		users.GET("/:username", handler.GetUserByUsername)
	}

	return repo, authMiddleware
}
