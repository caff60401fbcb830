package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/devlink-social/devlink/internal/config"
	"github.com/devlink-social/devlink/internal/pkg/jwt"
	"github.com/devlink-social/devlink/internal/pkg/response"
	apperrors "github.com/devlink-social/devlink/pkg/errors"
)

type Handler struct {
	repo   *Repository
	cfg    *config.Config
	jwtCfg *jwt.Config
	mailer Mailer
	fbAuth *firebaseauth.Client
}

func NewHandler(repo *Repository, cfg *config.Config, mailer Mailer, fbAuth *firebaseauth.Client) *Handler {
	return &Handler{
		repo:   repo,
		cfg:    cfg,
		jwtCfg: jwt.DefaultConfig(cfg.JWTSecret, time.Duration(cfg.JWTExpireHours)*time.Hour),
		mailer: mailer,
		fbAuth: fbAuth,
	}
}

// verifyGoogle prefers the Firebase Admin SDK when a service account is
// configured, falling back to direct ID token validation.
func (h *Handler) verifyGoogle(ctx context.Context, idToken string) (*GoogleUser, error) {
	if h.fbAuth != nil {
		token, err := h.fbAuth.VerifyIDToken(ctx, idToken)
		if err != nil {
			return nil, err
		}
		return googleUserFromFirebase(token), nil
	}
	return VerifyGoogleToken(ctx, idToken, h.cfg.GoogleClientID)
}

// Register godoc
// @Summary Register a new user
// @Description Register with username, email, and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := ValidateUsername(req.Username); err != nil {
		response.BadRequest(c, err.Error(), "INVALID_USERNAME")
		return
	}

	if err := ValidatePassword(req.Password); err != nil {
		response.BadRequest(c, err.Error(), "WEAK_PASSWORD")
		return
	}

	existing, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.DatabaseError(c, "Failed to check email")
		return
	}
	if existing != nil {
		response.Conflict(c, "Email already registered", "EMAIL_TAKEN")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		response.InternalServerError(c, "Failed to process password")
		return
	}

	user := &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.Username,
	}

	if err := h.repo.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			response.Conflict(c, "Username or email already taken", "DUPLICATE_USER")
			return
		}
		response.DatabaseError(c, "Failed to create user")
		return
	}

	token, err := jwt.GenerateToken(user.ID.Hex(), user.Email, h.jwtCfg)
	if err != nil {
		response.InternalServerError(c, "Failed to generate token")
		return
	}

	response.Created(c, AuthResponse{User: user, AccessToken: token})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.DatabaseError(c, "Failed to look up user")
		return
	}
	if user == nil || !CheckPassword(user.PasswordHash, req.Password) {
		response.Unauthorized(c, "Invalid email or password", "INVALID_CREDENTIALS")
		return
	}

	token, err := jwt.GenerateToken(user.ID.Hex(), user.Email, h.jwtCfg)
	if err != nil {
		response.InternalServerError(c, "Failed to generate token")
		return
	}

	response.Success(c, AuthResponse{User: user, AccessToken: token})
}

// GoogleSignIn godoc
// @Summary Sign in with a Google ID token
// @Description Verifies the Google token and signs in, creating an account on first use
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleAuthRequest true "Google ID token"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/google [post]
func (h *Handler) GoogleSignIn(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	googleUser, err := h.verifyGoogle(c.Request.Context(), req.GoogleIDToken)
	if err != nil {
		response.Unauthorized(c, "Invalid Google token", "INVALID_GOOGLE_TOKEN")
		return
	}

	user, err := h.repo.GetUserByGoogleID(c.Request.Context(), googleUser.UID)
	if err != nil {
		response.DatabaseError(c, "Failed to look up user")
		return
	}

	if user == nil {
		// Link to an existing email account if one exists
		user, err = h.repo.GetUserByEmail(c.Request.Context(), googleUser.Email)
		if err != nil {
			response.DatabaseError(c, "Failed to look up user")
			return
		}
		if user != nil {
			if err := h.repo.UpdateUser(c.Request.Context(), user.ID, bson.M{"googleId": googleUser.UID}); err != nil {
				response.DatabaseError(c, "Failed to link account")
				return
			}
			user.GoogleID = googleUser.UID
		}
	}

	if user == nil {
		user, err = h.createGoogleUser(c.Request.Context(), googleUser)
		if err != nil {
			response.DatabaseError(c, "Failed to create user")
			return
		}
	}

	token, err := jwt.GenerateToken(user.ID.Hex(), user.Email, h.jwtCfg)
	if err != nil {
		response.InternalServerError(c, "Failed to generate token")
		return
	}

	response.Success(c, AuthResponse{User: user, AccessToken: token})
}

// createGoogleUser provisions an account for a first-time Google sign-in,
// retrying with numeric suffixes until the generated username is free.
func (h *Handler) createGoogleUser(ctx context.Context, g *GoogleUser) (*User, error) {
	base := GenerateUniqueUsername(g.Name)
	username := base
	for i := 1; i <= 50; i++ {
		taken, err := h.repo.UsernameExists(ctx, username)
		if err != nil {
			return nil, err
		}
		if !taken {
			break
		}
		username = fmt.Sprintf("%s%d", base, i)
	}

	user := &User{
		Username:    username,
		Email:       g.Email,
		GoogleID:    g.UID,
		DisplayName: g.Name,
		AvatarURL:   g.Picture,
		IsVerified:  g.EmailVerified,
	}
	if err := h.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Me godoc
// @Summary Get current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}
	response.Success(c, user)
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /auth/profile [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	updates := bson.M{}
	if req.DisplayName != nil {
		if err := ValidateDisplayName(*req.DisplayName); err != nil {
			response.BadRequest(c, err.Error(), "INVALID_DISPLAY_NAME")
			return
		}
		updates["displayName"] = *req.DisplayName
	}
	if req.Bio != nil {
		if err := ValidateBio(*req.Bio); err != nil {
			response.BadRequest(c, err.Error(), "INVALID_BIO")
			return
		}
		updates["bio"] = *req.Bio
	}
	if req.Website != nil {
		if err := ValidateWebsite(*req.Website); err != nil {
			response.BadRequest(c, err.Error(), "INVALID_WEBSITE")
			return
		}
		updates["website"] = *req.Website
	}
	if req.GitHubUsername != nil {
		updates["githubUsername"] = *req.GitHubUsername
	}

	if len(updates) == 0 {
		response.BadRequest(c, "No fields to update", "EMPTY_UPDATE")
		return
	}

	if err := h.repo.UpdateUser(c.Request.Context(), user.ID, updates); err != nil {
		response.DatabaseError(c, "Failed to update profile")
		return
	}

	updated, err := h.repo.GetUserByObjectID(c.Request.Context(), user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to load profile")
		return
	}

	response.Success(c, updated)
}

// GetUserByUsername godoc
// @Summary Get a public user profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{username} [get]
func (h *Handler) GetUserByUsername(c *gin.Context) {
	user, err := h.repo.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.DatabaseError(c, "Failed to look up user")
		return
	}
	if user == nil {
		response.NotFound(c, "User not found", "USER_NOT_FOUND")
		return
	}

	response.Success(c, user.ToPublicUser())
}

// RequestPasswordReset godoc
// @Summary Request a password reset email
// @Description Always returns 200 so the endpoint cannot be used to probe for accounts
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RequestPasswordResetRequest true "Account email"
// @Success 200 {object} response.SuccessResponse
// @Router /auth/password-reset [post]
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.DatabaseError(c, "Failed to look up user")
		return
	}

	if user != nil {
		token := NewResetToken()
		expires := time.Now().Add(resetTokenTTL)
		if err := h.repo.SetResetToken(c.Request.Context(), user.ID, token, expires); err != nil {
			response.DatabaseError(c, "Failed to store reset token")
			return
		}

		if err := h.mailer.Send(c.Request.Context(), user.Email,
			"Reset your DevLink password",
			resetEmailBody(h.cfg.FrontendURL, token),
		); err != nil {
			log.Printf("Failed to send reset email to %s: %v", user.Email, err)
		}
	}

	response.Success(c, gin.H{"message": "If the email exists, a reset link has been sent"})
}

// ConfirmPasswordReset godoc
// @Summary Set a new password using a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ConfirmPasswordResetRequest true "Reset token and new password"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /auth/password-reset/confirm [post]
func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req ConfirmPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := ValidatePassword(req.Password); err != nil {
		response.BadRequest(c, err.Error(), "WEAK_PASSWORD")
		return
	}

	user, err := h.repo.GetUserByResetToken(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.BadRequest(c, "Invalid or expired reset token", "INVALID_RESET_TOKEN")
			return
		}
		response.DatabaseError(c, "Failed to verify reset token")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		response.InternalServerError(c, "Failed to process password")
		return
	}

	if err := h.repo.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		response.DatabaseError(c, "Failed to update password")
		return
	}

	response.Success(c, gin.H{"message": "Password updated"})
}
