package likes

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/features/notifications"
	"github.com/devlink-social/devlink/internal/features/posts"
	"github.com/devlink-social/devlink/internal/mentions"
	"github.com/devlink-social/devlink/internal/pkg/response"
)

type Handler struct {
	repo                *Repository
	postsRepo           *posts.Repository
	authRepo            *auth.Repository
	notificationService *notifications.Service
}

func NewHandler(repo *Repository, postsRepo *posts.Repository, authRepo *auth.Repository, notificationService *notifications.Service) *Handler {
	return &Handler{
		repo:                repo,
		postsRepo:           postsRepo,
		authRepo:            authRepo,
		notificationService: notificationService,
	}
}

// Like godoc
// @Summary Like a post
// @Description Idempotent: liking an already-liked post is a no-op
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /posts/{id}/like [post]
func (h *Handler) Like(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	post, err := h.postsRepo.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		response.NotFound(c, "Post not found", "POST_NOT_FOUND")
		return
	}

	created, err := h.repo.CreateLike(c.Request.Context(), postID, user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to like post")
		return
	}

	likeCount := post.LikeCount
	if created {
		if err := h.postsRepo.IncrementLikeCount(c.Request.Context(), postID, 1); err != nil {
			log.Printf("Failed to bump like count on %s: %v", postID.Hex(), err)
		}
		likeCount++

		preview := mentions.RenderDisplay(post.Content)
		if err := h.notificationService.NotifyLike(c.Request.Context(), post.UserID, user.ID, postID, preview); err != nil {
			log.Printf("Failed to send like notification for %s: %v", postID.Hex(), err)
		}
	}

	response.Success(c, LikeStatusResponse{HasLiked: true, LikeCount: likeCount})
}

// Unlike godoc
// @Summary Remove a like
// @Description Idempotent: unliking a post that was never liked is a no-op
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /posts/{id}/like [delete]
func (h *Handler) Unlike(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	post, err := h.postsRepo.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		response.NotFound(c, "Post not found", "POST_NOT_FOUND")
		return
	}

	deleted, err := h.repo.DeleteLike(c.Request.Context(), postID, user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to unlike post")
		return
	}

	likeCount := post.LikeCount
	if deleted {
		if err := h.postsRepo.IncrementLikeCount(c.Request.Context(), postID, -1); err != nil {
			log.Printf("Failed to drop like count on %s: %v", postID.Hex(), err)
		}
		if likeCount > 0 {
			likeCount--
		}
	}

	response.Success(c, LikeStatusResponse{HasLiked: false, LikeCount: likeCount})
}

// Status godoc
// @Summary Get like status for the current user
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.SuccessResponse
// @Router /posts/{id}/like/status [get]
func (h *Handler) Status(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	post, err := h.postsRepo.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		response.NotFound(c, "Post not found", "POST_NOT_FOUND")
		return
	}

	hasLiked, err := h.repo.ExistsLike(c.Request.Context(), postID, user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to check like status")
		return
	}

	response.Success(c, LikeStatusResponse{HasLiked: hasLiked, LikeCount: post.LikeCount})
}

// Likers godoc
// @Summary List users who liked a post
// @Tags likes
// @Produce json
// @Param id path string true "Post ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.PaginatedResponse
// @Router /posts/{id}/likes [get]
func (h *Handler) Likers(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	var query LikersListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	likes, total, err := h.repo.GetLikers(c.Request.Context(), postID, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch likers")
		return
	}

	userIDs := make([]primitive.ObjectID, len(likes))
	for i, l := range likes {
		userIDs[i] = l.UserID
	}
	users, _ := h.authRepo.GetUsersByIDs(c.Request.Context(), userIDs)
	userMap := make(map[primitive.ObjectID]*auth.User)
	for i := range users {
		userMap[users[i].ID] = &users[i]
	}

	likers := make([]Liker, 0, len(likes))
	for _, l := range likes {
		if u, ok := userMap[l.UserID]; ok {
			likers = append(likers, Liker{
				ID:          u.ID,
				Username:    u.Username,
				DisplayName: u.DisplayName,
				AvatarURL:   u.AvatarURL,
				LikedAt:     l.CreatedAt,
			})
		}
	}

	response.Paginated(c, likers, total, query.Limit, query.Page)
}
