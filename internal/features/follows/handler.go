package follows

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/features/notifications"
	"github.com/devlink-social/devlink/internal/pkg/response"
)

type Handler struct {
	repo                *Repository
	authRepo            *auth.Repository
	notificationService *notifications.Service
}

func NewHandler(repo *Repository, authRepo *auth.Repository, notificationService *notifications.Service) *Handler {
	return &Handler{
		repo:                repo,
		authRepo:            authRepo,
		notificationService: notificationService,
	}
}

// resolveTarget looks up the user named in the route
func (h *Handler) resolveTarget(c *gin.Context) (*auth.User, bool) {
	target, err := h.authRepo.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.DatabaseError(c, "Failed to look up user")
		return nil, false
	}
	if target == nil {
		response.NotFound(c, "User not found", "USER_NOT_FOUND")
		return nil, false
	}
	return target, true
}

// Follow godoc
// @Summary Follow a user
// @Description Following an already-followed user is a no-op
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{username}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	target, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	if target.ID == user.ID {
		response.BadRequest(c, "You cannot follow yourself", "SELF_FOLLOW")
		return
	}

	created, err := h.repo.CreateFollow(c.Request.Context(), user.ID, target.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to follow user")
		return
	}

	followerCount := target.FollowerCount
	if created {
		followerCount++
		if err := h.authRepo.IncrementFollowCounts(c.Request.Context(), user.ID, target.ID, 1); err != nil {
			log.Printf("Failed to bump follow counts for %s -> %s: %v", user.ID.Hex(), target.ID.Hex(), err)
		}
		if err := h.notificationService.NotifyFollow(c.Request.Context(), target.ID, user.ID); err != nil {
			log.Printf("Failed to notify %s of new follower: %v", target.ID.Hex(), err)
		}
	}

	response.Success(c, FollowActionResponse{IsFollowing: true, FollowerCount: followerCount})
}

// Unfollow godoc
// @Summary Unfollow a user
// @Description Unfollowing a user you do not follow is a no-op
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{username}/follow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	target, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	if target.ID == user.ID {
		response.BadRequest(c, "You cannot unfollow yourself", "SELF_FOLLOW")
		return
	}

	deleted, err := h.repo.DeleteFollow(c.Request.Context(), user.ID, target.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to unfollow user")
		return
	}

	followerCount := target.FollowerCount
	if deleted {
		if followerCount > 0 {
			followerCount--
		}
		if err := h.authRepo.IncrementFollowCounts(c.Request.Context(), user.ID, target.ID, -1); err != nil {
			log.Printf("Failed to drop follow counts for %s -> %s: %v", user.ID.Hex(), target.ID.Hex(), err)
		}
	}

	response.Success(c, FollowActionResponse{IsFollowing: false, FollowerCount: followerCount})
}

// Status godoc
// @Summary Get follow status for a user
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{username}/follow/status [get]
func (h *Handler) Status(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	target, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	isFollowing, isFollowedBy, err := h.repo.GetFollowStatus(c.Request.Context(), user.ID, target.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to check follow status")
		return
	}

	response.Success(c, FollowStatusResponse{
		IsFollowing:  isFollowing,
		IsFollowedBy: isFollowedBy,
		IsMutual:     isFollowing && isFollowedBy,
	})
}

// Followers godoc
// @Summary List a user's followers
// @Tags follows
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.PaginatedResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{username}/followers [get]
func (h *Handler) Followers(c *gin.Context) {
	target, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	var query FollowListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	follows, total, err := h.repo.GetFollowers(c.Request.Context(), target.ID, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch followers")
		return
	}

	users := h.buildUserResponses(c, follows, func(f Follow) primitive.ObjectID { return f.FollowerID })
	response.Paginated(c, users, total, query.Limit, query.Page)
}

// Following godoc
// @Summary List users a user follows
// @Tags follows
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.PaginatedResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{username}/following [get]
func (h *Handler) Following(c *gin.Context) {
	target, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	var query FollowListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	follows, total, err := h.repo.GetFollowing(c.Request.Context(), target.ID, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch following")
		return
	}

	users := h.buildUserResponses(c, follows, func(f Follow) primitive.ObjectID { return f.FollowingID })
	response.Paginated(c, users, total, query.Limit, query.Page)
}

// buildUserResponses hydrates the listed side of each follow edge and, for a
// signed-in viewer, marks which of them the viewer follows
func (h *Handler) buildUserResponses(c *gin.Context, follows []Follow, pick func(Follow) primitive.ObjectID) []FollowUserResponse {
	if len(follows) == 0 {
		return []FollowUserResponse{}
	}

	ctx := c.Request.Context()

	ids := make([]primitive.ObjectID, len(follows))
	for i, f := range follows {
		ids[i] = pick(f)
	}

	users, err := h.authRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		log.Printf("Failed to hydrate follow list: %v", err)
	}
	userMap := make(map[primitive.ObjectID]*auth.User)
	for i := range users {
		userMap[users[i].ID] = &users[i]
	}

	followingMap := h.viewerFollowing(ctx, c, ids)

	result := make([]FollowUserResponse, 0, len(follows))
	for _, f := range follows {
		id := pick(f)
		u, ok := userMap[id]
		if !ok {
			continue
		}
		result = append(result, FollowUserResponse{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			AvatarURL:   u.AvatarURL,
			Bio:         u.Bio,
			IsFollowing: followingMap[id],
			FollowedAt:  f.CreatedAt,
		})
	}

	return result
}

func (h *Handler) viewerFollowing(ctx context.Context, c *gin.Context, ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	viewer, ok := auth.CurrentUser(c)
	if !ok {
		return map[primitive.ObjectID]bool{}
	}

	followingMap, err := h.repo.GetFollowingIDs(ctx, viewer.ID, ids)
	if err != nil {
		log.Printf("Failed to batch check follow state: %v", err)
		return map[primitive.ObjectID]bool{}
	}
	return followingMap
}
