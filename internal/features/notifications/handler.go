package notifications

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/pkg/response"
)

type Handler struct {
	repo     *Repository
	authRepo *auth.Repository
}

func NewHandler(repo *Repository, authRepo *auth.Repository) *Handler {
	return &Handler{
		repo:     repo,
		authRepo: authRepo,
	}
}

// List godoc
// @Summary List notifications
// @Description Get a paginated list of the current user's notifications, unread first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 20, max 50)"
// @Param unreadOnly query bool false "Only show unread"
// @Success 200 {object} response.PaginatedResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /notifications [get]
func (h *Handler) List(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	var query NotificationListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	if err := ValidateNotificationListQuery(&query); err != nil {
		response.BadRequest(c, err.Error(), "INVALID_QUERY")
		return
	}

	notifications, total, err := h.repo.ListForUser(
		c.Request.Context(),
		user.ID,
		query.UnreadOnly,
		query.Page,
		query.Limit,
	)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch notifications")
		return
	}

	enriched := h.enrich(c.Request.Context(), notifications)

	response.Paginated(c, enriched, total, query.Limit, query.Page)
}

// UnreadCount godoc
// @Summary Get unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /notifications/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	count, err := h.repo.CountUnread(c.Request.Context(), user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to count notifications")
		return
	}

	response.Success(c, UnreadCountResponse{UnreadCount: count})
}

// MarkAsRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /notifications/{id}/read [patch]
func (h *Handler) MarkAsRead(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid notification ID", "INVALID_ID")
		return
	}

	notification, err := h.repo.GetByID(c.Request.Context(), notificationID)
	if err != nil {
		response.NotFound(c, "Notification not found", "NOT_FOUND")
		return
	}

	if notification.RecipientID != user.ID {
		response.Forbidden(c, "Cannot mark others' notifications", "FORBIDDEN")
		return
	}

	if err := h.repo.MarkAsRead(c.Request.Context(), notificationID); err != nil {
		response.DatabaseError(c, "Failed to mark as read")
		return
	}

	response.Success(c, MarkReadResponse{ID: notificationID, IsRead: true})
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /notifications/read-all [patch]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	count, err := h.repo.MarkAllAsRead(c.Request.Context(), user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to mark all as read")
		return
	}

	response.Success(c, MarkAllReadResponse{MarkedCount: count})
}

// enrich hydrates sender profiles with a single batched lookup
func (h *Handler) enrich(ctx context.Context, notifications []Notification) []NotificationResponse {
	if len(notifications) == 0 {
		return []NotificationResponse{}
	}

	senderIDs := make([]primitive.ObjectID, 0)
	seen := make(map[primitive.ObjectID]bool)
	for _, n := range notifications {
		if !seen[n.SenderID] {
			seen[n.SenderID] = true
			senderIDs = append(senderIDs, n.SenderID)
		}
	}

	senders, _ := h.authRepo.GetUsersByIDs(ctx, senderIDs)
	senderMap := make(map[primitive.ObjectID]*auth.User)
	for i := range senders {
		senderMap[senders[i].ID] = &senders[i]
	}

	responses := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp := NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			PostID:    n.PostID,
			CommentID: n.CommentID,
			Preview:   n.Preview,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}

		if sender, ok := senderMap[n.SenderID]; ok {
			resp.Sender = NotificationSender{
				ID:          sender.ID,
				Username:    sender.Username,
				DisplayName: sender.DisplayName,
				AvatarURL:   sender.AvatarURL,
			}
		} else {
			resp.Sender = NotificationSender{
				ID:          n.SenderID,
				Username:    "deleted",
				DisplayName: "Deleted User",
			}
		}

		responses[i] = resp
	}

	return responses
}
