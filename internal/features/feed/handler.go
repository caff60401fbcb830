package feed

import (
	"github.com/gin-gonic/gin"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetHomeFeed godoc
// @Summary Get home feed
// @Description Posts from followed users (and optionally your own), newest first, cursor paginated
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Items per page (default 20, max 50)"
// @Param cursor query string false "Pagination cursor"
// @Param includeOwn query bool false "Include own posts (default true)"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /feed [get]
func (h *Handler) GetHomeFeed(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	var query FeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	if err := ValidateFeedQuery(&query); err != nil {
		response.BadRequest(c, err.Error(), "INVALID_QUERY")
		return
	}

	if _, err := DecodeCursor(query.Cursor); err != nil {
		response.BadRequest(c, err.Error(), "INVALID_CURSOR")
		return
	}

	feedResponse, err := h.service.GetHomeFeed(c.Request.Context(), user.ID, &query)
	if err != nil {
		response.DatabaseError(c, "Failed to retrieve feed")
		return
	}

	response.Success(c, feedResponse)
}
