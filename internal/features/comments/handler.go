package comments

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/mentions"
	"github.com/devlink-social/devlink/internal/pkg/response"
	"github.com/devlink-social/devlink/internal/threads"
	apperrors "github.com/devlink-social/devlink/pkg/errors"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Add godoc
// @Summary Add a comment or reply
// @Description Comment on a post, optionally as a reply to another comment. Replies nest at most 5 levels deep.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body CreateCommentRequest true "Comment content"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /posts/{id}/comments [post]
func (h *Handler) Add(c *gin.Context) {
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

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := ValidateCreateCommentRequest(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	var parentID *primitive.ObjectID
	if req.ParentID != "" {
		pid, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			response.BadRequest(c, "Invalid parent comment ID", "INVALID_PARENT_ID")
			return
		}
		parentID = &pid
	}

	comment, err := h.service.Create(c.Request.Context(), postID, parentID, user.ID, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Created(c, h.buildResponses(c.Request.Context(), []Comment{*comment})[0])
}

// List godoc
// @Summary List top-level comments
// @Description One page of a post's top-level comments, newest first. Replies load via /comments/{id}/replies.
// @Tags comments
// @Produce json
// @Param id path string true "Post ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.PaginatedResponse
// @Router /posts/{id}/comments [get]
func (h *Handler) List(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	var query CommentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	comms, total, err := h.service.repo.ListTopLevel(c.Request.Context(), postID, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch comments")
		return
	}

	response.Paginated(c, h.buildResponses(c.Request.Context(), comms), total, query.Limit, query.Page)
}

// ListReplies godoc
// @Summary List a comment's direct replies
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /comments/{id}/replies [get]
func (h *Handler) ListReplies(c *gin.Context) {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid comment ID", "INVALID_ID")
		return
	}

	if _, err := h.service.repo.GetCommentByID(c.Request.Context(), commentID); err != nil {
		h.writeError(c, err)
		return
	}

	comms, err := h.service.repo.ListReplies(c.Request.Context(), commentID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch replies")
		return
	}

	response.Success(c, h.buildResponses(c.Request.Context(), comms))
}

// Tree godoc
// @Summary Get an assembled comment tree
// @Description One page of top-level comments with replies pre-expanded to the requested depth
// @Tags comments
// @Produce json
// @Param id path string true "Post ID"
// @Param page query int false "Top-level page number"
// @Param depth query int false "Levels of replies to pre-expand (default 2, max 5)"
// @Success 200 {object} response.SuccessResponse
// @Router /posts/{id}/comments/tree [get]
func (h *Handler) Tree(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	var query ThreadTreeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	var actorID primitive.ObjectID
	if user, ok := auth.CurrentUser(c); ok {
		actorID = user.ID
	}

	assembler := threads.NewAssembler(NewThreadStore(h.service, actorID), postID, threads.DefaultPageSize)
	defer assembler.Close()

	roots, err := assembler.LoadTopLevel(c.Request.Context(), query.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// Breadth-first pre-expansion down to the requested depth
	frontier := roots
	for level := 0; level < query.Depth && len(frontier) > 0; level++ {
		var next []*threads.Node
		for _, node := range frontier {
			children, err := assembler.Expand(c.Request.Context(), node.ID)
			if err != nil {
				continue
			}
			next = append(next, children...)
		}
		frontier = next
	}

	resp := ThreadTreeResponse{
		PostID:     postID,
		TotalCount: assembler.Total(),
		Comments:   []*TreeNode{},
	}
	for _, n := range assembler.TopLevel() {
		resp.Comments = append(resp.Comments, treeNodeFromThread(n))
	}

	response.Success(c, resp)
}

// Edit godoc
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body UpdateCommentRequest true "New content"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /comments/{id} [patch]
func (h *Handler) Edit(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid comment ID", "INVALID_ID")
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := ValidateUpdateCommentRequest(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	comment, err := h.service.Edit(c.Request.Context(), commentID, user.ID, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, h.buildResponses(c.Request.Context(), []Comment{*comment})[0])
}

// Delete godoc
// @Summary Delete a comment
// @Description The comment author or the post owner may delete. Replies under a deleted comment become unreachable.
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /comments/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid comment ID", "INVALID_ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), commentID, user.ID); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// writeError maps service error kinds onto HTTP responses
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, "Not found", "NOT_FOUND")
	case errors.Is(err, apperrors.ErrUnauthorized):
		response.Forbidden(c, "Not allowed", "FORBIDDEN")
	case errors.Is(err, apperrors.ErrDepthExceeded):
		response.ValidationError(c, "Replies can nest at most 5 levels deep", "DEPTH_EXCEEDED")
	case errors.Is(err, apperrors.ErrTransientIO):
		response.ServiceUnavailable(c, "Temporary failure, try again", "TRANSIENT")
	default:
		response.InternalServerError(c, "Unexpected error", "INTERNAL")
	}
}

// buildResponses hydrates comment authors with one batched query
func (h *Handler) buildResponses(ctx context.Context, comms []Comment) []CommentResponse {
	if len(comms) == 0 {
		return []CommentResponse{}
	}

	authorIDs := make([]primitive.ObjectID, 0)
	seen := make(map[primitive.ObjectID]bool)
	for _, c := range comms {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			authorIDs = append(authorIDs, c.UserID)
		}
	}

	users, _ := h.service.authRepo.GetUsersByIDs(ctx, authorIDs)
	userMap := make(map[primitive.ObjectID]*auth.User)
	for i := range users {
		userMap[users[i].ID] = &users[i]
	}

	responses := make([]CommentResponse, len(comms))
	for i, cm := range comms {
		resp := CommentResponse{
			ID:         cm.ID,
			PostID:     cm.PostID,
			ParentID:   cm.ParentID,
			Content:    mentions.RenderDisplay(cm.Content),
			Depth:      cm.Depth,
			ReplyCount: cm.ReplyCount,
			CanReply:   cm.Depth < threads.MaxDepth,
			IsEdited:   cm.IsEdited,
			CreatedAt:  cm.CreatedAt,
			UpdatedAt:  cm.UpdatedAt,
		}

		if u, ok := userMap[cm.UserID]; ok {
			resp.Author = CommentAuthor{
				ID:          u.ID,
				Username:    u.Username,
				DisplayName: u.DisplayName,
				AvatarURL:   u.AvatarURL,
			}
		} else {
			resp.Author = CommentAuthor{ID: cm.UserID, Deleted: true}
		}

		responses[i] = resp
	}

	return responses
}
