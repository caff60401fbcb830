package posts

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/mentions"
	"github.com/devlink-social/devlink/internal/pkg/response"
)

// LikeChecker reports which of a set of posts a user has liked. Implemented
// by the likes repository; injected to avoid a package cycle.
type LikeChecker interface {
	GetUserLikedPosts(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
}

type Handler struct {
	repo             *Repository
	authRepo         *auth.Repository
	mentionProcessor *mentions.Processor
	scraper          *Scraper
	likes            LikeChecker
}

func NewHandler(repo *Repository, authRepo *auth.Repository, mentionProcessor *mentions.Processor, likes LikeChecker) *Handler {
	return &Handler{
		repo:             repo,
		authRepo:         authRepo,
		mentionProcessor: mentionProcessor,
		scraper:          NewScraper(),
		likes:            likes,
	}
}

// Create godoc
// @Summary Create a post
// @Description Create a post; @mentions resolve to notifications and the first link is scraped for a preview
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post content"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /posts [post]
func (h *Handler) Create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := ValidateCreatePostRequest(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	post := &Post{
		UserID:   user.ID,
		Content:  mentions.StoreMarkup(req.Content),
		ImageURL: req.ImageURL,
	}

	if err := h.repo.CreatePost(c.Request.Context(), post); err != nil {
		response.DatabaseError(c, "Failed to create post")
		return
	}

	if err := h.authRepo.IncrementPostCount(c.Request.Context(), user.ID, 1); err != nil {
		log.Printf("Failed to bump post count for %s: %v", user.ID.Hex(), err)
	}

	// Mention fan-out never blocks or fails the save
	h.mentionProcessor.Process(c.Request.Context(), user.ID, post.Content, post.ID, nil)

	link := req.LinkURL
	if link == "" {
		link = FirstLink(req.Content)
	}
	if link != "" {
		go h.scrapePreview(post.ID, link)
	}

	response.Created(c, h.buildResponse(c.Request.Context(), post, user.ID))
}

// scrapePreview runs outside the request so slow origins never delay the
// post save
func (h *Handler) scrapePreview(postID primitive.ObjectID, link string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	preview, err := h.scraper.FetchPreview(ctx, link)
	if err != nil {
		log.Printf("Link preview failed for %s: %v", link, err)
		return
	}
	if err := h.repo.SetLinkPreview(ctx, postID, preview); err != nil {
		log.Printf("Failed to attach link preview to %s: %v", postID.Hex(), err)
	}
}

// Get godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /posts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	post, err := h.repo.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		response.NotFound(c, "Post not found", "POST_NOT_FOUND")
		return
	}

	var viewerID primitive.ObjectID
	if user, ok := auth.CurrentUser(c); ok {
		viewerID = user.ID
	}

	response.Success(c, h.buildResponse(c.Request.Context(), post, viewerID))
}

// ListUserPosts godoc
// @Summary List a user's posts
// @Tags posts
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.PaginatedResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{username}/posts [get]
func (h *Handler) ListUserPosts(c *gin.Context) {
	target, err := h.authRepo.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.DatabaseError(c, "Failed to look up user")
		return
	}
	if target == nil {
		response.NotFound(c, "User not found", "USER_NOT_FOUND")
		return
	}

	var query PostListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	posts, total, err := h.repo.ListByUser(c.Request.Context(), target.ID, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch posts")
		return
	}

	var viewerID primitive.ObjectID
	if user, ok := auth.CurrentUser(c); ok {
		viewerID = user.ID
	}

	response.Paginated(c, h.buildResponses(c.Request.Context(), posts, viewerID), total, query.Limit, query.Page)
}

// Discover godoc
// @Summary List recent posts across all users
// @Tags posts
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.PaginatedResponse
// @Router /posts [get]
func (h *Handler) Discover(c *gin.Context) {
	var query PostListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	posts, total, err := h.repo.ListRecent(c.Request.Context(), query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch posts")
		return
	}

	var viewerID primitive.ObjectID
	if user, ok := auth.CurrentUser(c); ok {
		viewerID = user.ID
	}

	response.Paginated(c, h.buildResponses(c.Request.Context(), posts, viewerID), total, query.Limit, query.Page)
}

// Update godoc
// @Summary Edit a post
// @Description Edit post content; only mentions new since the last save notify
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body UpdatePostRequest true "New content"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /posts/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
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

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := ValidateUpdatePostRequest(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	post, err := h.repo.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		response.NotFound(c, "Post not found", "POST_NOT_FOUND")
		return
	}
	if !post.IsOwnedBy(user.ID) {
		response.Forbidden(c, "Cannot edit others' posts", "FORBIDDEN")
		return
	}

	oldLink := FirstLink(mentions.RenderDisplay(post.Content))
	post.Content = mentions.StoreMarkup(req.Content)
	post.IsEdited = true

	if err := h.repo.UpdatePost(c.Request.Context(), postID, bson.M{
		"content":  post.Content,
		"isEdited": true,
	}); err != nil {
		response.DatabaseError(c, "Failed to update post")
		return
	}

	// Re-processing is idempotent; only first-time mentions notify
	h.mentionProcessor.Process(c.Request.Context(), user.ID, post.Content, post.ID, nil)

	if link := FirstLink(req.Content); link != "" && link != oldLink {
		go h.scrapePreview(postID, link)
	}

	response.Success(c, h.buildResponse(c.Request.Context(), post, user.ID))
}

// Delete godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /posts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
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

	post, err := h.repo.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		response.NotFound(c, "Post not found", "POST_NOT_FOUND")
		return
	}
	if !post.IsOwnedBy(user.ID) {
		response.Forbidden(c, "Cannot delete others' posts", "FORBIDDEN")
		return
	}

	if err := h.repo.SoftDeletePost(c.Request.Context(), postID); err != nil {
		response.DatabaseError(c, "Failed to delete post")
		return
	}

	if err := h.authRepo.IncrementPostCount(c.Request.Context(), user.ID, -1); err != nil {
		log.Printf("Failed to drop post count for %s: %v", user.ID.Hex(), err)
	}

	response.Success(c, gin.H{"deleted": true})
}

func (h *Handler) buildResponse(ctx context.Context, post *Post, viewerID primitive.ObjectID) PostResponse {
	return h.buildResponses(ctx, []Post{*post}, viewerID)[0]
}

// buildResponses hydrates authors with one batched query and renders stored
// markup back to @handle display form
func (h *Handler) buildResponses(ctx context.Context, posts []Post, viewerID primitive.ObjectID) []PostResponse {
	if len(posts) == 0 {
		return []PostResponse{}
	}

	authorIDs := make([]primitive.ObjectID, 0)
	postIDs := make([]primitive.ObjectID, 0, len(posts))
	seen := make(map[primitive.ObjectID]bool)
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if !seen[p.UserID] {
			seen[p.UserID] = true
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	authors, _ := h.authRepo.GetUsersByIDs(ctx, authorIDs)
	authorMap := make(map[primitive.ObjectID]*auth.User)
	for i := range authors {
		authorMap[authors[i].ID] = &authors[i]
	}

	likedMap := map[primitive.ObjectID]bool{}
	if !viewerID.IsZero() && h.likes != nil {
		likedMap, _ = h.likes.GetUserLikedPosts(ctx, viewerID, postIDs)
		if likedMap == nil {
			likedMap = map[primitive.ObjectID]bool{}
		}
	}

	responses := make([]PostResponse, len(posts))
	for i, p := range posts {
		resp := PostResponse{
			ID:           p.ID,
			Content:      mentions.RenderDisplay(p.Content),
			ImageURL:     p.ImageURL,
			LinkPreview:  p.LinkPreview,
			LikeCount:    p.LikeCount,
			CommentCount: p.CommentCount,
			IsEdited:     p.IsEdited,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
			Engagement:   PostEngagement{HasLiked: likedMap[p.ID]},
		}

		if author, ok := authorMap[p.UserID]; ok {
			resp.Author = PostAuthor{
				ID:          author.ID,
				Username:    author.Username,
				DisplayName: author.DisplayName,
				AvatarURL:   author.AvatarURL,
				IsVerified:  author.IsVerified,
			}
		} else {
			resp.Author = PostAuthor{
				ID:          p.UserID,
				Username:    "deleted",
				DisplayName: "Deleted User",
			}
		}

		responses[i] = resp
	}

	return responses
}
