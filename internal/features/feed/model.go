package feed

import (
	"github.com/devlink-social/devlink/internal/features/posts"
)

// FeedQuery represents the query parameters for the home feed
type FeedQuery struct {
	Limit      int    `form:"limit"`
	Cursor     string `form:"cursor"`
	IncludeOwn *bool  `form:"includeOwn"` // Pointer to distinguish between false and missing
}

// FeedPagination represents the pagination metadata
type FeedPagination struct {
	Limit      int     `json:"limit"`
	HasMore    bool    `json:"hasMore"`
	NextCursor *string `json:"nextCursor"`
	ItemCount  int     `json:"itemCount"`
}

// FeedMeta represents the feed metadata
type FeedMeta struct {
	FeedType         string  `json:"feedType"`
	IncludesOwnPosts bool    `json:"includesOwnPosts"`
	TotalFollowing   int     `json:"totalFollowing"`
	EmptyReason      *string `json:"emptyReason"`
}

// FeedResponse represents the complete API response for the home feed
type FeedResponse struct {
	Items      []posts.PostResponse `json:"items"`
	Pagination FeedPagination       `json:"pagination"`
	Meta       FeedMeta             `json:"meta"`
}
