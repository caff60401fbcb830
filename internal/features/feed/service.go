package feed

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/features/follows"
	"github.com/devlink-social/devlink/internal/features/likes"
	"github.com/devlink-social/devlink/internal/features/posts"
	"github.com/devlink-social/devlink/internal/mentions"
)

// Service assembles the home feed: posts from followed users, newest first,
// cursor paginated
type Service struct {
	postsRepo   *posts.Repository
	authRepo    *auth.Repository
	followsRepo *follows.Repository
	likesRepo   *likes.Repository
}

func NewService(postsRepo *posts.Repository, authRepo *auth.Repository, followsRepo *follows.Repository, likesRepo *likes.Repository) *Service {
	return &Service{
		postsRepo:   postsRepo,
		authRepo:    authRepo,
		followsRepo: followsRepo,
		likesRepo:   likesRepo,
	}
}

func (s *Service) GetHomeFeed(ctx context.Context, userID primitive.ObjectID, query *FeedQuery) (*FeedResponse, error) {
	cursor, err := DecodeCursor(query.Cursor)
	if err != nil {
		return nil, err
	}

	followingIDs, err := s.followsRepo.GetAllFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	includeOwn := true
	if query.IncludeOwn != nil {
		includeOwn = *query.IncludeOwn
	}

	feedUserIDs := followingIDs
	if includeOwn {
		feedUserIDs = append(feedUserIDs, userID)
	}

	if len(feedUserIDs) == 0 {
		reason := "NO_FOLLOWING"
		return s.emptyResponse(query, includeOwn, 0, &reason), nil
	}

	before := time.Now()
	if cursor != nil {
		before = cursor.Timestamp
	}

	// Fetch one extra to learn whether another page exists
	postList, err := s.postsRepo.ListByUsers(ctx, feedUserIDs, before, query.Limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := false
	if len(postList) > query.Limit {
		hasMore = true
		postList = postList[:query.Limit]
	}

	if len(postList) == 0 {
		reason := "NO_CONTENT"
		if cursor != nil {
			reason = "END_OF_FEED"
		}
		return s.emptyResponse(query, includeOwn, len(followingIDs), &reason), nil
	}

	items, err := s.enrich(ctx, postList, userID)
	if err != nil {
		return nil, err
	}

	var nextCursor *string
	if hasMore {
		last := postList[len(postList)-1]
		c := EncodeCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	return &FeedResponse{
		Items: items,
		Pagination: FeedPagination{
			Limit:      query.Limit,
			HasMore:    hasMore,
			NextCursor: nextCursor,
			ItemCount:  len(items),
		},
		Meta: FeedMeta{
			FeedType:         "following",
			IncludesOwnPosts: includeOwn,
			TotalFollowing:   len(followingIDs),
		},
	}, nil
}

func (s *Service) emptyResponse(query *FeedQuery, includeOwn bool, totalFollowing int, reason *string) *FeedResponse {
	return &FeedResponse{
		Items: []posts.PostResponse{},
		Pagination: FeedPagination{
			Limit: query.Limit,
		},
		Meta: FeedMeta{
			FeedType:         "following",
			IncludesOwnPosts: includeOwn,
			TotalFollowing:   totalFollowing,
			EmptyReason:      reason,
		},
	}
}

// enrich hydrates authors and the viewer's like state with batched queries
func (s *Service) enrich(ctx context.Context, postList []posts.Post, viewerID primitive.ObjectID) ([]posts.PostResponse, error) {
	authorIDs := make([]primitive.ObjectID, 0)
	seen := make(map[primitive.ObjectID]bool)
	postIDs := make([]primitive.ObjectID, len(postList))
	for i, p := range postList {
		postIDs[i] = p.ID
		if !seen[p.UserID] {
			seen[p.UserID] = true
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	users, err := s.authRepo.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	userMap := make(map[primitive.ObjectID]*auth.User)
	for i := range users {
		userMap[users[i].ID] = &users[i]
	}

	likedMap, err := s.likesRepo.GetUserLikedPosts(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}

	items := make([]posts.PostResponse, len(postList))
	for i, p := range postList {
		item := posts.PostResponse{
			ID:           p.ID,
			Content:      mentions.RenderDisplay(p.Content),
			ImageURL:     p.ImageURL,
			LinkPreview:  p.LinkPreview,
			LikeCount:    p.LikeCount,
			CommentCount: p.CommentCount,
			IsEdited:     p.IsEdited,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
			Engagement:   posts.PostEngagement{HasLiked: likedMap[p.ID]},
		}

		if u, ok := userMap[p.UserID]; ok {
			item.Author = posts.PostAuthor{
				ID:          u.ID,
				Username:    u.Username,
				DisplayName: u.DisplayName,
				AvatarURL:   u.AvatarURL,
				IsVerified:  u.IsVerified,
			}
		} else {
			item.Author = posts.PostAuthor{ID: p.UserID, Username: "deleted", DisplayName: "Deleted User"}
		}

		items[i] = item
	}

	return items, nil
}
