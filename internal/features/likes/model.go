package likes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like represents one user liking one post. The unique index on
// (postId, userId) makes repeat likes no-ops.
type Like struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Request DTOs

type LikersListQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=50"`
}

// Response DTOs

type LikeStatusResponse struct {
	HasLiked  bool `json:"hasLiked"`
	LikeCount int  `json:"likeCount"`
}

type Liker struct {
	ID          primitive.ObjectID `json:"id"`
	Username    string             `json:"username"`
	DisplayName string             `json:"displayName"`
	AvatarURL   string             `json:"avatarUrl"`
	LikedAt     time.Time          `json:"likedAt"`
}
