package follows

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow represents a follow relationship between two users. FollowerID
// follows FollowingID; the unique index makes repeats no-ops.
type Follow struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FollowerID  primitive.ObjectID `bson:"followerId" json:"followerId"`
	FollowingID primitive.ObjectID `bson:"followingId" json:"followingId"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Request DTOs

type FollowListQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=50"`
}

// Response DTOs

type FollowActionResponse struct {
	IsFollowing   bool `json:"isFollowing"`
	FollowerCount int  `json:"followerCount"`
}

type FollowStatusResponse struct {
	IsFollowing  bool `json:"isFollowing"`
	IsFollowedBy bool `json:"isFollowedBy"`
	IsMutual     bool `json:"isMutual"`
}

type FollowUserResponse struct {
	ID          primitive.ObjectID `json:"id"`
	Username    string             `json:"username"`
	DisplayName string             `json:"displayName"`
	AvatarURL   string             `json:"avatarUrl"`
	Bio         string             `json:"bio"`
	IsFollowing bool               `json:"isFollowing"`
	FollowedAt  time.Time          `json:"followedAt"`
}
