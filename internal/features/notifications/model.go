package notifications

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification type constants. The two mention kinds are distinct so clients
// can deep-link to either the post body or the specific comment.
const (
	TypeMentionInPost    = "mention_in_post"
	TypeMentionInComment = "mention_in_comment"
	TypeComment          = "comment"
	TypeLike             = "like"
	TypeFollow           = "follow"
)

// Notification represents a user notification. PostID is zero for follow
// notifications; CommentID is set only when the trigger lives in a comment.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID  `bson:"recipientId" json:"recipientId"`
	SenderID    primitive.ObjectID  `bson:"senderId" json:"senderId"`
	Type        string              `bson:"type" json:"type"`
	PostID      primitive.ObjectID  `bson:"postId" json:"postId,omitempty"`
	CommentID   *primitive.ObjectID `bson:"commentId,omitempty" json:"commentId,omitempty"`
	Preview     string              `bson:"preview" json:"preview"`
	IsRead      bool                `bson:"isRead" json:"isRead"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

// Request DTOs

type NotificationListQuery struct {
	Page       int  `form:"page,default=1" binding:"min=1"`
	Limit      int  `form:"limit,default=20" binding:"min=1,max=50"`
	UnreadOnly bool `form:"unreadOnly"`
}

// Response DTOs

type NotificationSender struct {
	ID          primitive.ObjectID `json:"id"`
	Username    string             `json:"username"`
	DisplayName string             `json:"displayName"`
	AvatarURL   string             `json:"avatarUrl"`
}

type NotificationResponse struct {
	ID        primitive.ObjectID  `json:"id"`
	Type      string              `json:"type"`
	PostID    primitive.ObjectID  `json:"postId,omitempty"`
	CommentID *primitive.ObjectID `json:"commentId,omitempty"`
	Preview   string              `json:"preview"`
	IsRead    bool                `json:"isRead"`
	CreatedAt time.Time           `json:"createdAt"`
	Sender    NotificationSender  `json:"sender"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

type MarkReadResponse struct {
	ID     primitive.ObjectID `json:"id"`
	IsRead bool               `json:"isRead"`
}

type MarkAllReadResponse struct {
	MarkedCount int64 `json:"markedCount"`
}
