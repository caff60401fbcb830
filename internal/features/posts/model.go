package posts

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a post on the feed. Content is stored in mention markup
// form; handlers render the @handle display form on the way out.
type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Content      string             `bson:"content" json:"-"`
	ImageURL     string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	LinkPreview  *LinkPreview       `bson:"linkPreview,omitempty" json:"linkPreview,omitempty"`
	LikeCount    int                `bson:"likeCount" json:"likeCount"`
	CommentCount int                `bson:"commentCount" json:"commentCount"`
	IsEdited     bool               `bson:"isEdited" json:"isEdited"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	DeletedAt    *time.Time         `bson:"deletedAt,omitempty" json:"-"`
}

// LinkPreview holds scraped metadata for the first link in a post
type LinkPreview struct {
	URL         string `bson:"url" json:"url"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	ImageURL    string `bson:"imageUrl" json:"imageUrl"`
	Favicon     string `bson:"favicon" json:"favicon"`
	SiteName    string `bson:"siteName" json:"siteName"`
}

// IsOwnedBy checks if the post is owned by the given user
func (p *Post) IsOwnedBy(userID primitive.ObjectID) bool {
	return p.UserID == userID
}

// Request DTOs

type CreatePostRequest struct {
	Content  string `json:"content" binding:"required,min=1,max=2000"`
	ImageURL string `json:"imageUrl" binding:"omitempty,url,max=500"`
	LinkURL  string `json:"linkUrl" binding:"omitempty,url,max=500"`
}

type UpdatePostRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

type PostListQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=50"`
}

// Response DTOs

type PostAuthor struct {
	ID          primitive.ObjectID `json:"id"`
	Username    string             `json:"username"`
	DisplayName string             `json:"displayName"`
	AvatarURL   string             `json:"avatarUrl"`
	IsVerified  bool               `json:"isVerified"`
}

type PostEngagement struct {
	HasLiked bool `json:"hasLiked"`
}

type PostResponse struct {
	ID           primitive.ObjectID `json:"id"`
	Content      string             `json:"content"`
	ImageURL     string             `json:"imageUrl,omitempty"`
	LinkPreview  *LinkPreview       `json:"linkPreview,omitempty"`
	LikeCount    int                `json:"likeCount"`
	CommentCount int                `json:"commentCount"`
	IsEdited     bool               `json:"isEdited"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	Author       PostAuthor         `json:"author"`
	Engagement   PostEngagement     `json:"engagement"`
}
