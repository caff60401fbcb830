package comments

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/threads"
)

// Comment represents a comment or nested reply on a post. Content is stored
// in mention markup form. Depth is 0 for top-level comments and parent+1 for
// replies; ReplyCount counts direct children only.
type Comment struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PostID     primitive.ObjectID  `bson:"postId" json:"postId"`
	UserID     primitive.ObjectID  `bson:"userId" json:"userId"`
	ParentID   *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	Content    string              `bson:"content" json:"-"`
	Depth      int                 `bson:"depth" json:"depth"`
	ReplyCount int                 `bson:"replyCount" json:"replyCount"`
	IsEdited   bool                `bson:"isEdited" json:"isEdited"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
	DeletedAt  *time.Time          `bson:"deletedAt,omitempty" json:"-"`
}

// Request DTOs

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,min=1,max=1000"`
	ParentID string `json:"parentId" binding:"omitempty,len=24"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

type CommentListQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=50"`
}

type ThreadTreeQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Depth int `form:"depth,default=2" binding:"min=0,max=5"`
}

// Response DTOs

type CommentAuthor struct {
	ID          primitive.ObjectID `json:"id"`
	Username    string             `json:"username"`
	DisplayName string             `json:"displayName"`
	AvatarURL   string             `json:"avatarUrl"`
	Deleted     bool               `json:"deleted,omitempty"`
}

type CommentResponse struct {
	ID         primitive.ObjectID  `json:"id"`
	PostID     primitive.ObjectID  `json:"postId"`
	ParentID   *primitive.ObjectID `json:"parentId,omitempty"`
	Content    string              `json:"content"`
	Depth      int                 `json:"depth"`
	ReplyCount int                 `json:"replyCount"`
	CanReply   bool                `json:"canReply"`
	IsEdited   bool                `json:"isEdited"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	Author     CommentAuthor       `json:"author"`
}

// TreeNode is the serialized form of an assembled thread node
type TreeNode struct {
	ID         primitive.ObjectID `json:"id"`
	Content    string             `json:"content"`
	Depth      int                `json:"depth"`
	ReplyCount int                `json:"replyCount"`
	CanReply   bool               `json:"canReply"`
	Expanded   bool               `json:"expanded"`
	CreatedAt  time.Time          `json:"createdAt"`
	Author     CommentAuthor      `json:"author"`
	Children   []*TreeNode        `json:"children"`
}

// ThreadTreeResponse is the payload for the assembled-tree endpoint
type ThreadTreeResponse struct {
	PostID     primitive.ObjectID `json:"postId"`
	TotalCount int64              `json:"totalCount"`
	Comments   []*TreeNode        `json:"comments"`
}

func treeNodeFromThread(n *threads.Node) *TreeNode {
	node := &TreeNode{
		ID:         n.ID,
		Content:    n.Text,
		Depth:      n.Depth,
		ReplyCount: n.ReplyCount,
		CanReply:   n.CanReply(),
		Expanded:   n.Expanded,
		CreatedAt:  n.CreatedAt,
		Author: CommentAuthor{
			ID:          n.Author.ID,
			Username:    n.Author.Handle,
			DisplayName: n.Author.DisplayName,
			AvatarURL:   n.Author.AvatarURL,
			Deleted:     n.Author.Deleted,
		},
		Children: []*TreeNode{},
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, treeNodeFromThread(child))
	}
	return node
}
